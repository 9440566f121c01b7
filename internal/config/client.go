package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/viper"

	clientsync "github.com/iudanet/carekeeper/internal/client/sync"
	"github.com/iudanet/carekeeper/internal/conflict"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/logging"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/push"
	"github.com/iudanet/carekeeper/internal/reliability"
)

// Client конфигурация клиентского устройства
type Client struct {
	ServerURL  string `mapstructure:"server_url"`
	Token      string `mapstructure:"token"`
	DBPath     string `mapstructure:"db_path"`
	PolicyFile string `mapstructure:"policy_file"` // PolicyFile YAML с переопределением политик разрешения

	Log      logging.Config          `mapstructure:"log"`
	MQTT     push.Config             `mapstructure:"mqtt"`
	Sync     clientsync.Config       `mapstructure:"sync"`
	Queue    reliability.QueueConfig `mapstructure:"queue"`
	Cache    guardian.CacheConfig    `mapstructure:"cache"`
	Budgets  guardian.Budgets        `mapstructure:"budgets"`
	Detector conflict.DetectorConfig `mapstructure:"detector"`

	MergeConfidenceThreshold float64 `mapstructure:"merge_confidence_threshold"`
}

// NewClientViper returns a viper instance preloaded with client defaults.
// Флаги командной строки привязываются к нему до вызова LoadClient.
func NewClientViper() *viper.Viper {
	v := newViper()

	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("token", "")
	v.SetDefault("db_path", "carekeeper-client.db")
	v.SetDefault("policy_file", "")
	v.SetDefault("merge_confidence_threshold", conflict.DefaultMergeConfidenceThreshold)
	setLogDefaults(v)
	// на устройстве лог пишется в файл с ротацией
	v.SetDefault("log.file", "carekeeper-client.log")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.connect_timeout", "10s")

	sc := clientsync.DefaultConfig()
	v.SetDefault("sync.user_id", "")
	v.SetDefault("sync.device_id", "")
	v.SetDefault("sync.platform", "cli")
	v.SetDefault("sync.tier", string(sc.Tier))
	v.SetDefault("sync.max_concurrent", sc.MaxConcurrent)
	v.SetDefault("sync.crisis_timeout", sc.CrisisTimeout)
	v.SetDefault("sync.sweep_interval", sc.SweepInterval)
	v.SetDefault("sync.drain_interval", sc.DrainInterval)
	v.SetDefault("sync.probe_interval", sc.ProbeInterval)
	v.SetDefault("sync.clinical_review_available", false)
	v.SetDefault("sync.can_intervene", false)

	qc := reliability.DefaultQueueConfig()
	v.SetDefault("queue.max_size", qc.MaxSize)
	v.SetDefault("queue.max_retries", qc.MaxRetries)
	v.SetDefault("queue.base_backoff", qc.BaseBackoff)
	v.SetDefault("queue.max_backoff", qc.MaxBackoff)

	cc := guardian.DefaultCacheConfig()
	v.SetDefault("cache.max_entries", cc.MaxEntries)
	v.SetDefault("cache.crisis_ttl", cc.CrisisTTL)
	v.SetDefault("cache.general_ttl", cc.GeneralTTL)

	b := guardian.DefaultBudgets()
	v.SetDefault("budgets.crisis_data_access", b.CrisisDataAccess)
	v.SetDefault("budgets.emergency_contact_access", b.EmergencyContactAccess)
	v.SetDefault("budgets.crisis_button_response", b.CrisisButtonResponse)
	v.SetDefault("budgets.safety_margin", b.SafetyMargin)

	dc := conflict.DefaultDetectorConfig()
	v.SetDefault("detector.mood_threshold", dc.MoodThreshold)
	v.SetDefault("detector.score_delta_safety", dc.ScoreDeltaSafety)
	v.SetDefault("detector.timestamp_skew", dc.TimestampSkew)
	v.SetDefault("detector.crisis_deadline", dc.CrisisDeadline)
	v.SetDefault("detector.emergency_deadline", dc.EmergencyDeadline)

	return v
}

// LoadClient читает конфигурацию клиента. path может быть пустым.
func LoadClient(v *viper.Viper, path string) (*Client, error) {
	if v == nil {
		v = NewClientViper()
	}
	var cfg Client
	if err := load(v, path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the values that have no safe fallback.
func (c *Client) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server_url %q is not an absolute URL", c.ServerURL)
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if !c.Sync.Tier.Valid() {
		return fmt.Errorf("unknown subscription tier %q", c.Sync.Tier)
	}
	if c.MergeConfidenceThreshold < 0 || c.MergeConfidenceThreshold > 1 {
		return fmt.Errorf("merge_confidence_threshold %.2f is outside [0, 1]", c.MergeConfidenceThreshold)
	}
	if err := c.Budgets.Validate(); err != nil {
		return err
	}
	return validateLog(c.Log)
}

// Policies возвращает таблицу политик: встроенную или из PolicyFile
func (c *Client) Policies() (*conflict.PolicyTable, error) {
	if c.PolicyFile == "" {
		return conflict.DefaultPolicies(), nil
	}
	return conflict.LoadPolicyFile(c.PolicyFile)
}

// Identity проверяет, что заданы пользователь и устройство
func (c *Client) Identity() (userID, deviceID string, err error) {
	if c.Sync.UserID == "" || c.Sync.DeviceID == "" {
		return "", "", errors.New("sync.user_id and sync.device_id are required")
	}
	return c.Sync.UserID, c.Sync.DeviceID, nil
}

// Tier уровень подписки устройства
func (c *Client) Tier() models.Tier {
	return c.Sync.Tier
}
