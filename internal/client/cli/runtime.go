package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/carekeeper/internal/client/api"
	"github.com/iudanet/carekeeper/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/carekeeper/internal/client/sync"
	"github.com/iudanet/carekeeper/internal/config"
	"github.com/iudanet/carekeeper/internal/conflict"
	"github.com/iudanet/carekeeper/internal/events"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/push"
	"github.com/iudanet/carekeeper/internal/reliability"
)

// eventBuffer размер буфера шины событий клиента
const eventBuffer = 256

var _ Service = (*clientsync.Orchestrator)(nil)

// Runtime собранный клиент: зашифрованное хранилище, транспорт и оркестратор
type Runtime struct {
	Orchestrator *clientsync.Orchestrator
	Storage      *boltdb.Storage
	mqtt         *push.Client
	logger       *slog.Logger
}

// Bootstrap открывает и разблокирует локальное хранилище, восстанавливает
// офлайн-очередь и собирает оркестратор по конфигурации.
func Bootstrap(ctx context.Context, cfg *config.Client, passphrase string, logger *slog.Logger) (*Runtime, error) {
	_, deviceID, err := cfg.Identity()
	if err != nil {
		return nil, err
	}
	policies, err := cfg.Policies()
	if err != nil {
		return nil, err
	}

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	rt := &Runtime{Storage: store, logger: logger}
	if err := store.Unlock(ctx, passphrase); err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to unlock database: %w", err)
	}

	transport := api.NewClient(cfg.ServerURL, cfg.Token, deviceID)

	queue := reliability.NewQueue(cfg.Queue, store, nil, logger)
	if err := queue.Restore(ctx); err != nil {
		rt.Close()
		return nil, err
	}

	bus := events.NewBus(eventBuffer, logger)
	bus.Subscribe(events.LogObserver(logger))

	orch, err := clientsync.New(cfg.Sync, clientsync.Deps{
		Transport: transport,
		Entities:  store,
		Audit:     store,
		Metadata:  store,
		Queue:     queue,
		Network:   reliability.NewNetworkAssessor(transport, nil),
		Detector:  conflict.NewDetector(cfg.Detector, policies, nil),
		Resolver: conflict.NewResolver(policies, conflict.ResolverConfig{
			Hash:                     store.Hash,
			MergeConfidenceThreshold: cfg.MergeConfidenceThreshold,
		}, logger),
		Guardian: guardian.New(store, guardian.NewCache(cfg.Cache, nil), cfg.Budgets, bus, logger),
		Bus:      bus,
	}, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Orchestrator = orch

	if err := orch.Preload(ctx); err != nil {
		logger.Warn("Failed to preload crisis plans", "error", err)
	}
	return rt, nil
}

// ConnectBroker подключается к MQTT брокеру для получения уведомлений
func (r *Runtime) ConnectBroker(cfg push.Config, deviceID string) (push.Broker, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker is not configured (set mqtt.broker)")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "carekeeper-" + deviceID
	}
	client, err := push.Dial(cfg, r.logger)
	if err != nil {
		return nil, err
	}
	r.mqtt = client
	return client, nil
}

// Close останавливает оркестратор и закрывает соединения и хранилище
func (r *Runtime) Close() {
	if r.Orchestrator != nil {
		r.Orchestrator.Stop()
	}
	if r.mqtt != nil {
		r.mqtt.Close()
	}
	if err := r.Storage.Close(); err != nil {
		r.logger.Error("failed to close database", "error", err)
	}
}
