// Package api реализует HTTP транспорт клиента синхронизации.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/iudanet/carekeeper/internal/crypto"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
	"github.com/iudanet/carekeeper/internal/syncerr"
	"github.com/iudanet/carekeeper/pkg/api"
)

// Пути API
const (
	PathSubmit = api.PathSubmit
	PathFetch  = api.PathFetch
	PathHealth = api.PathHealth
)

// HeaderIdempotencyKey заголовок, по которому сервер повторно отдает ответ на уже обработанный пакет
const HeaderIdempotencyKey = api.HeaderIdempotencyKey

// DefaultTimeout таймаут HTTP клиента по умолчанию
const DefaultTimeout = 30 * time.Second

// probeSamples количество запросов в одном измерении сети
const probeSamples = 3

// probeBytes размер заполнения health-ответа для оценки пропускной способности
const probeBytes = 16 * 1024

// Client представляет HTTP клиент для взаимодействия с сервером синхронизации
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	deviceID   string
}

// NewClient создает новый API клиент.
// token - JWT устройства, передается в заголовке Authorization.
func NewClient(baseURL, token, deviceID string) *Client {
	return &Client{
		baseURL:  baseURL,
		token:    token,
		deviceID: deviceID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// RemoteConflict операция, отклоненная сервером из-за расхождения версий
type RemoteConflict struct {
	Remote      *models.SyncEntity
	OperationID string
}

// SubmitResult результат отправки пакета операций
type SubmitResult struct {
	Failed    map[string]error
	Processed []string
	Conflicts []RemoteConflict
	Sequence  int64
}

// FetchResult изменения с сервера
type FetchResult struct {
	Entities []*models.SyncEntity
	Token    int64
}

// Submit отправляет пакет операций. Ошибки отдельных операций возвращаются в Failed,
// ошибка всего запроса классифицирована по syncerr.Kind.
func (c *Client) Submit(ctx context.Context, ops []*models.Operation) (*SubmitResult, error) {
	req := api.SubmitRequest{
		DeviceID:   c.deviceID,
		Operations: make([]api.Operation, 0, len(ops)),
	}
	ids := make([]string, 0, len(ops))
	top := models.PriorityLow
	for _, op := range ops {
		req.Operations = append(req.Operations, op.ToAPI())
		ids = append(ids, op.ID)
		top = max(top, op.Priority)
	}

	headers := http.Header{}
	headers.Set(HeaderIdempotencyKey, crypto.BatchKey(ids))
	headers.Set(api.HeaderPriority, top.String())

	var resp api.SubmitResponse
	if err := c.doRequest(ctx, http.MethodPost, PathSubmit, headers, req, &resp); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Failed:    make(map[string]error, len(resp.Failed)),
		Processed: resp.Processed,
		Sequence:  resp.Sequence,
	}
	for _, f := range resp.Failed {
		result.Failed[f.OperationID] = syncerr.New(syncerr.Kind(f.Kind), "submit", "%s", f.Error)
	}
	for _, cf := range resp.Conflicts {
		remote, err := models.EntityFromAPI(cf.Remote)
		if err != nil {
			result.Failed[cf.OperationID] = syncerr.Wrap(syncerr.KindValidation, "submit", err)
			continue
		}
		result.Conflicts = append(result.Conflicts, RemoteConflict{OperationID: cf.OperationID, Remote: remote})
	}
	return result, nil
}

// Fetch получает записи типа entityType, измененные после since
func (c *Client) Fetch(ctx context.Context, entityType models.EntityType, since int64) (*FetchResult, error) {
	q := url.Values{}
	q.Set("type", string(entityType))
	q.Set("since", strconv.FormatInt(since, 10))

	var resp api.FetchResponse
	if err := c.doRequest(ctx, http.MethodGet, PathFetch+"?"+q.Encode(), nil, nil, &resp); err != nil {
		return nil, err
	}

	result := &FetchResult{Token: resp.Token, Entities: make([]*models.SyncEntity, 0, len(resp.Entities))}
	for _, e := range resp.Entities {
		entity, err := models.EntityFromAPI(e)
		if err != nil {
			return nil, syncerr.Wrap(syncerr.KindValidation, "fetch", err)
		}
		result.Entities = append(result.Entities, entity)
	}
	return result, nil
}

// Health выполняет health-check
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, PathHealth, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Probe измеряет качество сети серией health-запросов с заполнением.
// Ошибка возвращается, только если ни один запрос не прошел.
func (c *Client) Probe(ctx context.Context) (reliability.Sample, error) {
	path := PathHealth + "?probe_bytes=" + strconv.Itoa(probeBytes)

	var (
		latencies []time.Duration
		totalSize int
		lastErr   error
	)
	for range probeSamples {
		start := time.Now()
		var resp api.HealthResponse
		err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp)
		if err != nil {
			lastErr = err
			continue
		}
		latencies = append(latencies, time.Since(start))
		totalSize += len(resp.Padding)
	}

	if len(latencies) == 0 {
		return reliability.Sample{}, fmt.Errorf("probe failed: %w", lastErr)
	}

	var sum, lo, hi time.Duration
	lo = latencies[0]
	for _, l := range latencies {
		sum += l
		lo = min(lo, l)
		hi = max(hi, l)
	}
	avg := sum / time.Duration(len(latencies))

	sample := reliability.Sample{
		Latency:    avg,
		Jitter:     hi - lo,
		PacketLoss: float64(probeSamples-len(latencies)) / probeSamples,
		Online:     true,
	}
	if sum > 0 {
		sample.BandwidthKbps = float64(totalSize*8) / 1000 / sum.Seconds()
	}
	return sample, nil
}

// doRequest выполняет HTTP запрос и классифицирует ошибки
func (c *Client) doRequest(ctx context.Context, method, path string, headers http.Header, body, result any) error {
	op := method + " " + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return syncerr.Wrap(syncerr.KindValidation, op, fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return syncerr.Wrap(syncerr.KindValidation, op, fmt.Errorf("failed to create request: %w", err))
	}

	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// сетевые ошибки и таймауты повторяемы
		return syncerr.Wrap(syncerr.KindTransient, op, fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return syncerr.Wrap(syncerr.KindTransient, op, fmt.Errorf("failed to read response body: %w", err))
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return syncerr.Wrap(syncerr.KindTransient, op, fmt.Errorf("failed to decode response: %w", err))
		}
	}

	return nil
}

// statusError переводит HTTP статус в класс ошибки синхронизации
func statusError(op string, resp *http.Response, body []byte) error {
	msg := string(body)
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
		if errResp.Message != "" {
			msg += ": " + errResp.Message
		}
	}
	cause := fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &syncerr.Error{
			Kind:       syncerr.KindResourceExhaustion,
			Op:         op,
			Err:        cause,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return syncerr.Wrap(syncerr.KindSecurity, op, cause)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return syncerr.Wrap(syncerr.KindValidation, op, cause)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusRequestTimeout:
		return syncerr.Wrap(syncerr.KindTransient, op, cause)
	default:
		return syncerr.Wrap(syncerr.KindUnknown, op, cause)
	}
}

// parseRetryAfter разбирает Retry-After в секундах или HTTP-дате
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// IsConflictFree reports whether the submit produced neither failures nor conflicts.
func (r *SubmitResult) IsConflictFree() bool {
	return len(r.Failed) == 0 && len(r.Conflicts) == 0
}
