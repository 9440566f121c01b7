package api

import "time"

// Entity представляет версионированную запись в запросах синхронизации
type Entity struct {
	LastModified time.Time      `json:"last_modified"`
	Payload      map[string]any `json:"payload"`
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Checksum     string         `json:"checksum"`
	DeviceID     string         `json:"device_id"`
	UserID       string         `json:"user_id"`
	Version      int64          `json:"version"`
	Seq          int64          `json:"seq,omitempty"` // Seq серверная последовательность (Lamport clock)
	Deleted      bool           `json:"deleted"`
}

// Operation представляет одну операцию в пакете синхронизации
type Operation struct {
	CreatedAt  time.Time `json:"created_at"`
	Entity     *Entity   `json:"entity,omitempty"`
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	EntityType string    `json:"entity_type"`
	Priority   string    `json:"priority"`
	Tier       string    `json:"tier,omitempty"`

	// BaseVersion версия сервера, от которой устройство сделало изменение
	BaseVersion int64 `json:"base_version,omitempty"`
}

// SubmitRequest представляет пакет операций от устройства.
// Операции применяются по порядку.
type SubmitRequest struct {
	DeviceID   string      `json:"device_id"`
	Operations []Operation `json:"operations"`
}

// FailedOperation описывает отклоненную операцию
type FailedOperation struct {
	OperationID string `json:"operation_id"`
	Kind        string `json:"kind"` // класс ошибки синхронизации (TRANSIENT, VALIDATION, ...)
	Error       string `json:"error"`
}

// Conflict описывает операцию, отклоненную из-за расхождения версий
type Conflict struct {
	Remote      Entity `json:"remote"` // Remote текущая серверная версия записи
	OperationID string `json:"operation_id"`
}

// SubmitResponse представляет результат обработки пакета
type SubmitResponse struct {
	Processed []string          `json:"processed"`
	Failed    []FailedOperation `json:"failed"`
	Conflicts []Conflict        `json:"conflicts"`
	Sequence  int64             `json:"sequence"` // Sequence текущее значение серверных часов
}

// FetchResponse представляет изменения, появившиеся после токена
type FetchResponse struct {
	Entities []Entity `json:"entities"`
	Token    int64    `json:"token"` // Token передается в следующий запрос как since
}

// HealthResponse ответ health-check
type HealthResponse struct {
	Time    time.Time `json:"time"`
	Status  string    `json:"status"`
	Padding string    `json:"padding,omitempty"` // заполнение для оценки пропускной способности
}

// ChangeNotification push-уведомление об изменениях на сервере
type ChangeNotification struct {
	At          time.Time `json:"at"`
	UserID      string    `json:"user_id"`
	EntityTypes []string  `json:"entity_types"`
	Sequence    int64     `json:"sequence"`
}
