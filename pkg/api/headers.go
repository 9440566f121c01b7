package api

// Заголовки запросов синхронизации
const (
	// HeaderIdempotencyKey ключ пакета; повтор пакета с тем же ключом получает прежний ответ
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderPriority наивысший приоритет операций пакета (low, normal, high, crisis)
	HeaderPriority = "X-Sync-Priority"
)

// Пути API
const (
	PathSubmit = "/api/v1/sync/submit"
	PathFetch  = "/api/v1/sync/fetch"
	PathHealth = "/api/v1/health"
)
