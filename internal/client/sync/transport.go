package sync

import (
	"context"

	"github.com/iudanet/carekeeper/internal/client/api"
	"github.com/iudanet/carekeeper/internal/models"
)

//go:generate moq -out transport_mock.go . Transport

// Transport доставляет операции на сервер и получает изменения.
// Реализуется api.Client.
type Transport interface {
	// Submit отправляет пакет операций; операции применяются по порядку
	Submit(ctx context.Context, ops []*models.Operation) (*api.SubmitResult, error)

	// Fetch получает записи типа entityType, измененные после since
	Fetch(ctx context.Context, entityType models.EntityType, since int64) (*api.FetchResult, error)
}
