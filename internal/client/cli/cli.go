// Package cli команды клиента CareKeeper.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/carekeeper/internal/client/iocli"
	"github.com/iudanet/carekeeper/internal/client/storage"
	clientsync "github.com/iudanet/carekeeper/internal/client/sync"
	"github.com/iudanet/carekeeper/internal/guardian"
	"github.com/iudanet/carekeeper/internal/models"
	"github.com/iudanet/carekeeper/internal/reliability"
)

// EnvPassphrase переменная окружения с паролем локального хранилища
const EnvPassphrase = "CAREKEEPER_PASSPHRASE"

//go:generate moq -out service_mock.go . Service

// Service операции сервиса синхронизации, которые использует CLI.
// Реализуется *sync.Orchestrator.
type Service interface {
	GetQueueStatus() reliability.QueueStatus
	DeadLetters() []*models.QueueItem
	NetworkStrategy() reliability.SyncStrategy
	Drain(ctx context.Context) (clientsync.DrainResult, error)
	Pull(ctx context.Context, entityType models.EntityType) (*clientsync.PullResult, error)
	SubmitSync(ctx context.Context, op *models.Operation, priority models.Priority) (*clientsync.Outcome, error)
	GetCrisisData(ctx context.Context, entityID string) guardian.CrisisResult
	GetEmergencyContacts(ctx context.Context, entityID string) guardian.CrisisResult
	Hotline() guardian.Hotline
}

// Cli выполняет команды поверх сервиса синхронизации
type Cli struct {
	io       iocli.IO
	service  Service
	entities storage.EntityStorage
	logger   *slog.Logger
	userID   string
	deviceID string
	budgets  guardian.Budgets
}

// New creates a Cli.
func New(io iocli.IO, service Service, entities storage.EntityStorage, budgets guardian.Budgets, userID, deviceID string, logger *slog.Logger) *Cli {
	return &Cli{
		io:       io,
		service:  service,
		entities: entities,
		logger:   logger,
		userID:   userID,
		deviceID: deviceID,
		budgets:  budgets,
	}
}

// ReadPassphrase reads the local store passphrase with priority:
// 1. Environment variable CAREKEEPER_PASSPHRASE
// 2. File passed with --passphrase-file
// 3. Interactive prompt (fallback)
func ReadPassphrase(io iocli.IO, fromFile string) (string, error) {
	// Priority 1: Environment variable
	if env := os.Getenv(EnvPassphrase); env != "" {
		return env, nil
	}

	// Priority 2: File
	if fromFile != "" {
		content, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read passphrase file: %w", err)
		}
		// Убираем trailing newline/whitespace
		passphrase := strings.TrimSpace(string(content))
		if passphrase == "" {
			return "", errors.New("passphrase file is empty")
		}
		return passphrase, nil
	}

	// Priority 3: Interactive prompt
	passphrase, err := io.ReadPassword("Passphrase: ")
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase from stdin: %w", err)
	}
	if passphrase == "" {
		return "", errors.New("passphrase cannot be empty")
	}
	return passphrase, nil
}
