// Package clock содержит логические часы Лампорта, которыми сервер
// нумерует принятые записи. Значение часов служит токеном синхронизации.
package clock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// SeqSource источник последней выданной последовательности (хранилище)
type SeqSource interface {
	MaxSeq(ctx context.Context) (int64, error)
}

// Lamport логические часы Лампорта
type Lamport struct {
	nodeID  string
	counter int64
	mu      sync.Mutex
}

// New создает часы с уникальным идентификатором узла
func New() *Lamport {
	return NewWithNodeID(uuid.New().String())
}

// NewWithNodeID создает часы с заданным идентификатором узла
func NewWithNodeID(nodeID string) *Lamport {
	return &Lamport{nodeID: nodeID}
}

// Restore выставляет часы на максимальную сохраненную последовательность.
// Вызывается при старте, до приема запросов; часы никогда не идут назад.
func (c *Lamport) Restore(ctx context.Context, src SeqSource) error {
	seq, err := src.MaxSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore clock: %w", err)
	}
	c.Witness(seq)
	return nil
}

// Tick выдает следующее значение для нового локального события
func (c *Lamport) Tick() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	return c.counter
}

// Witness учитывает значение, увиденное извне: counter = max(counter, remote)
func (c *Lamport) Witness(remote int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.counter {
		c.counter = remote
	}
}

// Now возвращает текущее значение без изменения
func (c *Lamport) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counter
}

// NodeID идентификатор узла
func (c *Lamport) NodeID() string {
	return c.nodeID
}
