package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Префиксы доменов хеширования. Суффикс версии позволяет сменить алгоритм без коллизий со старыми значениями.
const (
	DomainPayload = "carekeeper/payload/v1"
	DomainDedup   = "carekeeper/dedup/v1"
	DomainBatch   = "carekeeper/batch/v1"
)

// hashWithDomain вычисляет SHA256(domain + 0x00 + data) в hex
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Checksum вычисляет хеш содержимого payload.
// encoding/json сортирует ключи map, поэтому результат детерминирован
// и зависит только от содержимого.
func Checksum(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return hashWithDomain(DomainPayload, canonical), nil
}

// MustChecksum is like Checksum but panics on error.
// Use only in tests or when the payload is known to be JSON-encodable.
func MustChecksum(payload map[string]any) string {
	sum, err := Checksum(payload)
	if err != nil {
		panic(err)
	}
	return sum
}

// DedupKey вычисляет детерминированный ключ дедупликации операции.
// Части разделяются нулевым байтом, чтобы исключить неоднозначность границ.
func DedupKey(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(DomainDedup))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BatchKey returns an idempotency key for an ordered list of operation IDs.
func BatchKey(operationIDs []string) string {
	data, _ := json.Marshal(operationIDs)
	return hashWithDomain(DomainBatch, data)
}
