package boltdb

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/iudanet/carekeeper/internal/client/storage"
	"github.com/iudanet/carekeeper/internal/crypto"
)

var (
	// BoltDB bucket names
	bucketEntities    = []byte("entities")
	bucketQueue       = []byte("queue")
	bucketDeadLetters = []byte("dead_letters")
	bucketAudit       = []byte("audit")
	bucketMetadata    = []byte("meta")
)

var (
	keySalt       = []byte("vault_salt")
	keyVaultCheck = []byte("vault_check")
)

// vaultCheckValue шифруется при первом Unlock и проверяется при последующих
var vaultCheckValue = []byte("carekeeper-vault")

// Storage represents BoltDB storage implementation for client.
// Данные записей и операций очереди шифруются ключом, выведенным из passphrase устройства.
type Storage struct {
	db  *bbolt.DB
	key []byte
	mu  sync.RWMutex
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	clear(s.key)
	s.key = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEntities, bucketQueue, bucketDeadLetters, bucketAudit, bucketMetadata} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Unlock выводит ключ хранилища из passphrase.
// При первом вызове создает соль и контрольное значение; при последующих проверяет passphrase.
func (s *Storage) Unlock(ctx context.Context, passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMetadata)

		salt := meta.Get(keySalt)
		if salt == nil {
			newSalt, err := crypto.GenerateSalt()
			if err != nil {
				return err
			}
			if err := meta.Put(keySalt, newSalt); err != nil {
				return fmt.Errorf("failed to save salt: %w", err)
			}
			salt = newSalt
		}

		key, err := crypto.DeriveVaultKey(passphrase, bytes.Clone(salt))
		if err != nil {
			return fmt.Errorf("failed to derive vault key: %w", err)
		}

		check := meta.Get(keyVaultCheck)
		if check == nil {
			sealed, err := crypto.Seal(vaultCheckValue, key, keyVaultCheck)
			if err != nil {
				return fmt.Errorf("failed to seal vault check: %w", err)
			}
			if err := meta.Put(keyVaultCheck, sealed); err != nil {
				return fmt.Errorf("failed to save vault check: %w", err)
			}
		} else {
			plain, err := crypto.Open(check, key, keyVaultCheck)
			if err != nil || !bytes.Equal(plain, vaultCheckValue) {
				return storage.ErrWrongPassphrase
			}
		}

		s.key = key
		return nil
	})
}

// Locked reports whether Unlock has not been called yet.
func (s *Storage) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key == nil
}

// handle возвращает открытую БД и ключ, проверяя состояние хранилища
func (s *Storage) handle(needKey bool) (*bbolt.DB, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, nil, storage.ErrStorageClosed
	}
	if needKey && s.key == nil {
		return nil, nil, storage.ErrVaultLocked
	}
	return s.db, s.key, nil
}
