// Package localstore is the embedded key-value mirror backing offline
// reads: one key for the device identity, one for the vehicle list, plus
// a handful of app-level keys (cache envelope, preferences, last sync).
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/admotors/inventory/internal/common/logger"
)

// Keys used by the application. Everything lives in one flat namespace.
const (
	DeviceIDKey        = "APP_DEVICE_ID"
	VehiculosKey       = "AD_MOTORS_VEHICULOS"
	VehiculosCacheKey  = "VEHICULOS_CACHE"
	UserPreferencesKey = "USER_PREFERENCES"
	LastSyncKey        = "LAST_SYNC"
)

// Config selects where the store lives. InMemory is meant for tests.
type Config struct {
	Path     string
	InMemory bool
}

// Store is a thin key->string layer over BadgerDB.
//
// Read-modify-write cycles over collection-valued keys are not atomic
// across callers: the last writer wins at whole-value granularity.
type Store struct {
	db  *badger.DB
	log logger.Logger
}

// Open opens (and creates if needed) the store.
func Open(cfg Config, log logger.Logger) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("localstore path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create localstore dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open localstore: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetItem stores a raw string value.
func (s *Store) SetItem(key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		s.logf("failed to set %s: %v", key, err)
	}
	return err
}

// GetItem returns the stored string, or "" when the key is absent.
func (s *Store) GetItem(key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		s.logf("failed to get %s: %v", key, err)
		return "", err
	}
	return value, nil
}

// SetJSON stores value JSON-encoded under key.
func (s *Store) SetJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.logf("failed to encode %s: %v", key, err)
		return err
	}
	return s.SetItem(key, string(data))
}

// GetJSON decodes the stored JSON into out. A missing key or an
// undecodable value both read as a miss.
func (s *Store) GetJSON(key string, out any) (bool, error) {
	raw, err := s.GetItem(key)
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logf("failed to decode %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

// RemoveItem deletes a key. Deleting an absent key is a no-op.
func (s *Store) RemoveItem(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		s.logf("failed to remove %s: %v", key, err)
	}
	return err
}

// Clear wipes every key, the device identity included. A device id
// derived after Clear will differ from any previous one.
func (s *Store) Clear() error {
	err := s.db.DropAll()
	if err != nil {
		s.logf("failed to clear store: %v", err)
	}
	return err
}

// Keys lists all stored keys.
func (s *Store) Keys() ([]string, error) {
	keys := make([]string, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		s.logf("failed to list keys: %v", err)
		return nil, err
	}
	return keys, nil
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Errorf(format, args...)
	}
}
