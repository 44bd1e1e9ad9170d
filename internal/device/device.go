// Package device maintains the per-installation identity that scopes all
// records in place of real authentication.
package device

import (
	"github.com/google/uuid"

	"github.com/admotors/inventory/internal/common/logger"
	"github.com/admotors/inventory/internal/localstore"
)

const idPrefix = "device-"

// Manager hands out the persisted device identifier.
type Manager struct {
	store *localstore.Store
	log   logger.Logger
}

// NewManager binds the identity to a local store.
func NewManager(store *localstore.Store, log logger.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// DeviceID returns the persisted identifier, minting and persisting a new
// one on first use. When persistence fails the fresh token is returned
// anyway: callers must tolerate the id changing on every call in that
// failure mode, which loses device-scoping continuity.
func (m *Manager) DeviceID() string {
	id, err := m.store.GetItem(localstore.DeviceIDKey)
	if err == nil && id != "" {
		return id
	}

	id = idPrefix + uuid.NewString()
	if err := m.store.SetItem(localstore.DeviceIDKey, id); err != nil && m.log != nil {
		m.log.Warnf("device id not persisted, scoping continuity is lost: %v", err)
	} else if m.log != nil {
		m.log.Infof("device id created: %s", id)
	}
	return id
}
