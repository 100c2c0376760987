package internal

import (
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/providers"
	"receiptd/internal/store"
)

// Maintenance runs one-shot store operations from the command line without
// starting the web server.
type Maintenance struct {
	store  *store.Store
	kv     interfaces.KeyValueInterface
	logger providers.Logger
}

func NewMaintenance(st *store.Store, kv interfaces.KeyValueInterface, logger providers.Logger) *Maintenance {
	return &Maintenance{store: st, kv: kv, logger: logger}
}

// RestoreDefaultIssuers loads the saved collections, re-adds missing default
// issuers and writes the result. It returns how many were added.
func (m *Maintenance) RestoreDefaultIssuers() (int, error) {
	defer func() {
		if err := m.kv.Close(); err != nil {
			m.logger.Warnf(providers.TypeStore, "Storage close error: %s", err)
		}
	}()

	m.store.LoadAll()
	added := m.store.RestoreDefaultIssuers()
	if err := m.store.Flush(); err != nil {
		return added, err
	}
	m.logger.Infof(providers.TypeStore, "Restored %d default issuer(s)", added)
	return added, nil
}
