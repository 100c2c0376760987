package store

import (
	"fmt"
	"receiptd/internal/models"
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/providers"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// Store owns the issuer and receipt history collections. Every mutation
// updates memory first and then writes the whole collection back. A failed
// write leaves memory ahead of storage and marks the collection dirty.
type Store struct {
	mu      sync.RWMutex
	kv      interfaces.KeyValueInterface
	ids     providers.IDProviderInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	issuers []models.Issuer
	history []models.ReceiptRecord

	dirtyIssuers atomic.Bool
	dirtyHistory atomic.Bool
}

func NewStore(kv interfaces.KeyValueInterface, ids providers.IDProviderInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *Store {
	s := &Store{
		kv:      kv,
		ids:     ids,
		logger:  logger,
		metrics: metrics,
		issuers: models.DefaultIssuers(),
		history: []models.ReceiptRecord{},
	}
	s.reportSizes()
	return s
}

func (s *Store) dirtyFlag(kind models.Kind) *atomic.Bool {
	if kind == models.KindIssuers {
		return &s.dirtyIssuers
	}
	return &s.dirtyHistory
}

func (s *Store) reportSizes() {
	s.metrics.SetCollectionSize(models.KindIssuers.Key(), len(s.issuers))
	s.metrics.SetCollectionSize(models.KindHistory.Key(), len(s.history))
}

// Load replaces the in-memory collection with the stored snapshot. A missing
// key yields the defaults. An unreadable snapshot yields the defaults and is
// overwritten with them.
func (s *Store) Load(kind models.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load(kind)
}

func (s *Store) LoadAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range models.Kinds() {
		s.load(kind)
	}
}

func (s *Store) load(kind models.Kind) {
	defer s.reportSizes()

	data, ok, err := s.kv.Get(kind.Key())
	if err == nil && !ok {
		s.resetToDefaults(kind)
		s.logger.Infof(providers.TypeStore, "No stored %s, starting from defaults", kind)
		return
	}
	if err == nil {
		err = s.decode(kind, data)
	}
	if err == nil {
		s.logger.Debugf(providers.TypeStore, "Loaded %s", kind)
		return
	}

	s.logger.Warnf(providers.TypeStore, "Stored %s unreadable, restoring defaults: %s", kind, err)
	s.resetToDefaults(kind)
	s.persist(kind)
}

func (s *Store) decode(kind models.Kind, data []byte) error {
	switch kind {
	case models.KindIssuers:
		var issuers []models.Issuer
		if err := json.Unmarshal(data, &issuers); err != nil {
			return err
		}
		if issuers == nil {
			issuers = []models.Issuer{}
		}
		s.issuers = issuers
	case models.KindHistory:
		var history []models.ReceiptRecord
		if err := json.Unmarshal(data, &history); err != nil {
			return err
		}
		if history == nil {
			history = []models.ReceiptRecord{}
		}
		s.history = history
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	return nil
}

func (s *Store) resetToDefaults(kind models.Kind) {
	switch kind {
	case models.KindIssuers:
		s.issuers = models.DefaultIssuers()
	case models.KindHistory:
		s.history = []models.ReceiptRecord{}
	}
}

// Save writes the full collection to storage.
func (s *Store) Save(kind models.Kind) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save(kind)
}

func (s *Store) save(kind models.Kind) error {
	var (
		data []byte
		err  error
	)
	switch kind {
	case models.KindIssuers:
		data, err = json.Marshal(s.issuers)
	case models.KindHistory:
		data, err = json.Marshal(s.history)
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	start := time.Now()
	err = s.kv.Set(kind.Key(), data)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	s.dirtyFlag(kind).Store(false)
	return nil
}

// persist is the write-through after a mutation. Failures never reach the
// caller.
func (s *Store) persist(kind models.Kind) {
	if err := s.save(kind); err != nil {
		s.dirtyFlag(kind).Store(true)
		s.metrics.IncPersistenceFailures(kind.Key())
		s.logger.Errorf(providers.TypeStore, "Unable to persist %s: %s", kind, err)
	}
}

// Dirty reports whether any collection failed its last write.
func (s *Store) Dirty() bool {
	return s.dirtyIssuers.Load() || s.dirtyHistory.Load()
}

// Flush saves every dirty collection. On shutdown it is called
// unconditionally, so a clean store is saved as well.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var firstErr error
	for _, kind := range models.Kinds() {
		if err := s.save(kind); err != nil {
			s.dirtyFlag(kind).Store(true)
			s.metrics.IncPersistenceFailures(kind.Key())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) Issuers() []models.Issuer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Issuer, len(s.issuers))
	copy(out, s.issuers)
	return out
}

func (s *Store) FindIssuer(id int64) (models.Issuer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.issuerIndex(id)
	if i < 0 {
		return models.Issuer{}, false
	}
	return s.issuers[i], true
}

func (s *Store) issuerIndex(id int64) int {
	for i := range s.issuers {
		if s.issuers[i].ID == id {
			return i
		}
	}
	return -1
}

// AddIssuer appends issuer, assigning a fresh id when it has none.
func (s *Store) AddIssuer(issuer models.Issuer) models.Issuer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issuer.ID == 0 {
		issuer.ID = s.ids.NextID()
	}
	s.issuers = append(s.issuers, issuer)
	s.reportSizes()
	s.persist(models.KindIssuers)
	return issuer
}

func (s *Store) UpdateIssuer(id int64, issuer models.Issuer) (models.Issuer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.issuerIndex(id)
	if i < 0 {
		return models.Issuer{}, ErrIssuerNotFound
	}
	issuer.ID = id
	s.issuers[i] = issuer
	s.persist(models.KindIssuers)
	return issuer, nil
}

func (s *Store) RemoveIssuer(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.issuerIndex(id)
	if i < 0 {
		return ErrIssuerNotFound
	}
	s.issuers = append(s.issuers[:i:i], s.issuers[i+1:]...)
	s.reportSizes()
	s.persist(models.KindIssuers)
	return nil
}

// RestoreDefaultIssuers re-adds every built-in issuer whose id is missing and
// returns how many were added.
func (s *Store) RestoreDefaultIssuers() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, d := range models.DefaultIssuers() {
		if s.issuerIndex(d.ID) >= 0 {
			continue
		}
		s.issuers = append(s.issuers, d)
		added++
	}
	if added > 0 {
		s.reportSizes()
		s.persist(models.KindIssuers)
	}
	return added
}

func (s *Store) History() []models.ReceiptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ReceiptRecord, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Store) historyIndex(id int64) int {
	for i := range s.history {
		if s.history[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) FindHistoryRecord(id int64) (models.ReceiptRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.historyIndex(id)
	if i < 0 {
		return models.ReceiptRecord{}, false
	}
	return s.history[i], true
}

// AddHistoryRecord puts record at the front so history stays newest first.
func (s *Store) AddHistoryRecord(record models.ReceiptRecord) models.ReceiptRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == 0 {
		record.ID = s.ids.NextID()
	}
	history := make([]models.ReceiptRecord, 0, len(s.history)+1)
	history = append(history, record)
	s.history = append(history, s.history...)
	s.reportSizes()
	s.persist(models.KindHistory)
	return record
}

func (s *Store) RemoveHistoryRecord(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.historyIndex(id)
	if i < 0 {
		return ErrRecordNotFound
	}
	s.history = append(s.history[:i:i], s.history[i+1:]...)
	s.reportSizes()
	s.persist(models.KindHistory)
	return nil
}

// ClearHistory drops every record and returns how many there were.
func (s *Store) ClearHistory() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history)
	s.history = []models.ReceiptRecord{}
	s.reportSizes()
	s.persist(models.KindHistory)
	return n
}
