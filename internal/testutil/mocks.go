package testutil

import (
	"errors"
	"receiptd/internal/providers"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu                  sync.Mutex
	Requests            int
	CacheHits           int
	CacheMisses         int
	PersistenceObserved int
	PersistenceFailures map[string]int
	CollectionSizes     map[string]int
	ReceiptsIssued      map[string]int
	PostalLookups       map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceObserved++
}

func (m *MockMetrics) IncPersistenceFailures(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PersistenceFailures == nil {
		m.PersistenceFailures = map[string]int{}
	}
	m.PersistenceFailures[kind]++
}

func (m *MockMetrics) SetCollectionSize(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CollectionSizes == nil {
		m.CollectionSizes = map[string]int{}
	}
	m.CollectionSizes[kind] = count
}

func (m *MockMetrics) IncReceiptsIssued(taxMode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReceiptsIssued == nil {
		m.ReceiptsIssued = map[string]int{}
	}
	m.ReceiptsIssued[taxMode]++
}

func (m *MockMetrics) IncPostalLookups(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PostalLookups == nil {
		m.PostalLookups = map[string]int{}
	}
	m.PostalLookups[result]++
}

// CollectionSize returns the last size reported for kind.
func (m *MockMetrics) CollectionSize(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CollectionSizes[kind]
}

// Failures returns the persistence failure count for kind.
func (m *MockMetrics) Failures(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PersistenceFailures[kind]
}

var ErrMockWrite = errors.New("mock write failure")

// MockKV implements interfaces.KeyValueInterface in memory. Setting
// FailWrites or FailReads makes the corresponding calls error.
type MockKV struct {
	mu         sync.Mutex
	Data       map[string][]byte
	Sets       map[string]int
	FailWrites bool
	FailReads  bool
	Closed     bool
}

func NewMockKV() *MockKV {
	return &MockKV{Data: map[string][]byte{}, Sets: map[string]int{}}
}

func (m *MockKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, true, errors.New("mock read failure")
	}
	v, ok := m.Data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MockKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrMockWrite
	}
	out := make([]byte, len(value))
	copy(out, value)
	m.Data[key] = out
	m.Sets[key]++
	return nil
}

func (m *MockKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	return nil
}

func (m *MockKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// SetFailWrites toggles write failures under the lock.
func (m *MockKV) SetFailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailWrites = fail
}

// SetCount returns how many successful writes key has received.
func (m *MockKV) SetCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sets[key]
}

// Raw returns the stored value for key.
func (m *MockKV) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Data[key]
	return v, ok
}

// MockIDs implements providers.IDProviderInterface with a counter.
type MockIDs struct {
	mu   sync.Mutex
	Next int64
}

func (m *MockIDs) NextID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Next == 0 {
		m.Next = 1000
	}
	m.Next++
	return m.Next
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}
