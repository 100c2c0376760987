package persistence

import (
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/providers"
	"receiptd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const defaultSaveInterval = 30 * time.Second

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	store   interfaces.SnapshotStoreInterface
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval
	if interval <= 0 {
		interval = defaultSaveInterval
	}

	s.cron.AddFunc(gron.Every(interval), func() {
		s.flushDirty()
	})

	s.cron.Start()
}

// flushDirty re-saves collections whose last write failed.
func (s *Scheduler) flushDirty() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if !s.store.Dirty() {
		return
	}
	s.logger.Infof(providers.TypeStore, "Retrying unsaved collections...")
	if err := s.flush(); err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
		return
	}
	s.logger.Infof(providers.TypeStore, "Unsaved collections persisted")
}

func (s *Scheduler) flush() error {
	start := time.Now()
	err := s.store.Flush()
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.store.LoadAll()
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeStore, "Persisting collections...")
	err := s.flush()
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, store interfaces.SnapshotStoreInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		store:   store,
		metrics: metrics,
	}
}
