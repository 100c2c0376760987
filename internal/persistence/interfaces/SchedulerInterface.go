package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// SnapshotStoreInterface is what the scheduler needs from the issuer and
// history store.
type SnapshotStoreInterface interface {
	LoadAll()
	Dirty() bool
	Flush() error
}
