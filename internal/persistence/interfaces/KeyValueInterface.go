package interfaces

// KeyValueInterface is the durable string-keyed snapshot storage. A Set
// replaces the whole value; readers see either the old or the new value.
type KeyValueInterface interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
