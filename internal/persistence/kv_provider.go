package persistence

import (
	"fmt"
	"receiptd/internal/persistence/interfaces"
	"receiptd/internal/providers"
	"receiptd/internal/structures"
)

// NewKeyValueStore opens the backend named by persistence.driver.
func NewKeyValueStore(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger) (interfaces.KeyValueInterface, error) {
	switch conf.Persistence.Driver {
	case "file", "":
		kv, err := NewFileKV(conf.Persistence.Dir, compressor)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStore, "Using file storage in %s", conf.Persistence.Dir)
		return kv, nil
	case "sqlite", "postgres":
		kv, err := NewGormKV(conf.Persistence.Driver, conf.Persistence.DSN)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeStore, "Using %s storage", conf.Persistence.Driver)
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown persistence driver %q", conf.Persistence.Driver)
	}
}
