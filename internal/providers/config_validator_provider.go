package providers

import (
	"errors"
	"fmt"
	"receiptd/internal/structures"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return v.Errors
	}

	p := c.conf.Persistence
	switch p.Driver {
	case "file":
		if p.Dir == "" {
			return errors.New("persistence.dir is required for the file driver")
		}
	case "sqlite", "postgres":
		if p.DSN == "" {
			return fmt.Errorf("persistence.dsn is required for the %s driver", p.Driver)
		}
	}

	pr := c.conf.Printer
	switch pr.Type {
	case "usb":
		if pr.USBPath == "" {
			return errors.New("printer.usbPath is required for usb printers")
		}
	case "network":
		if pr.Address == "" {
			return errors.New("printer.address is required for network printers")
		}
	case "spool":
		if pr.SpoolDir == "" {
			return errors.New("printer.spoolDir is required for spool printers")
		}
	}

	if c.conf.Postal.Enabled {
		if c.conf.Postal.Endpoint == "" {
			return errors.New("postal.endpoint is required when postal lookup is enabled")
		}
		if c.conf.Postal.Timeout <= 0 || c.conf.Postal.Timeout > time.Minute {
			return errors.New("postal.timeout must be within (0, 1m]")
		}
	}

	if c.conf.Cache.Enabled && c.conf.Cache.TTL < time.Second {
		return errors.New("cache.ttl must be at least 1s")
	}
	return nil
}
