package providers

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"receiptd/internal/structures"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "ReceiptDaemon"

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("persistence.driver", "file")
	v.SetDefault("persistence.saveInterval", "30s")
	v.SetDefault("billing.taxRate", 0.10)
	v.SetDefault("billing.taxMode", "exclusive")
	v.SetDefault("billing.receiptNumberFormat", "R-YYYYMMDD-HHMM")
	v.SetDefault("billing.timezone", "Asia/Tokyo")
	v.SetDefault("billing.electronicByDefault", true)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("postal.endpoint", "https://zipcloud.ibsnet.co.jp/api/search")
	v.SetDefault("postal.timeout", "5s")
	v.SetDefault("postal.ratePerSecond", 2)
	v.SetDefault("postal.burst", 4)
	v.SetDefault("printer.type", "none")
	v.SetDefault("printer.charWidth", 48)
	v.SetDefault("printer.charset", "utf8")
	v.SetDefault("printer.format", "pdf")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// .env next to the config file is optional
	envFile := filepath.Join(filepath.Dir(flags.ConfigPath), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load %s: %w", envFile, err)
	}

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")
	setConfigDefaults(v)

	v.BindEnv("logger.level", "RECEIPTD_LOG_LEVEL")
	v.BindEnv("webServer.port", "RECEIPTD_PORT")
	v.BindEnv("persistence.driver", "RECEIPTD_PERSISTENCE_DRIVER")
	v.BindEnv("persistence.dir", "RECEIPTD_PERSISTENCE_DIR")
	v.BindEnv("persistence.dsn", "RECEIPTD_PERSISTENCE_DSN")
	v.BindEnv("billing.taxRate", "RECEIPTD_TAX_RATE")
	v.BindEnv("billing.taxMode", "RECEIPTD_TAX_MODE")
	v.BindEnv("postal.endpoint", "RECEIPTD_POSTAL_ENDPOINT")
	v.BindEnv("cache.enabled", "RECEIPTD_CACHE_ENABLED")
	v.BindEnv("cache.size", "RECEIPTD_CACHE_SIZE")
	v.BindEnv("printer.type", "RECEIPTD_PRINTER_TYPE")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
