package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Driver       string        `yaml:"driver" validate:"required|in:file,sqlite,postgres"`
	Dir          string        `yaml:"dir"`
	DSN          string        `yaml:"dsn"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type BillingConfig struct {
	TaxRate             float64 `yaml:"taxRate" validate:"min:0|max:1"`
	TaxMode             string  `yaml:"taxMode" validate:"required|in:exclusive,inclusive"`
	ReceiptNumberFormat string  `yaml:"receiptNumberFormat" validate:"required|in:R-YYYYMMDD-HHMM,YYYYMMDD-HHMMSS"`
	Timezone            string  `yaml:"timezone"`
	ElectronicByDefault bool    `yaml:"electronicByDefault"`
	NodeID              int64   `yaml:"nodeId" validate:"min:0|max:1023"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type PostalConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
	Burst         int           `yaml:"burst"`
}

type PrinterConfig struct {
	Type      string `yaml:"type" validate:"in:none,usb,network,spool"`
	USBPath   string `yaml:"usbPath"`
	Address   string `yaml:"address"`
	SpoolDir  string `yaml:"spoolDir"`
	CharWidth int    `yaml:"charWidth"`
	Charset   string `yaml:"charset" validate:"in:utf8,sjis"`
	Format    string `yaml:"format" validate:"in:pdf,escpos,html"`
}

type PDFConfig struct {
	FontPath string `yaml:"fontPath"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Billing     BillingConfig `yaml:"billing"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
	Postal      PostalConfig  `yaml:"postal"`
	Printer     PrinterConfig `yaml:"printer"`
	PDF         PDFConfig     `yaml:"pdf"`
}
