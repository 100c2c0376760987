package printing

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"receiptd/internal/structures"
	"time"

	"github.com/google/uuid"
)

// Printer receives a rendered receipt. Callers only look at the returned
// error.
type Printer interface {
	Print(data []byte) error
	Close() error
	IsConnected() bool
}

// JobPrinter is implemented by printers that can name the job they create.
type JobPrinter interface {
	PrintJob(data []byte, ext string) (string, error)
}

// --- USB printer (device file, e.g. /dev/usb/lp0) ---

type usbPrinter struct {
	path string
}

func NewUSBPrinter(devicePath string) Printer {
	return &usbPrinter{path: devicePath}
}

func (p *usbPrinter) Print(data []byte) error {
	f, err := os.OpenFile(p.path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("printer: open USB device %s: %w", p.path, err)
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("printer: write to USB device %s: %w", p.path, err)
	}
	return nil
}

func (p *usbPrinter) Close() error {
	return nil
}

func (p *usbPrinter) IsConnected() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

// --- Network printer (raw TCP, usually port 9100) ---

type networkPrinter struct {
	address string
	timeout time.Duration
}

func NewNetworkPrinter(address string) Printer {
	return &networkPrinter{address: address, timeout: 5 * time.Second}
}

func (p *networkPrinter) Print(data []byte) error {
	conn, err := net.DialTimeout("tcp", p.address, p.timeout)
	if err != nil {
		return fmt.Errorf("printer: connect to %s: %w", p.address, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

	if _, err = conn.Write(data); err != nil {
		return fmt.Errorf("printer: write to %s: %w", p.address, err)
	}
	return nil
}

func (p *networkPrinter) Close() error {
	return nil
}

func (p *networkPrinter) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", p.address, 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// --- Spool printer (one file per job, used for PDF export) ---

type SpoolPrinter struct {
	dir string
}

func NewSpoolPrinter(dir string) (*SpoolPrinter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("printer: create spool dir %s: %w", dir, err)
	}
	return &SpoolPrinter{dir: dir}, nil
}

func (p *SpoolPrinter) Print(data []byte) error {
	_, err := p.PrintJob(data, "bin")
	return err
}

// PrintJob writes data to <uuid>.<ext> and returns the file path.
func (p *SpoolPrinter) PrintJob(data []byte, ext string) (string, error) {
	name := filepath.Join(p.dir, uuid.NewString()+"."+ext)
	tmp := name + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("printer: spool job: %w", err)
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("printer: spool job: %w", err)
	}
	return name, nil
}

func (p *SpoolPrinter) Close() error {
	return nil
}

func (p *SpoolPrinter) IsConnected() bool {
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// --- Null printer (nothing configured) ---

type nullPrinter struct{}

func NewNullPrinter() Printer {
	return &nullPrinter{}
}

func (p *nullPrinter) Print(_ []byte) error {
	return nil
}

func (p *nullPrinter) Close() error {
	return nil
}

func (p *nullPrinter) IsConnected() bool {
	return false
}

// NewPrinterFromConfig creates the Printer named by printer.type.
func NewPrinterFromConfig(conf *structures.Config) (Printer, error) {
	pc := conf.Printer
	switch pc.Type {
	case "usb":
		if pc.USBPath == "" {
			return nil, fmt.Errorf("printer: USB path is required for USB printer type")
		}
		return NewUSBPrinter(pc.USBPath), nil
	case "network":
		if pc.Address == "" {
			return nil, fmt.Errorf("printer: address is required for network printer type")
		}
		return NewNetworkPrinter(pc.Address), nil
	case "spool":
		if pc.SpoolDir == "" {
			return nil, fmt.Errorf("printer: spool dir is required for spool printer type")
		}
		return NewSpoolPrinter(pc.SpoolDir)
	case "none", "":
		return NewNullPrinter(), nil
	default:
		return nil, fmt.Errorf("printer: unknown printer type %q (use usb, network, spool or none)", pc.Type)
	}
}
