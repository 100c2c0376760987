package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"receiptd/internal/persistence/interfaces"
	"regexp"
	"sync"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var ErrInvalidKey = errors.New("invalid storage key")

// FileKV keeps one compressed file per key inside dir.
type FileKV struct {
	mu         sync.Mutex
	dir        string
	compressor interfaces.CompressorInterface
}

func NewFileKV(dir string, compressor interfaces.CompressorInterface) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create storage dir %s: %w", dir, err)
	}
	return &FileKV{dir: dir, compressor: compressor}, nil
}

func (f *FileKV) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+".zst"), nil
}

func (f *FileKV) Get(key string) ([]byte, bool, error) {
	fileName, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, true, fmt.Errorf("decompress %s: %w", key, err)
	}
	return decompressed, true, nil
}

// Set writes through a temp file and renames it over the old value.
func (f *FileKV) Set(key string, value []byte) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileKV) Delete(key string) error {
	fileName, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(fileName); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *FileKV) Close() error {
	f.compressor.Close()
	return nil
}
