package recent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	storageDirName  = "zipexplorer"
	storageFileName = "storage.json"
	maxStorageBytes = 1024 * 1024
)

// ErrCorruptStorage marks a storage file that exists but cannot be decoded.
var ErrCorruptStorage = errors.New("corrupt storage file")

// Storage is a string key/value store in the manner of browser local
// storage.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// FileStorage keeps every record in a single JSON object file.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func DefaultStoragePath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, storageDirName, storageFileName), nil
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (storage *FileStorage) Path() string {
	return storage.path
}

func (storage *FileStorage) GetItem(key string) (string, bool, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	records, err := storage.read()
	if err != nil {
		return "", false, err
	}
	value, ok := records[key]
	return value, ok, nil
}

func (storage *FileStorage) SetItem(key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	records, err := storage.read()
	switch {
	case errors.Is(err, ErrCorruptStorage):
		records = map[string]string{}
	case err != nil:
		return fmt.Errorf("read storage before write: %w", err)
	}
	records[key] = value
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(storage.path, data, 0o600)
}

func (storage *FileStorage) read() (map[string]string, error) {
	records := map[string]string{}
	info, err := os.Stat(storage.path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, err
	}
	if info.Size() > maxStorageBytes {
		return nil, fmt.Errorf("storage file too large: %d bytes", info.Size())
	}
	data, err := os.ReadFile(storage.path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorruptStorage, storage.path, err)
	}
	return records, nil
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	committed = true
	return nil
}

// MemoryStorage is a Storage that lives only for the process.
type MemoryStorage struct {
	mu      sync.Mutex
	records map[string]string
	// FailWrites makes SetItem return this error.
	FailWrites error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: map[string]string{}}
}

func (storage *MemoryStorage) GetItem(key string) (string, bool, error) {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	value, ok := storage.records[key]
	return value, ok, nil
}

func (storage *MemoryStorage) SetItem(key, value string) error {
	storage.mu.Lock()
	defer storage.mu.Unlock()
	if storage.FailWrites != nil {
		return storage.FailWrites
	}
	storage.records[key] = value
	return nil
}
