package recent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"zipexplorer/internal/domain"
)

func paths(entries []domain.RecentArchive) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Path)
	}
	return out
}

func TestLoadEmptyStorage(t *testing.T) {
	cache := New(NewMemoryStorage(), nil)
	if got := cache.Load(); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
}

func TestRecordMovesToFront(t *testing.T) {
	cache := New(NewMemoryStorage(), nil)
	cache.Record("/a.zip")
	cache.Record("/b.zip")
	got := cache.Record("/a.zip")
	if want := []string{"/a.zip", "/b.zip"}; !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Record() = %v, want %v", paths(got), want)
	}
}

func TestRecordDropsOldest(t *testing.T) {
	cache := New(NewMemoryStorage(), nil)
	for i := 1; i <= 6; i++ {
		cache.Record(fmt.Sprintf("/archives/%d.zip", i))
	}
	want := []string{"/archives/6.zip", "/archives/5.zip", "/archives/4.zip", "/archives/3.zip", "/archives/2.zip"}
	if got := paths(cache.Entries()); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestRecordInvariants(t *testing.T) {
	storage := NewMemoryStorage()
	cache := New(storage, nil)
	sequence := []string{"a", "b", "c", "a", "d", "e", "f", "b", "b", "g", "c", "a"}
	for _, path := range sequence {
		entries := cache.Record(path)
		if len(entries) > MaxEntries {
			t.Fatalf("after %s: %d entries", path, len(entries))
		}
		if entries[0].Path != path {
			t.Fatalf("after %s: front is %s", path, entries[0].Path)
		}
		seen := map[string]bool{}
		for _, entry := range entries {
			if seen[entry.Path] {
				t.Fatalf("after %s: duplicate %s", path, entry.Path)
			}
			seen[entry.Path] = true
		}
		reloaded := New(storage, nil).Load()
		if !reflect.DeepEqual(reloaded, entries) {
			t.Fatalf("after %s: reloaded %v, recorded %v", path, reloaded, entries)
		}
	}
}

func TestRecordDisplayName(t *testing.T) {
	cache := New(NewMemoryStorage(), nil)
	entries := cache.Record(`C:\Users\me\Downloads\photos.zip`)
	if entries[0].Name != "photos.zip" {
		t.Errorf("Name = %q, want photos.zip", entries[0].Name)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/home/me/a.zip", "a.zip"},
		{`C:\data\b.zip`, "b.zip"},
		{`mixed/dir\c.zip`, "c.zip"},
		{"plain.zip", "plain.zip"},
		{"/trailing/dir/", "dir"},
		{"", ""},
		{"/", "/"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.path); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestLoadCorruptStorage(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.SetItem(StorageKey, "{not json")
	core, logs := observer.New(zapcore.WarnLevel)
	cache := New(storage, zap.New(core))
	if got := cache.Load(); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
	if logs.Len() != 1 {
		t.Errorf("expected one warning, got %d", logs.Len())
	}
}

func TestLoadSanitizes(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.SetItem(StorageKey, `[
		{"path":"/a.zip","name":"a.zip"},
		{"path":"","name":"ghost"},
		{"path":"/a.zip","name":"dup"},
		{"path":"/b.zip"},
		{"path":"/c.zip","name":"c.zip"},
		{"path":"/d.zip","name":"d.zip"},
		{"path":"/e.zip","name":"e.zip"},
		{"path":"/f.zip","name":"f.zip"}
	]`)
	got := New(storage, nil).Load()
	if want := []string{"/a.zip", "/b.zip", "/c.zip", "/d.zip", "/e.zip"}; !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Load() = %v, want %v", paths(got), want)
	}
	if got[1].Name != "b.zip" {
		t.Errorf("missing name not derived: %+v", got[1])
	}
}

func TestRecordSwallowsPersistFailure(t *testing.T) {
	storage := NewMemoryStorage()
	storage.FailWrites = errors.New("disk full")
	core, logs := observer.New(zapcore.WarnLevel)
	cache := New(storage, zap.New(core))

	cache.Record("/a.zip")
	entries := cache.Record("/b.zip")
	if want := []string{"/b.zip", "/a.zip"}; !reflect.DeepEqual(paths(entries), want) {
		t.Errorf("Record() = %v, want %v", paths(entries), want)
	}
	if logs.FilterMessage("persist recent archives").Len() != 2 {
		t.Errorf("expected two persist warnings, got %d", logs.Len())
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	storage := NewFileStorage(path)

	if _, ok, err := storage.GetItem(StorageKey); err != nil || ok {
		t.Fatalf("GetItem() on missing file = ok %v, err %v", ok, err)
	}
	cache := New(storage, nil)
	cache.Record("/x/one.zip")
	cache.Record("/x/two.zip")

	reloaded := New(NewFileStorage(path), nil).Load()
	if want := []string{"/x/two.zip", "/x/one.zip"}; !reflect.DeepEqual(paths(reloaded), want) {
		t.Errorf("reloaded = %v, want %v", paths(reloaded), want)
	}
	if err := storage.SetItem("theme", "light"); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if value, ok, _ := storage.GetItem("theme"); !ok || value != "light" {
		t.Errorf("GetItem(theme) = %q, %v", value, ok)
	}
	if _, ok, _ := storage.GetItem(StorageKey); !ok {
		t.Error("other keys must survive SetItem")
	}
}

func TestFileStorageCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	storage := NewFileStorage(path)
	if _, _, err := storage.GetItem(StorageKey); err == nil {
		t.Error("expected decode error for corrupt file")
	}
	if got := New(storage, nil).Load(); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
	if err := storage.SetItem(StorageKey, "[]"); err != nil {
		t.Fatalf("SetItem() over corrupt file error = %v", err)
	}
	if _, _, err := storage.GetItem(StorageKey); err != nil {
		t.Errorf("GetItem() after rewrite error = %v", err)
	}
}

func TestFileStorageUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cache := New(NewFileStorage(filepath.Join(blocker, "storage.json")), nil)
	entries := cache.Record("/a.zip")
	if len(entries) != 1 || entries[0].Path != "/a.zip" {
		t.Errorf("Record() = %v", entries)
	}
}

type unreadableStorage struct {
	*MemoryStorage
	readErr error
}

func (storage *unreadableStorage) GetItem(key string) (string, bool, error) {
	if storage.readErr != nil {
		return "", false, storage.readErr
	}
	return storage.MemoryStorage.GetItem(key)
}

func TestRecordKeepsHistoryAfterFailedLoad(t *testing.T) {
	memory := NewMemoryStorage()
	_ = memory.SetItem(StorageKey, `[{"path":"/old1.zip","name":"old1.zip"},{"path":"/old2.zip","name":"old2.zip"}]`)
	storage := &unreadableStorage{MemoryStorage: memory, readErr: errors.New("permission denied")}
	core, logs := observer.New(zapcore.WarnLevel)
	cache := New(storage, zap.New(core))

	if got := cache.Load(); len(got) != 0 {
		t.Fatalf("Load() = %v, want empty", got)
	}
	if got := cache.Record("/new.zip"); !reflect.DeepEqual(paths(got), []string{"/new.zip"}) {
		t.Errorf("Record() = %v", paths(got))
	}
	raw, _, _ := memory.GetItem(StorageKey)
	if raw != `[{"path":"/old1.zip","name":"old1.zip"},{"path":"/old2.zip","name":"old2.zip"}]` {
		t.Errorf("stored history overwritten: %s", raw)
	}
	if logs.FilterMessage("skip persisting recent archives").Len() != 1 {
		t.Errorf("expected skip warning, got %d entries", logs.Len())
	}

	storage.readErr = nil
	got := cache.Record("/newer.zip")
	if want := []string{"/newer.zip", "/new.zip", "/old1.zip", "/old2.zip"}; !reflect.DeepEqual(paths(got), want) {
		t.Errorf("Record() after recovery = %v, want %v", paths(got), want)
	}
	reloaded := New(memory, nil).Load()
	if !reflect.DeepEqual(paths(reloaded), paths(got)) {
		t.Errorf("persisted = %v, want %v", paths(reloaded), paths(got))
	}
}

func TestFileStorageSetItemKeepsUnreadableFile(t *testing.T) {
	// a directory at the storage path fails to read without being corrupt
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	storage := NewFileStorage(path)
	_, _, err := storage.GetItem(StorageKey)
	if err == nil || errors.Is(err, ErrCorruptStorage) {
		t.Fatalf("GetItem() error = %v, want read error", err)
	}
	if err := storage.SetItem(StorageKey, "[]"); err == nil {
		t.Fatal("SetItem() replaced an unreadable storage file")
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("storage path changed: %v", err)
	}
}

func TestFileStorageOversizedFileKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	data := make([]byte, maxStorageBytes+1)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := NewFileStorage(path).SetItem(StorageKey, "[]"); err == nil {
		t.Fatal("SetItem() overwrote an oversized storage file")
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() != maxStorageBytes+1 {
		t.Errorf("storage file changed: %v", err)
	}
}

func TestFileStorageCorruptErrorKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := NewFileStorage(path).GetItem(StorageKey)
	if !errors.Is(err, ErrCorruptStorage) {
		t.Errorf("GetItem() error = %v, want ErrCorruptStorage", err)
	}
}
