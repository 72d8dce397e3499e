package services

import (
	"archive/zip"
	"context"
	"crypto/sha1"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/crypto/pbkdf2"
)

func writeArchive(t *testing.T, build func(writer *zip.Writer)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	writer := zip.NewWriter(file)
	build(writer)
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func addFile(t *testing.T, writer *zip.Writer, name, content string) {
	t.Helper()
	entry, err := writer.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := entry.Write([]byte(content)); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func addZipCryptoFile(t *testing.T, writer *zip.Writer, name, content, password string) {
	t.Helper()
	data := []byte(content)
	crc := crc32.ChecksumIEEE(data)
	plain := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, byte(crc >> 24)}
	keys := newZipCryptoKeys(password)
	encrypted := make([]byte, 0, len(plain)+len(data))
	for _, b := range append(plain, data...) {
		encrypted = append(encrypted, b^keys.stream())
		keys.update(b)
	}
	entry, err := writer.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Store,
		Flags:              flagEncrypted,
		CRC32:              crc,
		CompressedSize64:   uint64(len(encrypted)),
		UncompressedSize64: uint64(len(data)),
	})
	if err != nil {
		t.Fatalf("create raw %s: %v", name, err)
	}
	if _, err := entry.Write(encrypted); err != nil {
		t.Fatalf("write raw %s: %v", name, err)
	}
}

func addAESFile(t *testing.T, writer *zip.Writer, name, password string) {
	t.Helper()
	salt := []byte("0123456789abcdef")
	derived := pbkdf2.Key([]byte(password), salt, aesIterations, 2*32+2, sha1.New)
	body := append([]byte{}, salt...)
	body = append(body, derived[64:]...)
	body = append(body, []byte("ciphertext")...)
	body = append(body, make([]byte, 10)...)
	extra := []byte{0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x03, 0x08, 0x00}
	entry, err := writer.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             methodWinZipAES,
		Flags:              flagEncrypted,
		Extra:              extra,
		CompressedSize64:   uint64(len(body)),
		UncompressedSize64: 10,
	})
	if err != nil {
		t.Fatalf("create raw %s: %v", name, err)
	}
	if _, err := entry.Write(body); err != nil {
		t.Fatalf("write raw %s: %v", name, err)
	}
}

func TestZipHostPlainArchive(t *testing.T) {
	path := writeArchive(t, func(writer *zip.Writer) {
		if _, err := writer.Create("dir/"); err != nil {
			t.Fatalf("create dir: %v", err)
		}
		addFile(t, writer, "dir/a.txt", "alpha")
		addFile(t, writer, "dir/sub/b.txt", "bravo!")
		addFile(t, writer, "c.txt", "")
	})

	host := NewZipHost(nil)
	result, err := host.ParseArchive(context.Background(), ParseRequest{Path: path})
	if err != nil {
		t.Fatalf("ParseArchive() error = %v", err)
	}
	if result.IsEncrypted {
		t.Error("plain archive reported as encrypted")
	}
	want := []string{"dir/a.txt", "dir/sub/b.txt", "c.txt"}
	if !reflect.DeepEqual(result.Files, want) {
		t.Errorf("Files = %v, want %v", result.Files, want)
	}
	if result.Metadata.Name != "test.zip" {
		t.Errorf("Name = %q, want test.zip", result.Metadata.Name)
	}
	if result.Metadata.NumberOfFiles != 3 {
		t.Errorf("NumberOfFiles = %d, want 3", result.Metadata.NumberOfFiles)
	}
	if result.Metadata.Size != 11 {
		t.Errorf("Size = %d, want 11", result.Metadata.Size)
	}
}

func TestZipHostMissingFile(t *testing.T) {
	host := NewZipHost(nil)
	_, err := host.ParseArchive(context.Background(), ParseRequest{Path: filepath.Join(t.TempDir(), "nope.zip")})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Error() == "" {
		t.Error("ParseError should carry a message")
	}
}

func TestZipHostNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.zip")
	if err := os.WriteFile(path, []byte("definitely not a zip"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewZipHost(nil).ParseArchive(context.Background(), ParseRequest{Path: path})
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if errors.Is(err, ErrInvalidPassword) {
		t.Error("corrupt archive must not look like a password failure")
	}
}

func TestZipHostZipCrypto(t *testing.T) {
	path := writeArchive(t, func(writer *zip.Writer) {
		addFile(t, writer, "readme.txt", "public")
		addZipCryptoFile(t, writer, "private/key.txt", "hunter2 is not a password", "secret")
		addZipCryptoFile(t, writer, "private/notes.txt", "meeting moved to noon", "secret")
	})
	host := NewZipHost(nil)
	ctx := context.Background()

	result, err := host.ParseArchive(ctx, ParseRequest{Path: path})
	if err != nil {
		t.Fatalf("ParseArchive(no password) error = %v", err)
	}
	if !result.IsEncrypted {
		t.Fatal("expected IsEncrypted without password")
	}
	if len(result.Files) != 0 {
		t.Errorf("encrypted result should not list files, got %v", result.Files)
	}

	if _, err := host.ParseArchive(ctx, ParseRequest{Path: path, Password: "wrong"}); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password error = %v, want ErrInvalidPassword", err)
	}

	result, err = host.ParseArchive(ctx, ParseRequest{Path: path, Password: "secret"})
	if err != nil {
		t.Fatalf("ParseArchive(secret) error = %v", err)
	}
	if result.IsEncrypted {
		t.Error("correct password should open the archive")
	}
	if !reflect.DeepEqual(result.Files, []string{"readme.txt", "private/key.txt", "private/notes.txt"}) {
		t.Errorf("Files = %v", result.Files)
	}
}

func TestZipHostAES(t *testing.T) {
	path := writeArchive(t, func(writer *zip.Writer) {
		addAESFile(t, writer, "vault.bin", "correct horse")
	})
	host := NewZipHost(nil)
	ctx := context.Background()

	if _, err := host.ParseArchive(ctx, ParseRequest{Path: path, Password: "battery staple"}); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password error = %v, want ErrInvalidPassword", err)
	}
	result, err := host.ParseArchive(ctx, ParseRequest{Path: path, Password: "correct horse"})
	if err != nil {
		t.Fatalf("ParseArchive() error = %v", err)
	}
	if result.Metadata.NumberOfFiles != 1 {
		t.Errorf("NumberOfFiles = %d, want 1", result.Metadata.NumberOfFiles)
	}
}

func TestAESStrength(t *testing.T) {
	tests := []struct {
		name  string
		extra []byte
		want  int
		fails bool
	}{
		{"aes128", []byte{0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x01, 0x08, 0x00}, 1, false},
		{"after other field", []byte{0x55, 0x54, 0x01, 0x00, 0x00, 0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x02, 0x08, 0x00}, 2, false},
		{"bad strength", []byte{0x01, 0x99, 0x07, 0x00, 0x02, 0x00, 'A', 'E', 0x09, 0x08, 0x00}, 0, true},
		{"missing", nil, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aesStrength(tt.extra)
			if (err != nil) != tt.fails {
				t.Fatalf("aesStrength() error = %v, fails = %v", err, tt.fails)
			}
			if got != tt.want {
				t.Errorf("aesStrength() = %d, want %d", got, tt.want)
			}
		})
	}
}

type fakeDialog struct {
	path string
	err  error
}

func (dialog fakeDialog) PickFile(ctx context.Context, title string) (string, error) {
	return dialog.path, dialog.err
}

func TestZipHostSelectFile(t *testing.T) {
	ctx := context.Background()

	host := NewZipHost(nil).WithDialog(fakeDialog{path: "/tmp/a.zip"})
	if err := host.SelectFile(ctx); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if event := <-host.Events(); event.Kind != FileSelected || event.Path != "/tmp/a.zip" {
		t.Errorf("event = %+v", event)
	}

	host = NewZipHost(nil).WithDialog(fakeDialog{err: errDialogCancelled})
	if err := host.SelectFile(ctx); err != nil {
		t.Fatalf("SelectFile(cancelled) error = %v", err)
	}
	if event := <-host.Events(); event.Kind != SelectionCancelled {
		t.Errorf("event = %+v, want cancellation", event)
	}

	host = NewZipHost(nil).WithDialog(fakeDialog{err: ErrNoFilePicker})
	if err := host.SelectFile(ctx); !errors.Is(err, ErrNoFilePicker) {
		t.Errorf("SelectFile() error = %v, want ErrNoFilePicker", err)
	}
}
