package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"zipexplorer/internal/domain"
)

type MockArchive struct {
	Files    []string
	Metadata domain.ArchiveMetadata
	Password string
	Err      error
}

// MockHost serves scripted archives from memory.
type MockHost struct {
	Archives map[string]MockArchive
	Delay    time.Duration
	Platform string

	mu        sync.Mutex
	picks     []HostEvent
	selectErr error
	calls     []ParseRequest
	events    chan HostEvent
}

func NewMockHost() *MockHost {
	return &MockHost{
		Archives: make(map[string]MockArchive),
		Platform: "mock",
		events:   make(chan HostEvent, 8),
	}
}

// QueueSelection makes the next SelectFile call report path as selected. An
// empty path reports a cancelled dialog.
func (host *MockHost) QueueSelection(path string) {
	host.mu.Lock()
	defer host.mu.Unlock()
	event := HostEvent{Kind: FileSelected, Path: path}
	if path == "" {
		event = HostEvent{Kind: SelectionCancelled}
	}
	host.picks = append(host.picks, event)
}

func (host *MockHost) FailSelection(err error) {
	host.mu.Lock()
	defer host.mu.Unlock()
	host.selectErr = err
}

func (host *MockHost) SelectFile(ctx context.Context) error {
	host.mu.Lock()
	if host.selectErr != nil {
		err := host.selectErr
		host.mu.Unlock()
		return err
	}
	if len(host.picks) == 0 {
		host.mu.Unlock()
		return ErrNoFilePicker
	}
	event := host.picks[0]
	host.picks = host.picks[1:]
	host.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case host.events <- event:
		return nil
	}
}

func (host *MockHost) Events() <-chan HostEvent {
	return host.events
}

func (host *MockHost) ParseArchive(ctx context.Context, req ParseRequest) (ParseResult, error) {
	host.mu.Lock()
	host.calls = append(host.calls, req)
	archive, ok := host.Archives[req.Path]
	host.mu.Unlock()

	if host.Delay > 0 {
		select {
		case <-ctx.Done():
			return ParseResult{}, ctx.Err()
		case <-time.After(host.Delay):
		}
	}
	if !ok {
		return ParseResult{}, &ParseError{Path: req.Path, Message: fmt.Sprintf("%s: no such archive", filepath.Base(req.Path))}
	}
	if archive.Err != nil {
		return ParseResult{}, archive.Err
	}
	if archive.Password != "" {
		if !req.HasPassword() {
			return ParseResult{IsEncrypted: true}, nil
		}
		if req.Password != archive.Password {
			return ParseResult{}, ErrInvalidPassword
		}
	}
	meta := archive.Metadata
	if meta.Name == "" {
		meta.Name = filepath.Base(req.Path)
	}
	if meta.NumberOfFiles == 0 {
		meta.NumberOfFiles = len(archive.Files)
	}
	return ParseResult{
		Files:    append([]string(nil), archive.Files...),
		Metadata: meta,
	}, nil
}

func (host *MockHost) PlatformDescription() string {
	return host.Platform
}

func (host *MockHost) Calls() []ParseRequest {
	host.mu.Lock()
	defer host.mu.Unlock()
	return append([]ParseRequest(nil), host.calls...)
}

// DemoHost returns a MockHost preloaded with a plain and an encrypted
// archive.
func DemoHost() *MockHost {
	host := NewMockHost()
	host.Platform = "demo"
	host.Archives["demo/photos.zip"] = MockArchive{
		Files: []string{
			"2023/summer/beach.jpg",
			"2023/summer/sunset.jpg",
			"2023/winter/snow.jpg",
			"2024/spring/garden.jpg",
			"index.html",
		},
		Metadata: domain.ArchiveMetadata{Size: 18_874_368, CompressedSize: 17_301_504},
	}
	host.Archives["demo/secret.zip"] = MockArchive{
		Files: []string{
			"contracts/2024/lease.pdf",
			"contracts/2024/nda.pdf",
			"keys/id_ed25519.pub",
			"notes.txt",
		},
		Metadata: domain.ArchiveMetadata{Size: 524_288, CompressedSize: 131_072},
		Password: "secret",
	}
	host.Archives["demo/broken.zip"] = MockArchive{
		Err: &ParseError{Path: "demo/broken.zip", Message: "broken.zip: zip: not a valid zip file"},
	}
	return host
}
