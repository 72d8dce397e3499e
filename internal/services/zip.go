package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"zipexplorer/internal/domain"
)

// maxPasswordChecks bounds how many encrypted entries a password is tested
// against.
const maxPasswordChecks = 8

// ZipHost reads ZIP archives from the local filesystem and opens native file
// dialogs through zenity or kdialog.
type ZipHost struct {
	dialog DialogRunner
	events chan HostEvent
	logger *zap.Logger
}

func NewZipHost(logger *zap.Logger) *ZipHost {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZipHost{
		dialog: ExecDialog{},
		events: make(chan HostEvent, 4),
		logger: logger.Named("zip-host"),
	}
}

func (host *ZipHost) WithDialog(dialog DialogRunner) *ZipHost {
	host.dialog = dialog
	return host
}

func (host *ZipHost) Events() <-chan HostEvent {
	return host.events
}

func (host *ZipHost) SelectFile(ctx context.Context) error {
	path, err := host.dialog.PickFile(ctx, "Select a ZIP archive")
	if err != nil {
		if errors.Is(err, errDialogCancelled) {
			host.logger.Debug("file selection cancelled")
			return host.emit(ctx, HostEvent{Kind: SelectionCancelled})
		}
		return fmt.Errorf("open file picker: %w", err)
	}
	host.logger.Debug("file selected", zap.String("path", path))
	return host.emit(ctx, HostEvent{Kind: FileSelected, Path: path})
}

func (host *ZipHost) emit(ctx context.Context, event HostEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case host.events <- event:
		return nil
	}
}

func (host *ZipHost) ParseArchive(ctx context.Context, req ParseRequest) (ParseResult, error) {
	path := cleanPath(req.Path)
	name := filepath.Base(path)
	reader, err := zip.OpenReader(path)
	if err != nil {
		return ParseResult{}, &ParseError{Path: path, Message: fmt.Sprintf("%s: %v", name, err), Err: err}
	}
	defer reader.Close()

	result := ParseResult{Metadata: domain.ArchiveMetadata{Name: name}}
	var encrypted []*zip.File
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return ParseResult{}, err
		}
		if isEncrypted(file) {
			encrypted = append(encrypted, file)
		}
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		result.Files = append(result.Files, file.Name)
		result.Metadata.Size += file.UncompressedSize64
		result.Metadata.CompressedSize += file.CompressedSize64
		result.Metadata.NumberOfFiles++
	}
	if len(encrypted) == 0 {
		return result, nil
	}
	if !req.HasPassword() {
		host.logger.Debug("archive is encrypted", zap.String("path", path), zap.Int("entries", len(encrypted)))
		return ParseResult{IsEncrypted: true, Metadata: domain.ArchiveMetadata{Name: name}}, nil
	}
	if len(encrypted) > maxPasswordChecks {
		encrypted = encrypted[:maxPasswordChecks]
	}
	for _, file := range encrypted {
		ok, err := checkPassword(file, req.Password)
		if err != nil {
			return ParseResult{}, &ParseError{Path: path, Message: fmt.Sprintf("%s: %s: %v", name, file.Name, err), Err: err}
		}
		if !ok {
			host.logger.Debug("password rejected", zap.String("path", path), zap.String("entry", file.Name))
			return ParseResult{}, ErrInvalidPassword
		}
	}
	return result, nil
}

func (host *ZipHost) PlatformDescription() string {
	return fmt.Sprintf("%s/%s (%s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func cleanPath(path string) string {
	if path == "" {
		return path
	}
	clean := filepath.Clean(path)
	abs, err := filepath.Abs(clean)
	if err != nil {
		return clean
	}
	return abs
}
