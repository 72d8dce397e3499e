package services

import (
	"context"
	"errors"
	"testing"
)

func TestMockHostPasswordFlow(t *testing.T) {
	host := NewMockHost()
	host.Archives["a.zip"] = MockArchive{Files: []string{"x.txt"}, Password: "secret"}
	ctx := context.Background()

	result, err := host.ParseArchive(ctx, ParseRequest{Path: "a.zip"})
	if err != nil || !result.IsEncrypted {
		t.Fatalf("first parse = %+v, %v; want encrypted", result, err)
	}
	if _, err := host.ParseArchive(ctx, ParseRequest{Path: "a.zip", Password: "nope"}); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password error = %v", err)
	}
	result, err = host.ParseArchive(ctx, ParseRequest{Path: "a.zip", Password: "secret"})
	if err != nil {
		t.Fatalf("ParseArchive() error = %v", err)
	}
	if result.Metadata.Name != "a.zip" || result.Metadata.NumberOfFiles != 1 {
		t.Errorf("metadata = %+v", result.Metadata)
	}
	if calls := host.Calls(); len(calls) != 3 {
		t.Errorf("recorded %d calls, want 3", len(calls))
	}
}

func TestMockHostSelection(t *testing.T) {
	host := NewMockHost()
	ctx := context.Background()
	if err := host.SelectFile(ctx); !errors.Is(err, ErrNoFilePicker) {
		t.Errorf("SelectFile() with empty queue = %v", err)
	}
	host.QueueSelection("b.zip")
	host.QueueSelection("")
	if err := host.SelectFile(ctx); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if err := host.SelectFile(ctx); err != nil {
		t.Fatalf("SelectFile() error = %v", err)
	}
	if event := <-host.Events(); event.Kind != FileSelected || event.Path != "b.zip" {
		t.Errorf("first event = %+v", event)
	}
	if event := <-host.Events(); event.Kind != SelectionCancelled {
		t.Errorf("second event = %+v", event)
	}
}
