package services

import "context"

// Picker opens a file chooser. The outcome is delivered on Events, not
// returned from SelectFile.
type Picker interface {
	SelectFile(ctx context.Context) error
	Events() <-chan HostEvent
}

type Parser interface {
	ParseArchive(ctx context.Context, req ParseRequest) (ParseResult, error)
}

type PlatformDescriber interface {
	PlatformDescription() string
}

// Host is the process that owns archive decoding and native dialogs.
type Host interface {
	Picker
	Parser
	PlatformDescriber
}
