package services

import (
	"errors"
	"fmt"

	"zipexplorer/internal/domain"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrNoFilePicker    = errors.New("no file picker available")
)

type ParseResult struct {
	IsEncrypted bool
	Files       []string
	Metadata    domain.ArchiveMetadata
}

// ParseError is any parse failure other than a wrong password.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (err *ParseError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	if err.Err != nil {
		return fmt.Sprintf("cannot read %s: %v", err.Path, err.Err)
	}
	return fmt.Sprintf("cannot read %s", err.Path)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
