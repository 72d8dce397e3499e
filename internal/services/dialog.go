package services

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

var errDialogCancelled = errors.New("dialog cancelled")

type DialogRunner interface {
	PickFile(ctx context.Context, title string) (string, error)
}

// ExecDialog runs the first available desktop dialog helper.
type ExecDialog struct{}

func (ExecDialog) PickFile(ctx context.Context, title string) (string, error) {
	name, args, err := dialogCommand(title)
	if err != nil {
		return "", err
	}
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", errDialogCancelled
		}
		return "", err
	}
	path := strings.TrimRight(string(output), "\r\n")
	if path == "" {
		return "", errDialogCancelled
	}
	return path, nil
}

func dialogCommand(title string) (string, []string, error) {
	if path, err := exec.LookPath("zenity"); err == nil {
		return path, []string{
			"--file-selection",
			"--title=" + title,
			"--file-filter=ZIP files | *.zip *.ZIP",
		}, nil
	}
	if path, err := exec.LookPath("kdialog"); err == nil {
		return path, []string{"--title", title, "--getopenfilename", ".", "*.zip *.ZIP|ZIP files"}, nil
	}
	return "", nil, ErrNoFilePicker
}
