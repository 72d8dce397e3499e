package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zipexplorer/internal/session"
	"zipexplorer/internal/tree"
	"zipexplorer/internal/units"
)

var errOpenCancelled = errors.New("archive not opened: password required")

func newTreeCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "tree <archive>",
		Short: "Print the metadata and directory tree of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd, "stderr")
			if err != nil {
				return err
			}
			defer application.Close()
			application.StartMetrics()

			presenter := &textPresenter{out: cmd.OutOrStdout(), decimals: application.Config.Decimals}
			prompter := &terminalPrompter{
				password: password,
				in:       cmd.InOrStdin(),
				out:      cmd.ErrOrStderr(),
			}
			driver := session.NewDriver(application.Host, application.Recent, prompter, presenter, application.Logger)
			final, err := driver.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch final.Phase {
			case session.Displaying:
				return presenter.err
			case session.Failed:
				return errors.New(presenter.failure)
			default:
				return errOpenCancelled
			}
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for encrypted archives")
	return cmd
}

type textPresenter struct {
	out      io.Writer
	decimals int
	failure  string
	err      error
}

func (presenter *textPresenter) ShowArchive(archive session.ShowArchive) {
	meta := archive.Metadata
	PrintSection(presenter.out, meta.Name)
	PrintLabelValue(presenter.out, "Path", archive.Path)
	PrintLabelValue(presenter.out, "Files", PrintCount(meta.NumberOfFiles, "file", "files"))
	PrintLabelValue(presenter.out, "Size", units.FormatBytes(meta.Size, presenter.decimals))
	PrintLabelValue(presenter.out, "Compressed", units.FormatBytes(meta.CompressedSize, presenter.decimals))
	_, _ = fmt.Fprintln(presenter.out)

	built := tree.Build(archive.Files)
	for _, line := range tree.Render(built.Root) {
		label := tree.Label(line)
		if line.Dir {
			label = strings.Repeat("  ", line.Depth) + dirColor.Sprint(line.Name+"/")
		}
		if _, err := fmt.Fprintln(presenter.out, label); err != nil {
			presenter.err = err
			return
		}
	}
	for _, conflict := range built.Conflicts {
		PrintWarning(presenter.out, fmt.Sprintf("%s is shadowed by a directory of the same name", conflict))
	}
}

func (presenter *textPresenter) ShowFailure(message string) {
	presenter.failure = message
}

// terminalPrompter hands out the --password value first and then asks on
// the terminal, or reads lines when input is not a terminal.
type terminalPrompter struct {
	password string
	used     bool
	in       io.Reader
	out      io.Writer
	lines    *bufio.Reader
}

func (prompter *terminalPrompter) PromptPassword(ctx context.Context, path, message string) (string, error) {
	if !prompter.used && prompter.password != "" && message == "" {
		prompter.used = true
		return prompter.password, nil
	}
	prompter.used = true
	if message != "" {
		PrintWarning(prompter.out, message)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prompter.in == nil {
		return "", session.ErrPromptCancelled
	}
	_, _ = fmt.Fprintf(prompter.out, "Password for %s: ", path)
	if file, ok := prompter.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(prompter.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return prompter.readLine()
}

func (prompter *terminalPrompter) readLine() (string, error) {
	if prompter.lines == nil {
		prompter.lines = bufio.NewReader(prompter.in)
	}
	line, err := prompter.lines.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", session.ErrPromptCancelled
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
