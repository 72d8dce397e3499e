package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"zipexplorer/internal/domain"
	"zipexplorer/internal/metrics"
	"zipexplorer/internal/services"
)

// ErrPromptCancelled is returned by a Prompter when the user gives up.
var ErrPromptCancelled = errors.New("password prompt cancelled")

type Recorder interface {
	Record(path string) []domain.RecentArchive
}

type Prompter interface {
	PromptPassword(ctx context.Context, path, message string) (string, error)
}

type Presenter interface {
	ShowArchive(archive ShowArchive)
	ShowFailure(message string)
}

// Driver runs a session to completion on the calling goroutine. Each parse
// call finishes before the next event is applied.
type Driver struct {
	parser    services.Parser
	recorder  Recorder
	prompter  Prompter
	presenter Presenter
	logger    *zap.Logger

	state State
}

func NewDriver(parser services.Parser, recorder Recorder, prompter Prompter, presenter Presenter, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		parser:    parser,
		recorder:  recorder,
		prompter:  prompter,
		presenter: presenter,
		logger:    logger.Named("session"),
	}
}

func (driver *Driver) State() State {
	return driver.state
}

// Open selects path and keeps applying events until the session settles in
// Displaying, Failed or Idle.
func (driver *Driver) Open(ctx context.Context, path string) (State, error) {
	queue := []Event{Select{Path: path}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return driver.state, err
		}
		event := queue[0]
		queue = queue[1:]

		var effects []Effect
		driver.state, effects = Transition(driver.state, event)
		if submit, ok := event.(SubmitPassword); ok && submit.Password == "" && driver.state.Validation != "" {
			effects = append(effects, PromptPassword{Error: driver.state.Validation})
		}

		for _, effect := range effects {
			next, err := driver.apply(ctx, effect)
			if err != nil {
				return driver.state, err
			}
			queue = append(queue, next...)
		}
	}
	return driver.state, nil
}

func (driver *Driver) apply(ctx context.Context, effect Effect) ([]Event, error) {
	switch eff := effect.(type) {
	case StartParse:
		return []Event{driver.parse(ctx, eff)}, nil
	case AbortParse:
		return nil, nil
	case ShowArchive:
		if driver.presenter != nil {
			driver.presenter.ShowArchive(eff)
		}
	case RecordRecent:
		if driver.recorder != nil {
			driver.recorder.Record(eff.Path)
		}
	case ShowFailure:
		if driver.presenter != nil {
			driver.presenter.ShowFailure(eff.Message)
		}
	case PromptPassword:
		if driver.prompter == nil {
			return []Event{Cancel{}}, nil
		}
		password, err := driver.prompter.PromptPassword(ctx, driver.state.CurrentPath, eff.Error)
		if errors.Is(err, ErrPromptCancelled) {
			return []Event{Cancel{}}, nil
		}
		if err != nil {
			driver.state, _ = Transition(driver.state, Cancel{})
			return nil, fmt.Errorf("read password: %w", err)
		}
		return []Event{SubmitPassword{Password: password}}, nil
	}
	return nil, nil
}

func (driver *Driver) parse(ctx context.Context, start StartParse) Event {
	if start.Request.HasPassword() {
		metrics.RecordPasswordAttempt()
	}
	began := time.Now()
	result, err := driver.parser.ParseArchive(ctx, start.Request)
	elapsed := time.Since(began)
	outcome := ParseOutcome(result, err)
	metrics.RecordParse(outcome, elapsed)
	driver.logger.Debug("parse completed",
		zap.String("path", start.Request.Path),
		zap.Uint64("generation", start.Generation),
		zap.String("outcome", outcome),
		zap.Duration("duration", elapsed),
	)
	return ParseCompleted{Generation: start.Generation, Result: result, Err: err}
}

// ParseOutcome classifies a parse call for metrics.
func ParseOutcome(result services.ParseResult, err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidPassword):
		return metrics.OutcomeInvalidPassword
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeSuperseded
	case err != nil:
		return metrics.OutcomeFailed
	case result.IsEncrypted:
		return metrics.OutcomeEncrypted
	default:
		return metrics.OutcomeOpened
	}
}
