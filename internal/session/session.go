// Package session holds the archive session state machine. Transition is a
// pure function; drivers execute the effects it returns and feed results
// back in as events.
package session

import (
	"errors"

	"zipexplorer/internal/domain"
	"zipexplorer/internal/services"
)

const (
	InvalidPasswordMessage = "Invalid password. Please try again."
	EmptyPasswordMessage   = "Please enter a password."
	EmptyPathMessage       = "No archive selected."
	SelectionFailedMessage = "Could not open the file picker."
	SelectionCancelledText = "No file selected."
)

type Phase int

const (
	Idle Phase = iota
	AwaitingParse
	AwaitingPassword
	Displaying
	Failed
)

func (phase Phase) String() string {
	switch phase {
	case Idle:
		return "idle"
	case AwaitingParse:
		return "awaiting-parse"
	case AwaitingPassword:
		return "awaiting-password"
	case Displaying:
		return "displaying"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the whole session. Generation identifies the parse call that is
// currently allowed to complete.
type State struct {
	Phase        Phase
	CurrentPath  string
	Generation   uint64
	Attempts     int
	PasswordSent bool
	PromptError  string
	Validation   string
	Failure      string
	Notice       string
}

// Busy reports whether a parse call is outstanding.
func (state State) Busy() bool {
	return state.Phase == AwaitingParse
}

type Event interface {
	isEvent()
}

type Select struct {
	Path string
}

type SubmitPassword struct {
	Password string
}

type Cancel struct{}

type ParseCompleted struct {
	Generation uint64
	Result     services.ParseResult
	Err        error
}

type SelectionFailed struct {
	Err error
}

type SelectionCancelled struct{}

func (Select) isEvent()             {}
func (SubmitPassword) isEvent()     {}
func (Cancel) isEvent()             {}
func (ParseCompleted) isEvent()     {}
func (SelectionFailed) isEvent()    {}
func (SelectionCancelled) isEvent() {}

type Effect interface {
	isEffect()
}

type StartParse struct {
	Generation uint64
	Request    services.ParseRequest
}

type AbortParse struct {
	Generation uint64
}

type ShowArchive struct {
	Path     string
	Files    []string
	Metadata domain.ArchiveMetadata
}

type RecordRecent struct {
	Path string
}

// PromptPassword asks for a password with a cleared field. Error is empty on
// the first prompt for a path.
type PromptPassword struct {
	Error string
}

type ShowFailure struct {
	Message string
}

func (StartParse) isEffect()     {}
func (AbortParse) isEffect()     {}
func (ShowArchive) isEffect()    {}
func (RecordRecent) isEffect()   {}
func (PromptPassword) isEffect() {}
func (ShowFailure) isEffect()    {}

func Transition(state State, event Event) (State, []Effect) {
	switch ev := event.(type) {
	case Select:
		return selectPath(state, ev.Path)
	case SubmitPassword:
		return submitPassword(state, ev.Password)
	case Cancel:
		return cancel(state)
	case ParseCompleted:
		return parseCompleted(state, ev)
	case SelectionFailed:
		state.Notice = SelectionFailedMessage
		if ev.Err != nil {
			state.Notice = SelectionFailedMessage + " " + ev.Err.Error()
		}
		return state, nil
	case SelectionCancelled:
		state.Notice = SelectionCancelledText
		return state, nil
	default:
		return state, nil
	}
}

func selectPath(state State, path string) (State, []Effect) {
	if path == "" {
		state.Notice = EmptyPathMessage
		return state, nil
	}
	var effects []Effect
	if state.Phase == AwaitingParse {
		effects = append(effects, AbortParse{Generation: state.Generation})
	}
	next := State{
		Phase:       AwaitingParse,
		CurrentPath: path,
		Generation:  state.Generation + 1,
	}
	effects = append(effects, StartParse{
		Generation: next.Generation,
		Request:    services.ParseRequest{Path: path},
	})
	return next, effects
}

func submitPassword(state State, password string) (State, []Effect) {
	if state.Phase != AwaitingPassword {
		return state, nil
	}
	if password == "" {
		state.Validation = EmptyPasswordMessage
		return state, nil
	}
	state.Phase = AwaitingParse
	state.Generation++
	state.Attempts++
	state.PasswordSent = true
	state.Validation = ""
	state.PromptError = ""
	state.Notice = ""
	return state, []Effect{StartParse{
		Generation: state.Generation,
		Request:    services.ParseRequest{Path: state.CurrentPath, Password: password},
	}}
}

func cancel(state State) (State, []Effect) {
	switch state.Phase {
	case AwaitingPassword:
		return State{Phase: Idle, Generation: state.Generation}, nil
	case AwaitingParse:
		return State{Phase: Idle, Generation: state.Generation + 1},
			[]Effect{AbortParse{Generation: state.Generation}}
	default:
		return state, nil
	}
}

func parseCompleted(state State, ev ParseCompleted) (State, []Effect) {
	if state.Phase != AwaitingParse || ev.Generation != state.Generation {
		return state, nil
	}
	state.Notice = ""
	if ev.Err != nil {
		if errors.Is(ev.Err, services.ErrInvalidPassword) {
			return promptPassword(state, InvalidPasswordMessage)
		}
		state.Phase = Failed
		state.Failure = FailureMessage(ev.Err)
		return state, []Effect{ShowFailure{Message: state.Failure}}
	}
	if ev.Result.IsEncrypted {
		message := ""
		if state.PasswordSent {
			message = InvalidPasswordMessage
		}
		return promptPassword(state, message)
	}
	state.Phase = Displaying
	state.Failure = ""
	state.PromptError = ""
	state.Validation = ""
	return state, []Effect{
		ShowArchive{Path: state.CurrentPath, Files: ev.Result.Files, Metadata: ev.Result.Metadata},
		RecordRecent{Path: state.CurrentPath},
	}
}

func promptPassword(state State, message string) (State, []Effect) {
	state.Phase = AwaitingPassword
	state.PromptError = message
	state.Validation = ""
	return state, []Effect{PromptPassword{Error: message}}
}

// FailureMessage renders a parse error for display.
func FailureMessage(err error) string {
	var parseErr *services.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Error()
	}
	if err == nil || err.Error() == "" {
		return "The archive could not be opened."
	}
	return "The archive could not be opened: " + err.Error()
}
