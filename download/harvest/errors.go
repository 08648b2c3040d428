package harvest

import (
	"context"
	"errors"
	"fmt"

	"github.com/sv4u/playlistdl/download/config"
	"github.com/sv4u/playlistdl/download/spotify"
)

// Kind tags the failures that are allowed to cross the harvest boundary.
type Kind int

const (
	KindOther Kind = iota
	KindInvalidInput
	KindQuotaExceeded
	KindConnectionFailure
	KindInterrupted
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrConnectionFailure = errors.New("connection failure")
	ErrInterrupted       = errors.New("interrupted")
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindQuotaExceeded:
		return "QuotaExceeded"
	case KindConnectionFailure:
		return "ConnectionFailure"
	case KindInterrupted:
		return "Interrupted"
	default:
		return "Other"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindQuotaExceeded:
		return ErrQuotaExceeded
	case KindConnectionFailure:
		return ErrConnectionFailure
	case KindInterrupted:
		return ErrInterrupted
	default:
		return nil
	}
}

// Error is a harvest abort. Cursor and CheckpointPath describe the
// checkpoint written before aborting; CheckpointPath is empty when none was
// written.
type Error struct {
	Kind           Kind
	Stage          string
	Cursor         int
	CheckpointPath string
	Err            error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("harvest aborted: %s during %s", e.Kind, e.Stage)
	if e.CheckpointPath != "" {
		msg += fmt.Sprintf(" (checkpoint at %s, %d tracks)", e.CheckpointPath, e.Cursor)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the failure tag for err.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}

	var herr *Error
	if errors.As(err, &herr) {
		return herr.Kind
	}
	for _, k := range []Kind{KindInvalidInput, KindQuotaExceeded, KindConnectionFailure, KindInterrupted} {
		if errors.Is(err, k.sentinel()) {
			return k
		}
	}

	var inputErr *config.InputError
	if errors.As(err, &inputErr) || errors.Is(err, spotify.ErrInvalidPlaylistURL) {
		return KindInvalidInput
	}

	return classify(err)
}

// classify maps catalog and context errors onto abort kinds. Anything else
// is KindOther and is recovered locally by the caller.
func classify(err error) Kind {
	var (
		rl   *spotify.RateLimitError
		conn *spotify.ConnectionError
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindInterrupted
	case errors.As(err, &rl):
		return KindQuotaExceeded
	case errors.As(err, &conn):
		return KindConnectionFailure
	}
	return KindOther
}
