package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sv4u/playlistdl/download/config"
	"github.com/sv4u/playlistdl/download/spotify"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindOther},
		{name: "harvest error", err: &Error{Kind: KindQuotaExceeded}, want: KindQuotaExceeded},
		{name: "wrapped harvest error", err: fmt.Errorf("run: %w", &Error{Kind: KindInterrupted}), want: KindInterrupted},
		{name: "input file", err: &config.InputError{Path: "x", Err: errors.New("missing")}, want: KindInvalidInput},
		{name: "wrapped invalid input sentinel", err: fmt.Errorf("%w: --resume: bad", ErrInvalidInput), want: KindInvalidInput},
		{name: "wrapped quota sentinel", err: fmt.Errorf("fetch: %w", ErrQuotaExceeded), want: KindQuotaExceeded},
		{name: "playlist url", err: fmt.Errorf("%w: bad", spotify.ErrInvalidPlaylistURL), want: KindInvalidInput},
		{name: "rate limit", err: &spotify.RateLimitError{}, want: KindQuotaExceeded},
		{name: "connection", err: &spotify.ConnectionError{Reason: "x"}, want: KindConnectionFailure},
		{name: "canceled", err: context.Canceled, want: KindInterrupted},
		{name: "other", err: errors.New("boom"), want: KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{Kind: KindConnectionFailure, Stage: StageFetchPage, Err: errors.New("refused")}
	if !errors.Is(err, ErrConnectionFailure) {
		t.Error("should match ErrConnectionFailure")
	}
	if errors.Is(err, ErrQuotaExceeded) {
		t.Error("should not match ErrQuotaExceeded")
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindQuotaExceeded, Stage: StageArtistMetadata, Cursor: 11, CheckpointPath: "metadata/harvest_progress.json", Err: errors.New("429")}
	msg := err.Error()
	for _, want := range []string{"QuotaExceeded", "artist_metadata", "metadata/harvest_progress.json", "11 tracks"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestParseResume(t *testing.T) {
	for _, mode := range []Resume{ResumeFresh, ResumeContinue, ResumeVerbatim} {
		got, err := ParseResume(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseResume(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if _, err := ParseResume("sometimes"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
