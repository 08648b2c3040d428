package harvest

import "fmt"

// Resume is the caller's decision about an existing checkpoint.
type Resume int

const (
	// ResumeFresh discards any checkpoint and harvests from the start.
	ResumeFresh Resume = iota
	// ResumeContinue keeps the checkpointed tracks and harvests the rest of
	// the playlist, skipping tracks already present.
	ResumeContinue
	// ResumeVerbatim returns the checkpointed tracks without any catalog calls.
	ResumeVerbatim
)

func (r Resume) String() string {
	switch r {
	case ResumeContinue:
		return "continue"
	case ResumeVerbatim:
		return "verbatim"
	default:
		return "fresh"
	}
}

// ParseResume parses "fresh", "continue" or "verbatim".
func ParseResume(s string) (Resume, error) {
	switch s {
	case "fresh":
		return ResumeFresh, nil
	case "continue":
		return ResumeContinue, nil
	case "verbatim":
		return ResumeVerbatim, nil
	}
	return ResumeFresh, fmt.Errorf("unknown resume mode %q", s)
}
