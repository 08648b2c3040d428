package main

import (
	"errors"

	"github.com/sv4u/playlistdl/download"
	"github.com/sv4u/playlistdl/download/config"
	"github.com/sv4u/playlistdl/download/harvest"
)

// Exit codes. Partial download failure is still a success.
const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitQuotaExceeded   = 2
	ExitConnection      = 3
	ExitMetadataMissing = 4
	ExitInterrupted     = 5
)

// ExitCode maps a command error onto the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	if errors.Is(err, download.ErrMetadataMissing) {
		return ExitMetadataMissing
	}

	switch harvest.KindOf(err) {
	case harvest.KindQuotaExceeded:
		return ExitQuotaExceeded
	case harvest.KindConnectionFailure:
		return ExitConnection
	case harvest.KindInterrupted:
		return ExitInterrupted
	}
	return ExitConfigError
}
