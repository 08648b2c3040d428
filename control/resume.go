package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/sv4u/playlistdl/download/harvest"
)

const resumeAsk = "ask"

// resolveResume turns the --resume flag into a harvest decision. "ask"
// prompts only when a checkpoint exists and stdin is a terminal; otherwise
// it continues from the checkpoint.
func (r *Runner) resolveResume(mode string, hasCheckpoint bool, checkpointPath string) (harvest.Resume, error) {
	if mode != resumeAsk {
		resume, err := harvest.ParseResume(mode)
		if err != nil {
			return harvest.ResumeFresh, fmt.Errorf("%w: --resume: %v", harvest.ErrInvalidInput, err)
		}
		return resume, nil
	}
	if !hasCheckpoint {
		return harvest.ResumeFresh, nil
	}
	if !r.interactive() {
		r.logger.Info("resuming interrupted harvest", "checkpoint", checkpointPath)
		return harvest.ResumeContinue, nil
	}
	return r.promptResume(checkpointPath)
}

func (r *Runner) promptResume(checkpointPath string) (harvest.Resume, error) {
	fmt.Fprintf(r.output, "An interrupted harvest was found at %s.\n", checkpointPath)
	fmt.Fprint(r.output, "[c]ontinue harvesting, [u]se saved tracks as-is, or start [f]resh? [c] ")

	scanner := bufio.NewScanner(r.input)
	answer := ""
	if scanner.Scan() {
		answer = strings.ToLower(strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return harvest.ResumeFresh, fmt.Errorf("read answer: %w", err)
	}

	switch answer {
	case "", "c", "continue":
		return harvest.ResumeContinue, nil
	case "u", "use", "verbatim":
		return harvest.ResumeVerbatim, nil
	case "f", "fresh":
		return harvest.ResumeFresh, nil
	}
	return harvest.ResumeFresh, fmt.Errorf("%w: unknown answer %q", harvest.ErrInvalidInput, answer)
}
