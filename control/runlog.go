package main

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"
)

// LogTeeWriter appends event log output to a file and counts the WARN and
// ERROR lines it sees.
type LogTeeWriter struct {
	mu       sync.Mutex
	file     *os.File
	buf      []byte
	warnings int
	errors   int
}

// NewLogTeeWriter opens logPath for appending.
func NewLogTeeWriter(logPath string) (*LogTeeWriter, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &LogTeeWriter{file: f}, nil
}

// Write implements io.Writer.
func (w *LogTeeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	n, err = w.file.Write(p)
	if err != nil {
		return n, err
	}

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := w.buf[:i]
		switch {
		case bytes.HasPrefix(line, []byte("ERROR:")):
			w.errors++
		case bytes.HasPrefix(line, []byte("WARN:")):
			w.warnings++
		}
		w.buf = w.buf[i+1:]
	}
	return n, nil
}

// Counts returns the number of WARN and ERROR lines written so far.
func (w *LogTeeWriter) Counts() (warnings, errors int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warnings, w.errors
}

// Close closes the underlying file.
func (w *LogTeeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

// RedirectLogToFile redirects the standard log output to the given writer and returns a restore func.
func RedirectLogToFile(w io.Writer) (restore func()) {
	oldFlags := log.Flags()
	oldPrefix := log.Prefix()
	oldOut := log.Writer()
	log.SetOutput(w)
	log.SetFlags(0)
	log.SetPrefix("")
	return func() {
		log.SetOutput(oldOut)
		log.SetFlags(oldFlags)
		log.SetPrefix(oldPrefix)
	}
}
