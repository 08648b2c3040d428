package metadata

import "fmt"

// MetadataError is a failure to tag the file at Path.
type MetadataError struct {
	Path     string
	Message  string
	Original error
}

func (e *MetadataError) Error() string {
	msg := "tagging failed"
	if e.Path != "" {
		msg = fmt.Sprintf("tagging %s failed", e.Path)
	}
	if e.Original != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Message, e.Original)
	}
	return fmt.Sprintf("%s: %s", msg, e.Message)
}

func (e *MetadataError) Unwrap() error {
	return e.Original
}
