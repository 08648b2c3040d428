// Package metadata writes harvested track metadata into downloaded audio files.
package metadata

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sv4u/playlistdl/download/track"
)

// Embedder embeds metadata into audio files.
type Embedder struct{}

// NewEmbedder creates a new metadata embedder.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// Embed writes t's metadata into the file at filePath. Formats without a
// tag writer are skipped with a warning.
func (e *Embedder) Embed(ctx context.Context, filePath string, t *track.Track) error {
	if err := ctx.Err(); err != nil {
		return &MetadataError{Path: filePath, Message: "context cancelled", Original: err}
	}

	if _, err := os.Stat(filePath); err != nil {
		return &MetadataError{Path: filePath, Message: "file not found", Original: err}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	switch ext {
	case "mp3":
		if err := e.embedMP3(filePath, t); err != nil {
			log.Printf("ERROR: metadata_embed_failed file=%s track=%q error=%v", filePath, t.Title, err)
			return err
		}
	default:
		log.Printf("WARN: metadata_embed_unsupported_format file=%s format=%s", filePath, ext)
		return nil
	}

	log.Printf("INFO: metadata_embed_complete file=%s track=%q", filePath, t.Title)
	return nil
}
