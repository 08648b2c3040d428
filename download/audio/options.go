package audio

// Options is the download configuration for one transcode. It is a value:
// build the shared base once and derive per-track copies with WithOutput.
type Options struct {
	codec      string
	bitrate    string
	outputPath string
}

// NewOptions returns base options for the given codec and bitrate.
// Empty values default to mp3 at 320.
func NewOptions(codec, bitrate string) Options {
	if codec == "" {
		codec = "mp3"
	}
	if bitrate == "" {
		bitrate = "320"
	}
	return Options{codec: codec, bitrate: bitrate}
}

// WithOutput returns a copy of o writing to path.
func (o Options) WithOutput(path string) Options {
	o.outputPath = path
	return o
}

// Codec returns the target audio codec, which is also the file extension.
func (o Options) Codec() string { return o.codec }

// Bitrate returns the target bitrate.
func (o Options) Bitrate() string { return o.bitrate }

// OutputPath returns the final file path, or "" for base options.
func (o Options) OutputPath() string { return o.outputPath }
