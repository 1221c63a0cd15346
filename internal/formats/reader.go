package formats

// reader.go prepares text input for the csv importer:
//
//   - a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Windows tools is dropped
//   - invalid UTF-8 is replaced with U+FFFD instead of failing the import
//   - bytes are counted for the job log

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// InputReader is the decoded input stream of a text import.
type InputReader struct {
	reader    io.Reader
	BytesRead int64 // Decoded bytes handed to the caller so far
}

// NewInputReader wraps r with BOM removal and UTF-8 sanitizing.
func NewInputReader(r io.Reader) *InputReader {
	return &InputReader{
		reader: transform.NewReader(r, unicode.UTF8BOM.NewDecoder()),
	}
}

func (r *InputReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
