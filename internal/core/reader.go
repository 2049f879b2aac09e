package core

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r so a leading byte-order mark is honored and stripped
// and invalid UTF-8 is replaced rather than passed to the parsers.
// UTF-16 exports with a BOM are transcoded to UTF-8.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
