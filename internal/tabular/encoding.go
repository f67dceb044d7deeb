package tabular

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder returns a function wrapping a reader so it yields UTF-8 for the
// named source encoding. An empty name means UTF-8.
func Decoder(name string) (func(io.Reader) io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return func(r io.Reader) io.Reader {
			return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
		}, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return wrap(charmap.ISO8859_1), nil
	case "cp1252", "windows-1252":
		return wrap(charmap.Windows1252), nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return wrap(enc), nil
}

func wrap(enc encoding.Encoding) func(io.Reader) io.Reader {
	return func(r io.Reader) io.Reader {
		return enc.NewDecoder().Reader(r)
	}
}
