package httputil

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrElementNotFound is returned by DecodeElement when no element matches.
var ErrElementNotFound = errors.New("element not found")

// DecodeElement decodes the first element with the given local name, at any
// depth, into v. Upstream documents are hand-written, so parsing is not strict
// and entities are never expanded.
func DecodeElement(data []byte, name string, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = map[string]string{}
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("<%s>: %w", name, ErrElementNotFound)
		}
		if err != nil {
			return fmt.Errorf("decoding XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != name {
			continue
		}
		if err := dec.DecodeElement(v, &start); err != nil {
			return fmt.Errorf("decoding <%s>: %w", name, err)
		}
		return nil
	}
}

// charsetReader converts documents declaring a non-UTF-8 encoding, such as
// the ISO-8859-1 metadata feed.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}
