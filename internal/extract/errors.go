package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedURL is wrapped by MalformedInputError for errors.Is checks.
	ErrMalformedURL = errors.New("malformed URL")

	// ErrUnsupportedURL is returned when no extractor matches a URL.
	ErrUnsupportedURL = errors.New("unsupported URL")
)

// MalformedInputError reports a URL that does not have the shape an
// extractor expects.
type MalformedInputError struct {
	Extractor string
	URL       string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Extractor, ErrMalformedURL, e.URL)
}

func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedURL
}

// ExpectedError is a known condition reported by the site, such as a stream
// that has already ended. It is shown to the user as is.
type ExpectedError struct {
	Msg string
}

func (e *ExpectedError) Error() string {
	return e.Msg
}

// MissingFieldError reports a required value absent from a fetched document.
type MissingFieldError struct {
	Field  string
	Source string // document the field was expected in
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("unable to extract %s from %s", e.Field, e.Source)
}

// TokenError reports a token the streaming-access server refused to issue.
type TokenError struct {
	Comment string
}

func (e *TokenError) Error() string {
	return "Token error: " + e.Comment
}

// IsExpected reports whether err is a user-facing condition rather than a
// failure of the extractor itself.
func IsExpected(err error) bool {
	var expected *ExpectedError
	var token *TokenError
	return errors.As(err, &expected) || errors.As(err, &token)
}
