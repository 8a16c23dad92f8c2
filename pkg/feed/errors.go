package feed

import "fmt"

// UnrecognizedFormatError is returned when a document is neither an RSS nor an Atom feed,
// or when a recognized feed can't be decoded. No partial results accompany it.
type UnrecognizedFormatError struct {
	Format string // detected family, empty if none
	Err    error
}

func (e *UnrecognizedFormatError) Error() string {
	if e.Format == "" {
		return "unrecognized feed format, expected rss or atom"
	}
	return fmt.Sprintf("unrecognized %s document: %v", e.Format, e.Err)
}

func (e *UnrecognizedFormatError) Unwrap() error { return e.Err }

// NetworkError is returned when a feed can't be retrieved: transport failure, timeout or non-2xx status
type NetworkError struct {
	URL        string
	StatusCode int // zero if no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError is returned when a response body can't be decoded as text
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
