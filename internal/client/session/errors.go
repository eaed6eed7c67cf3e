package session

import "fmt"

// FailureKind classifies swallowed failures
type FailureKind string

const (
	FailureDecode       FailureKind = "decode"
	FailureProfileFetch FailureKind = "profile_fetch"
)

// Failure is passed to the failure hook when an operation falls back
// instead of returning an error
type Failure struct {
	Err  error
	Kind FailureKind
	Op   string
}

// DecodeError wraps a failure to derive the client id from an access token
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decode access token: %v", e.Cause) }

func (e *DecodeError) Unwrap() error { return e.Cause }

// ProfileFetchError wraps any failure of the profile service
type ProfileFetchError struct {
	Cause error
}

func (e *ProfileFetchError) Error() string { return fmt.Sprintf("fetch profile: %v", e.Cause) }

func (e *ProfileFetchError) Unwrap() error { return e.Cause }
