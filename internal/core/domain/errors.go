package domain

import "errors"

var (
	// ErrEmptyInput means the note normalized to zero tokens. It is a notice, not a failure.
	ErrEmptyInput = errors.New("domain: note has no sentiment signal")
	// ErrNoMood means the score fell outside every mood range.
	ErrNoMood = errors.New("domain: no mood matches score")
	// ErrNoSeed means the play history was empty.
	ErrNoSeed = errors.New("domain: no seed track available")
	// ErrFetchFailed wraps transport errors and non-2xx replies from the media API.
	ErrFetchFailed = errors.New("domain: fetch failed")
	// ErrNoAccessToken is fatal to every step that calls the media API.
	ErrNoAccessToken = errors.New("domain: no access token, authenticate first")

	ErrAuthorizationTimedOut   = errors.New("domain: authorization timed out")
	ErrAuthorizationCanceled   = errors.New("domain: authorization canceled")
	ErrAuthorizationInProgress = errors.New("domain: authorization already in progress")
	ErrAuthorizationDenied     = errors.New("domain: authorization denied")
	ErrTokenExchange           = errors.New("domain: token exchange failed")
)
