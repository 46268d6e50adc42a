// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bot

import "strings"

// redactedError hides the access token in an error's text while keeping the
// original error reachable through errors.Is and errors.As.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// ScrubToken returns err with every occurrence of token replaced. Bot API
// request and file URLs embed the token, and transport errors quote them.
func ScrubToken(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}
