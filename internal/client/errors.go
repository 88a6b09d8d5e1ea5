// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

package client

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AuthenticationError reports a failed login exchange. Fatal: no retry, no
// alternate-credential fallback. A client is never constructed after one.
type AuthenticationError struct {
	URL        string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("login failed: POST %s returned status %d, expected 200", e.URL, e.StatusCode)
}

// RequestError reports a non-200 response from any endpoint other than
// login. Fatal per call; the session itself stays usable.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Expected   int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request to %s returned status %d, expected %d", e.Endpoint, e.StatusCode, e.Expected)
}

// ValidationError reports a client-side parameter-contract violation. It is
// raised before any network call is issued.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid request parameters: " + e.Message
}

// newValidationError flattens go-playground/validator output into a
// ValidationError with one message per offending field.
func newValidationError(err error) *ValidationError {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s value %v must be one of [%s]", fe.Field(), fe.Value(), fe.Param()))
		case "required", "min":
			parts = append(parts, fmt.Sprintf("%s must not be empty", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return &ValidationError{Message: strings.Join(parts, "; ")}
}
