package main

import (
	"errors"
	"net/http"

	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitPartial    = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

// importExitCode classifies an import service error.
func importExitCode(err error) int {
	appErr := appErrors.FromError(err)
	switch {
	case appErr == nil:
		return exitOK
	case appErr.Code == appErrors.ErrSessionRebuildPartial.Code:
		return exitPartial
	case appErr.Status < http.StatusInternalServerError:
		return exitValidation
	default:
		return exitDB
	}
}

func errorCode(err error) string {
	if appErr := appErrors.FromError(err); appErr != nil {
		return appErr.Code
	}
	return ""
}
