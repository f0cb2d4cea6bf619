package main

import (
	"errors"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
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
	exitIO         = 1
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitDBWrite    = 5
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
	return exitCodeForImport(err)
}

// exitCodeForImport maps an import failure to an exit code by kind. Insert
// failures carry the level of the record; begin, commit and connect
// failures do not.
func exitCodeForImport(err error) int {
	var ie *territory.ImportError
	if !errors.As(err, &ie) {
		return exitIO
	}
	switch ie.Kind {
	case territory.KindConfiguration:
		return exitUsage
	case territory.KindParse, territory.KindReferential, territory.KindSlugConflict:
		return exitValidation
	case territory.KindPersistence:
		if ie.Level != "" {
			return exitDBWrite
		}
		return exitDB
	default:
		return exitIO
	}
}
