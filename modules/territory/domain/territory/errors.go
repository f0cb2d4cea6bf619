package territory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumn    = errors.New("missing required column")
	ErrEmptyField       = errors.New("required field is empty")
	ErrNoRows           = errors.New("no data rows found")
	ErrUnresolvedParent = errors.New("parent was not imported")
	ErrInconsistentRow  = errors.New("row contradicts an earlier row")
	ErrSlugConflict     = errors.New("slug already taken")
	ErrEmptySlug        = errors.New("name yields an empty slug")
	ErrAlreadyExists    = errors.New("record already exists")
	ErrNotFound         = errors.New("not found")
	ErrNotEmpty         = errors.New("territory tables are not empty")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindParse
	KindReferential
	KindSlugConflict
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindParse:
		return "parse"
	case KindReferential:
		return "referential"
	case KindSlugConflict:
		return "slug_conflict"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// ImportError carries the record that failed and the stage it failed in.
type ImportError struct {
	Kind  ErrorKind
	Level Level
	Line  int
	Name  string
	Code  string
	Err   error
}

func (e *ImportError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	switch {
	case e.Level != "" && e.Name != "":
		fmt.Fprintf(&b, "%s %q (%s): ", e.Level, e.Name, e.Code)
	case e.Level != "":
		fmt.Fprintf(&b, "%s %s: ", e.Level, e.Code)
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.String() + " error")
	}
	return b.String()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of the first ImportError in err's chain.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnknown
}
