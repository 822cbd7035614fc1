package supervisor

import (
	"errors"
	"fmt"
)

// ErrIgnore is returned by an InitFunc to start nothing, and by a StartFunc to start no child.
var ErrIgnore = errors.New("ignore")

// Spec is what an InitFunc returns: exactly one child template and the supervisor flags,
// given as Flags, *Flags, or a keyed map.
type Spec struct {
	Children []ChildSpec
	Flags    interface{}
}

type InitFunc func(args ...interface{}) (Spec, error)

type InitErrorKind string

const (
	BadSpecs       InitErrorKind = "bad_specs"
	BadOptions     InitErrorKind = "bad_options"
	BadReturnValue InitErrorKind = "bad_return_value"
)

var (
	ErrBadSpecs       = errors.New("bad child specs")
	ErrBadOptions     = errors.New("bad supervisor options")
	ErrBadReturnValue = errors.New("bad return value from init")
)

// InitError is returned by Start when the initializer's result can't be used.
type InitError struct {
	Kind   InitErrorKind
	Reason string
	// Value is the offending input
	Value interface{}
}

func (e *InitError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("supervisor init: %s: %v", e.Kind, e.Value)
	}
	return fmt.Sprintf("supervisor init: %s: %s", e.Kind, e.Reason)
}

func (e *InitError) Is(target error) bool {
	switch target {
	case ErrBadSpecs:
		return e.Kind == BadSpecs
	case ErrBadOptions:
		return e.Kind == BadOptions
	case ErrBadReturnValue:
		return e.Kind == BadReturnValue
	}
	return false
}

// Unwrap exposes the initializer's own error for BadReturnValue.
func (e *InitError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func badSpecs(reason string, value interface{}) *InitError {
	return &InitError{Kind: BadSpecs, Reason: reason, Value: value}
}

func badOptions(reason string, value interface{}) *InitError {
	return &InitError{Kind: BadOptions, Reason: reason, Value: value}
}

// checkInit validates what the initializer returned. The error is returned as is for ErrIgnore.
func checkInit(spec Spec, err error) (ChildSpec, Flags, error) {
	if err != nil {
		if errors.Is(err, ErrIgnore) {
			return ChildSpec{}, Flags{}, err
		}
		return ChildSpec{}, Flags{}, &InitError{Kind: BadReturnValue, Value: err}
	}

	if len(spec.Children) != 1 {
		return ChildSpec{}, Flags{}, badSpecs(fmt.Sprintf("dynamic supervisors expect exactly one child spec, got %d", len(spec.Children)), spec.Children)
	}
	child := spec.Children[0]
	if err := validateStruct(child); err != nil {
		return ChildSpec{}, Flags{}, badSpecs(err.Error(), child)
	}

	flags, err := decodeFlags(spec.Flags)
	if err != nil {
		return ChildSpec{}, Flags{}, err
	}
	if err := checkFlags(flags); err != nil {
		return ChildSpec{}, Flags{}, err
	}
	if flags.RetryBackoff == 0 {
		flags.RetryBackoff = defaultRetryBackoff
	}
	return child, flags, nil
}
