package tracker

import "errors"

var (
	// ErrSessionActive is reported when start is requested while a session
	// is already in progress. The running session is left untouched.
	ErrSessionActive = errors.New(
		"a session is already in progress",
	)

	// ErrNoSession is reported when end is requested with no session in
	// progress.
	ErrNoSession = errors.New(
		"no session is in progress",
	)

	// ErrMissingSelection is reported when start is requested without both
	// a work and a rest activity. No state is mutated.
	ErrMissingSelection = errors.New(
		"both a work and a rest activity must be selected",
	)

	// ErrKindMismatch is reported when the selected activities do not have
	// the expected work/rest kinds.
	ErrKindMismatch = errors.New(
		"the work activity must be of kind work, and the rest activity of kind rest",
	)
)
