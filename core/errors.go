package core

import "errors"

var (
	// ErrConfiguration is returned by constructors for out of range
	// hyperparameters. It is never returned mid-run.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrEnvironment wraps failures signalled by an Environment. The run that
	// observed it is aborted.
	ErrEnvironment = errors.New("environment error")
	// ErrEvaluation wraps lookups of states a policy does not know about.
	ErrEvaluation = errors.New("evaluation error")

	ErrCancelled = errors.New("context cancelled")
)
