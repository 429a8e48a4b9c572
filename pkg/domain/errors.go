package domain

import "errors"

// ErrFlowNotFound is returned when a loader has no flow with the requested ID.
var ErrFlowNotFound = errors.New("flow not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCompleted is returned when an advance is requested on a session
// that already reached its terminal state.
var ErrSessionCompleted = errors.New("session completed")

// ErrVariableNotFound is returned when a bind targets a variable the flow does not declare.
var ErrVariableNotFound = errors.New("variable not found")

// ErrStepNotFound is returned when a step cannot be located in the displayed blocks.
var ErrStepNotFound = errors.New("step not found")

// ErrInvalidGraph marks a flow document that violates the basic shape of the data model.
var ErrInvalidGraph = errors.New("invalid flow graph")

// ErrSessionStarted is returned when Start is called twice on the same session.
var ErrSessionStarted = errors.New("session already started")
