package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the orchestrator can surface. GetStatus
// always attributes a failure to one named stage and one Kind; there is no
// generic "something went wrong" state.
type Kind string

const (
	KindInvalidInput            Kind = "INVALID_INPUT"
	KindNotFound                Kind = "NOT_FOUND"
	KindAlreadyTerminal         Kind = "ALREADY_TERMINAL"
	KindStorageError            Kind = "STORAGE_ERROR"
	KindExternalTimeout         Kind = "EXTERNAL_TIMEOUT"
	KindExternalProcessingError Kind = "EXTERNAL_PROCESSING_ERROR"
	KindAnalysisError           Kind = "ANALYSIS_ERROR"
	KindPlanGenerationError     Kind = "PLAN_GENERATION_ERROR"
	KindCancelled               Kind = "CANCELLED"

	// KindInterrupted is set by the startup reconciliation pass on
	// non-terminal records left behind by a crashed process.
	KindInterrupted Kind = "INTERRUPTED"
)

// Error carries the failure kind, the stage it happened in (empty for
// workflow-level errors such as NotFound) and the provider message verbatim.
type Error struct {
	Kind    Kind
	Stage   StageName
	Message string
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// E builds a workflow-level error.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StageE builds a stage-attributed error.
func StageE(kind Kind, stage StageName, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from an error chain, or empty when the error is
// not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
