package llm

import "errors"

var (
	// ErrUnavailable indicates the model backend could not be reached.
	ErrUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout indicates every attempt exceeded its task timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrEmptyResponse indicates the backend answered with no text.
	ErrEmptyResponse = errors.New("llm returned an empty response")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrDisabled is returned by the client used when SAHAYAK_LLM_ENABLED=false.
	ErrDisabled = errors.New("llm disabled")

	// ErrUnsupported indicates the backend cannot serve the request shape,
	// e.g. image parts on a text-only provider.
	ErrUnsupported = errors.New("llm request not supported by provider")

	// ErrMissingAPIKey indicates a hosted provider was selected without a key.
	ErrMissingAPIKey = errors.New("llm api key missing")
)
