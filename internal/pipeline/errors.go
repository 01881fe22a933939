package pipeline

import "errors"

var (
	// ErrNoImage indicates Run was called without an uploaded image.
	ErrNoImage = errors.New("please upload an image first")

	// ErrNoGrades indicates an empty grade selection.
	ErrNoGrades = errors.New("please select at least one grade level")

	// ErrExtraction matches every content extraction failure through
	// errors.Is. It is fatal for the run.
	ErrExtraction = errors.New("content extraction failed")
)

// ExtractionError carries an extractor failure. Its message is the
// extractor's own, unchanged, so it can be shown to the teacher as is.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return e.Err.Error() }

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }
