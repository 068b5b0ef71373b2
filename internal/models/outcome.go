package models

// Outcome is the disposition of one candidate file.
//
// Skips are first-class outcomes rather than errors: an absent input or an
// already-written output is the expected idempotent path, not a failure.
type Outcome string

const (
	OutcomeProcessed           Outcome = "processed"
	OutcomeSkippedInputMissing Outcome = "skipped_input_missing"
	OutcomeSkippedOutputExists Outcome = "skipped_output_exists"
	OutcomeFailed              Outcome = "failed"
)

// Valid reports whether o is one of the defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeProcessed, OutcomeSkippedInputMissing, OutcomeSkippedOutputExists, OutcomeFailed:
		return true
	}
	return false
}

// Skipped reports whether o is one of the skip outcomes.
func (o Outcome) Skipped() bool {
	return o == OutcomeSkippedInputMissing || o == OutcomeSkippedOutputExists
}
