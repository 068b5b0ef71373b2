package shared

import "fmt"

var (
	// Per-file table errors; logged and skipped, never fatal to a batch
	ErrInputNotFound  = fmt.Errorf("input file not found")
	ErrEmptyTable     = fmt.Errorf("input file is empty")
	ErrSchemaMismatch = fmt.Errorf("required columns missing")
	ErrProcessing     = fmt.Errorf("processing failed")

	// Dataset and argument validation errors; fatal, abort the invocation
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingDataset  = fmt.Errorf("dataset directory not found")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// History store errors
	ErrStoreUnavailable = fmt.Errorf("history store unavailable")
	ErrRecordNotFound   = fmt.Errorf("record not found")
)
