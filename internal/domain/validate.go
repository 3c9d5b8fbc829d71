package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the numeric readings against their agronomic ranges.
// A validation failure means the submission must be aborted before any
// network call is made.
func (p Parameters) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid prediction parameters: %w", err)
	}
	return nil
}
