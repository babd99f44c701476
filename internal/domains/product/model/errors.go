package model

import "errors"

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeProductNotFound         = "PRD001"
	ErrCodeIllegalTransition       = "PRD002"
	ErrCodeUnknownSection          = "PRD003"
	ErrCodeValidation              = "PRD004"
	ErrCodeCollaboratorUnavailable = "PRD005"
	ErrCodeVersionMismatch         = "PRD006"
	ErrCodeStorage                 = "PRD007"
	ErrCodeInvalidRole             = "PRD008"
	ErrCodeImportFailed            = "PRD009"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrProductNotFound         = errors.New("product not found")
	ErrIllegalTransition       = errors.New("transition not allowed from this state")
	ErrUnknownSection          = errors.New("no pending revision for section")
	ErrMissingComment          = errors.New("at least one non-empty section comment is required")
	ErrMalformedField          = errors.New("malformed field value")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrVersionMismatch         = errors.New("version mismatch - concurrent modification detected")
	ErrSpecsheetNotInitialized = errors.New("specsheet document not initialized")
	ErrInvalidRole             = errors.New("invalid role")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type ProductError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProductError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProductError) Unwrap() error {
	return e.Err
}

// NewProductError creates a new ProductError
func NewProductError(code, message string, err error) *ProductError {
	return &ProductError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
