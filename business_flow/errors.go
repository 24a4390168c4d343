// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Campaign-related errors
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrCampaignAccessDenied   = errors.New("campaign access denied")
	ErrCampaignNotCancellable = errors.New("campaign is already terminal")
	ErrCampaignAlreadyRunning = errors.New("campaign is already running")
	ErrProductNameRequired    = errors.New("product name is required")
	ErrBrandNameRequired      = errors.New("brand name is required")
	ErrProductNicheRequired   = errors.New("product niche is required")
	ErrTotalBudgetInvalid     = errors.New("total budget must be positive")
	ErrTaskIDRequired         = errors.New("task ID is required")
	ErrInsufficientCandidates = errors.New("no creators matched the campaign brief")

	// Creator-related errors
	ErrCreatorNotFound = errors.New("creator not found")

	// Negotiation-related errors
	ErrNegotiationNotFound = errors.New("negotiation not found")
	ErrVoiceProvider       = errors.New("voice provider error")
	ErrBudgetExceeded      = errors.New("campaign budget exceeded")

	// Report errors
	ErrReportNotAvailable = errors.New("report is not available before the campaign finishes discovery")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsCampaignNotCancellable(err error) bool {
	return errors.Is(err, ErrCampaignNotCancellable)
}

func IsCampaignAlreadyRunning(err error) bool {
	return errors.Is(err, ErrCampaignAlreadyRunning)
}

func IsProductNameRequired(err error) bool {
	return errors.Is(err, ErrProductNameRequired)
}

func IsBrandNameRequired(err error) bool {
	return errors.Is(err, ErrBrandNameRequired)
}

func IsProductNicheRequired(err error) bool {
	return errors.Is(err, ErrProductNicheRequired)
}

func IsTotalBudgetInvalid(err error) bool {
	return errors.Is(err, ErrTotalBudgetInvalid)
}

func IsTaskIDRequired(err error) bool {
	return errors.Is(err, ErrTaskIDRequired)
}

func IsInsufficientCandidates(err error) bool {
	return errors.Is(err, ErrInsufficientCandidates)
}

func IsCreatorNotFound(err error) bool {
	return errors.Is(err, ErrCreatorNotFound)
}

func IsNegotiationNotFound(err error) bool {
	return errors.Is(err, ErrNegotiationNotFound)
}

func IsVoiceProvider(err error) bool {
	return errors.Is(err, ErrVoiceProvider)
}

func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}

func IsReportNotAvailable(err error) bool {
	return errors.Is(err, ErrReportNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
