// Package orchestrator runs campaign workflows end to end: creator discovery,
// concurrent voice negotiations, and contract generation.
package orchestrator

import "errors"

var (
	// ErrInsufficientCandidates indicates discovery found no creator clearing
	// the similarity floor
	ErrInsufficientCandidates = errors.New("no creators matched the campaign brief")

	// ErrMonitorCancelled indicates conversation monitoring was cancelled
	// before the call reached a terminal state
	ErrMonitorCancelled = errors.New("conversation monitoring cancelled")

	// ErrCallTimeout indicates the call did not finish within the allowed
	// call duration
	ErrCallTimeout = errors.New("call exceeded maximum duration")

	// ErrBudgetExceeded indicates accepting a negotiation would push the
	// committed budget past the campaign total
	ErrBudgetExceeded = errors.New("campaign budget exceeded")

	// ErrCampaignNotFound indicates no tracked campaign exists for the task ID
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrCampaignNotCancellable indicates the campaign already reached a
	// terminal stage
	ErrCampaignNotCancellable = errors.New("campaign is already terminal")
)
