package types

import "errors"

var (
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	ErrCaseNotFound        = errors.New("case not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrReminderNotFound    = errors.New("reminder not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrUserNotFound        = errors.New("user not found")

	// Returned when case-code generation loses the insert race too many
	// times in a row.
	ErrCaseCodeContention = errors.New("case code contention")
)
