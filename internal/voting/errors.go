package voting

// Error is a validation failure with a stable machine-readable kind.
// All of these are recoverable request errors, never process failures.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

var (
	ErrConfigurationMissing = &Error{Kind: "configuration_missing", Message: "edition has no voting configuration"}
	ErrVotingClosed         = &Error{Kind: "voting_closed", Message: "the voting period is not open"}
	ErrPublicVotingDisabled = &Error{Kind: "public_voting_disabled", Message: "this edition only accepts jury votes"}
	ErrNotJuryMember        = &Error{Kind: "not_jury_member", Message: "user is not a jury member of this edition"}
	ErrCompoNotAssigned     = &Error{Kind: "compo_not_assigned", Message: "jury member is not assigned to this compo"}
	ErrNotVerifiedAttendee  = &Error{Kind: "not_verified_attendee", Message: "user is not verified as an attendee"}
	ErrCodeAlreadyUsed      = &Error{Kind: "code_already_used", Message: "this attendance code has already been used"}
	ErrInvalidCode          = &Error{Kind: "invalid_code", Message: "attendance code does not exist"}
	ErrWeightSum            = &Error{Kind: "weight_sum", Message: "public and jury weights must sum to 100 in mixed mode"}
	ErrDateRange            = &Error{Kind: "date_range", Message: "end date must be after start date"}
	ErrScoreOutOfRange      = &Error{Kind: "score_out_of_range", Message: "score must be between 1 and 10"}
	ErrCommentTooLong       = &Error{Kind: "comment_too_long", Message: "comment exceeds the maximum length"}
	ErrInvalidQuantity      = &Error{Kind: "invalid_quantity", Message: "quantity must be between 1 and the configured batch cap"}
	ErrInvalidMode          = &Error{Kind: "invalid_mode", Message: "unknown voting or access mode"}
	ErrResultsNotPublished  = &Error{Kind: "results_not_published", Message: "results are not yet published"}
)
