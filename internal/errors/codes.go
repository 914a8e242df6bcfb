package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Membership errors
	CodeAlreadyMember Code = "MEMBER_ALREADY_REGISTERED"
	CodeNotMember     Code = "MEMBER_NOT_REGISTERED"
	CodeNotApproved   Code = "MEMBER_NOT_APPROVED"
	CodeMemberBanned  Code = "MEMBER_BANNED"
	CodeEmptyName     Code = "MEMBER_NAME_EMPTY"

	// Contribution errors
	CodeNotSubmissionStage Code = "ROUND_NOT_SUBMISSION_STAGE"
	CodeAlreadySubmitted   Code = "CONTRIBUTION_ALREADY_SUBMITTED"
	CodeEmptyContribution  Code = "CONTRIBUTION_EMPTY"
	CodeLengthMismatch     Code = "CONTRIBUTION_LENGTH_MISMATCH"
	CodeTooManyItems       Code = "CONTRIBUTION_TOO_MANY_ITEMS"

	// Ranking errors
	CodeNotRankingStage Code = "ROUND_NOT_RANKING_STAGE"
	CodeNotInGroup      Code = "RANKING_NOT_IN_GROUP"
	CodeNotPermutation  Code = "RANKING_NOT_A_PERMUTATION"
	CodeAlreadyRanked   Code = "RANKING_ALREADY_SUBMITTED"

	// Stage machine errors
	CodeTooEarly         Code = "STAGE_SWITCH_TOO_EARLY"
	CodeSwitchInProgress Code = "STAGE_SWITCH_IN_PROGRESS"
	CodeNotEnoughMembers Code = "GROUPING_NOT_ENOUGH_MEMBERS"
	CodeStateCorrupted   Code = "GAME_STATE_CORRUPTED"

	// Governance errors
	CodeNotTopMember        Code = "GOVERNANCE_NOT_TOP_MEMBER"
	CodeNotEligibleVoter    Code = "GOVERNANCE_NOT_ELIGIBLE_VOTER"
	CodeAlreadyVoted        Code = "GOVERNANCE_ALREADY_VOTED"
	CodeProposalNotFound    Code = "PROPOSAL_NOT_FOUND"
	CodeProposalNotPending  Code = "PROPOSAL_NOT_PENDING"
	CodeProposalExpired     Code = "PROPOSAL_EXPIRED"
	CodeNoTransactions      Code = "PROPOSAL_NO_TRANSACTIONS"
	CodeNoExecutor          Code = "GOVERNANCE_NO_EXECUTOR"
	CodeExecutionFailed     Code = "GOVERNANCE_EXECUTION_FAILED"
	CodeExecutionInProgress Code = "GOVERNANCE_EXECUTION_IN_PROGRESS"

	// Administrative errors
	CodeNotOwner      Code = "ADMIN_NOT_OWNER"
	CodeInvalidParams Code = "ADMIN_INVALID_PARAMS"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps engine codes to gRPC status codes for API hosts.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed input
	case CodeEmptyName,
		CodeEmptyContribution,
		CodeLengthMismatch,
		CodeTooManyItems,
		CodeNotPermutation,
		CodeNoTransactions,
		CodeInvalidParams:
		return codes.InvalidArgument

	// FailedPrecondition - state does not allow the operation
	case CodeNotSubmissionStage,
		CodeNotRankingStage,
		CodeTooEarly,
		CodeSwitchInProgress,
		CodeNotEnoughMembers,
		CodeNotApproved,
		CodeMemberBanned,
		CodeProposalNotPending,
		CodeProposalExpired,
		CodeNoExecutor:
		return codes.FailedPrecondition

	// AlreadyExists - duplicate submissions
	case CodeAlreadyMember,
		CodeAlreadySubmitted,
		CodeAlreadyRanked,
		CodeAlreadyVoted:
		return codes.AlreadyExists

	// PermissionDenied - authorization failures
	case CodeNotTopMember,
		CodeNotEligibleVoter,
		CodeNotInGroup,
		CodeNotOwner:
		return codes.PermissionDenied

	// NotFound - missing resources
	case CodeNotMember,
		CodeProposalNotFound,
		CodeNotFound:
		return codes.NotFound

	// DataLoss - the engine halted on a corrupted progress cursor
	case CodeStateCorrupted:
		return codes.DataLoss

	case CodeExecutionFailed:
		return codes.Internal

	// Aborted - concurrent dispatch conflict
	case CodeExecutionInProgress:
		return codes.Aborted
	}

	return codes.Unknown
}
