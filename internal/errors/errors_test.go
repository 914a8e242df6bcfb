package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestGetCodeExtractsWrappedCode(t *testing.T) {
	base := New(CodeAlreadyVoted, "member already voted")
	wrapped := fmt.Errorf("vote on proposal 3: %w", base)

	if got := GetCode(wrapped); got != CodeAlreadyVoted {
		t.Fatalf("expected CodeAlreadyVoted, got %q", got)
	}
	if !IsCode(wrapped, CodeAlreadyVoted) {
		t.Fatal("expected IsCode to match through wrapping")
	}
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	if got := GetCode(stderrors.New("boom")); got != CodeUnknown {
		t.Fatalf("expected CodeUnknown, got %q", got)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeTooEarly, "deadline not reached")
	b := New(CodeTooEarly, "different message")

	if !stderrors.Is(a, b) {
		t.Fatal("expected errors with equal codes to match")
	}
	if stderrors.Is(a, New(CodeNotTopMember, "nope")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestGRPCCodeMapping(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeLengthMismatch, codes.InvalidArgument},
		{CodeTooEarly, codes.FailedPrecondition},
		{CodeSwitchInProgress, codes.FailedPrecondition},
		{CodeAlreadyVoted, codes.AlreadyExists},
		{CodeNotTopMember, codes.PermissionDenied},
		{CodeProposalNotFound, codes.NotFound},
		{CodeStateCorrupted, codes.DataLoss},
		{CodeExecutionInProgress, codes.Aborted},
		{Code("BOGUS"), codes.Unknown},
	}

	for _, tc := range tests {
		if got := tc.code.GRPCCode(); got != tc.want {
			t.Fatalf("code %q: expected %v, got %v", tc.code, tc.want, got)
		}
	}
}

func TestHandleErrorAttachesErrorInfo(t *testing.T) {
	err := HandleError(WithMetadata(CodeNotInGroup, "ranker outside group", map[string]string{
		"member": "m1",
	}))

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", st.Code())
	}
	if len(st.Details()) == 0 {
		t.Fatal("expected structured details to be attached")
	}
}

func TestHandleErrorUnknown(t *testing.T) {
	err := HandleError(stderrors.New("boom"))

	st, ok := status.FromError(err)
	if !ok {
		t.Fatal("expected a grpc status error")
	}
	if st.Code() != codes.Internal {
		t.Fatalf("expected Internal for unknown errors, got %v", st.Code())
	}
}
