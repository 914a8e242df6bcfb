package errors

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCStatus converts an engine error to a gRPC status with structured
// error details attached.
func (e *Error) ToGRPCStatus() error {
	st := status.New(e.Code.GRPCCode(), e.Message)

	detailed, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   string(e.Code),
		Domain:   Domain,
		Metadata: e.Metadata,
	})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// HandleError converts engine errors to gRPC status for client responses.
// Unknown errors surface as Internal with a generic message.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ToGRPCStatus()
	}

	return status.Error(codes.Internal, "an unexpected error occurred")
}
