package api

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/weavereplace/internal/types"
)

// Error mapping:
// Malformed requests map to INVALID_ARGUMENT.
// Unknown schemas, rule sets, templates and records map to NOT_FOUND.
// Named lookups without a configured store map to FAILED_PRECONDITION.
// Context timeouts map to DEADLINE_EXCEEDED.
// Remaining (database) errors map to UNAVAILABLE.

var (
	errInvalidArgument = errors.New("invalid argument")
	errNoStore         = errors.New("no store configured")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidArgument, fmt.Sprintf(format, args...))
}

func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, errInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, types.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errNoStore):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}
