package grpc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps a vault error onto a gRPC status. Internal detail never
// leaves the server.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, describeFields(ve.Fields))
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, "validation error")
	case errors.Is(err, common.ErrDuplicateEmail):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateEmail.Error())
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, "token expired")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrCredentialCorrupted):
		return status.Error(codes.DataLoss, common.ErrCredentialCorrupted.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	if !errors.Is(err, common.ErrorInternal) {
		s.logger.Error(ctx, "unhandled error", "error", err)
	}
	return status.Error(codes.Internal, "internal error")
}

func describeFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, fields[name]))
	}
	return "validation error: " + strings.Join(parts, "; ")
}
