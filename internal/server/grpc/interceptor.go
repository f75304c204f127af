package grpc

import (
	"context"
	"path"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// public lists the methods callable without an access token.
var public = map[string]bool{
	fullMethod("Ping"):     true,
	fullMethod("Register"): true,
	fullMethod("Login"):    true,
}

// accessTokenInterceptor lifts the access_token metadata into the context
// for protected methods. The vault validates the token itself.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if public[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return handler(context.WithValue(ctx, accessTokenKey, accessToken), req)
}

func accessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}

// recoveryInterceptor turns a handler panic into codes.Internal.
func (s *GRPCServer) recoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error(ctx, "panic recovered", "panic", rec, "method", info.FullMethod)
			resp, err = nil, status.Error(codes.Internal, "internal error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor counts calls by method and status code and logs
// failures.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)

	code := status.Code(err)
	if s.metrics != nil {
		s.metrics.GRPCRequestsTotal.WithLabelValues(path.Base(info.FullMethod), code.String()).Inc()
	}
	if err != nil {
		s.logger.Debug(ctx, "call failed", "method", info.FullMethod, "code", code.String())
	}
	return resp, err
}
