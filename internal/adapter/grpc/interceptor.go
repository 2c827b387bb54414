package grpc

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// healthMethodPrefix matches the standard grpc.health.v1 service, which
// load balancers and orchestrators call without credentials
const healthMethodPrefix = "/grpc.health.v1.Health/"

// AuthInterceptor returns a gRPC unary server interceptor that validates
// the authorization token from request metadata.
// The token may be sent bare or with a "Bearer " prefix. Health checks skip auth.
// If the token is missing or invalid, it returns status.Unauthenticated.
// If valid, it calls the handler with the original context.
func AuthInterceptor(validToken string) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if strings.HasPrefix(info.FullMethod, healthMethodPrefix) {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization header")
		}

		token := strings.TrimPrefix(authHeaders[0], "Bearer ")
		if token != validToken {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(ctx, req)
	}
}

// LoggingInterceptor returns a gRPC unary server interceptor that logs every
// call with its method, status code and duration.
// Server-side failures are logged at error level, everything else at info.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}

		switch code {
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			logger.Error("grpc call failed", append(fields, zap.Error(err))...)
		case codes.OK:
			logger.Info("grpc call", fields...)
		default:
			logger.Info("grpc call rejected", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}
