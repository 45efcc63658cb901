package grpctransport

import (
	"context"
	"errors"

	"github.com/M-505/mitra-da-dhaba-sg/pkg/http/middleware/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// staffMethods change orders and need a staff token, like their HTTP counterparts.
var staffMethods = map[string]bool{
	"/" + OrderServiceName + "/UpdateOrderStatus": true,
}

// authInterceptor checks the "authorization" metadata of staff methods against secret.
func authInterceptor(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !staffMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}

		claims, err := auth.Authorize(header, secret, "staff", "admin")
		if err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				return nil, status.Error(codes.PermissionDenied, err.Error())
			}

			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		return handler(auth.WithClaims(ctx, claims), req)
	}
}
