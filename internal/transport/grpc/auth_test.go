package grpctransport

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const testSecret = "till-secret"

func signToken(t *testing.T, role string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": role}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	return token
}

func TestStaffMethodsRequireToken(t *testing.T) {
	viper.Set("auth.jwt_secret", testSecret)
	t.Cleanup(func() { viper.Set("auth.jwt_secret", "") })

	conn := serve(t, newGRPCServer(), &fakeService{})

	tests := []struct {
		name   string
		method string
		header string
		want   codes.Code
	}{
		{name: "status without token", method: "UpdateOrderStatus", want: codes.Unauthenticated},
		{name: "status with bad token", method: "UpdateOrderStatus", header: "Bearer nope", want: codes.Unauthenticated},
		{name: "status with diner token", method: "UpdateOrderStatus",
			header: "Bearer " + signToken(t, "diner"), want: codes.PermissionDenied},
		{name: "status with staff token", method: "UpdateOrderStatus",
			header: "Bearer " + signToken(t, "staff"), want: codes.OK},
		{name: "read without token", method: "GetOrder", want: codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.header != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, "authorization", tt.header)
			}

			_, err := invokeContext(t, ctx, conn, tt.method, map[string]any{"id": 1, "status": "cancelled"})
			if got := status.Code(err); got != tt.want {
				t.Errorf("code = %v, want %v (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestServerWithoutSecretSkipsAuth(t *testing.T) {
	viper.Set("auth.jwt_secret", "")

	conn := serve(t, newGRPCServer(), &fakeService{})

	_, err := invoke(t, conn, "UpdateOrderStatus", map[string]any{"id": 1, "status": "cancelled"})
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
}
