package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()

	tests := []struct {
		key  string
		want string
	}{
		{key: "server.http.port", want: "8080"},
		{key: "rabbitmq.exchange", want: "restaurant.orders"},
		{key: "postgres.migrations_path", want: "./migrations"},
		{key: "log.level", want: "info"},
	}

	for _, tt := range tests {
		if got := viper.GetString(tt.key); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("RESTAURANT_SERVER_HTTP_PORT", "9999")
	t.Chdir(t.TempDir())

	MustInit()

	if got := viper.GetString("server.http.port"); got != "9999" {
		t.Errorf("server.http.port = %q, want %q", got, "9999")
	}
}
