package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		apiBaseURL     string
		stateDir       string
		requestTimeout time.Duration
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				apiBaseURL:     "https://localhost:7200/api/v1",
				stateDir:       ".storefront",
				requestTimeout: 10 * time.Second,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"API_BASE_URL":    "https://shop.example.com/api/v1",
				"STATE_DIR":       "/var/lib/storefront",
				"REQUEST_TIMEOUT": "3s",
			},
			flags: []string{},
			want: want{
				apiBaseURL:     "https://shop.example.com/api/v1",
				stateDir:       "/var/lib/storefront",
				requestTimeout: 3 * time.Second,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-b", "http://localhost:9100/api/v1",
				"-s", "/tmp/storefront",
				"-t", "7s",
			},
			want: want{
				apiBaseURL:     "http://localhost:9100/api/v1",
				stateDir:       "/tmp/storefront",
				requestTimeout: 7 * time.Second,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"API_BASE_URL":    "https://env.example.com/api/v1",
				"STATE_DIR":       "/env/state",
				"REQUEST_TIMEOUT": "2s",
			},
			flags: []string{
				"-b", "http://flag.example.com/api/v1",
				"-s", "/flag/state",
				"-t", "9s",
			},
			want: want{
				apiBaseURL:     "https://env.example.com/api/v1",
				stateDir:       "/env/state",
				requestTimeout: 2 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.apiBaseURL, cfg.APIBaseURL)
			assert.Equal(t, tt.want.stateDir, cfg.StateDir)
			assert.Equal(t, tt.want.requestTimeout, cfg.RequestTimeout)
		})
	}
}
