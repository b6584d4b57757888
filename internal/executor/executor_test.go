package executor_test

import (
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stressray/stressray/internal/executor"
	"github.com/stressray/stressray/internal/httpclient"
	"github.com/stressray/stressray/internal/scenario"
)

// newOKServer creates a test HTTP server that always accepts.
func newOKServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}))
}

// newTestSelector creates a deterministic selector over the default pool.
func newTestSelector(t *testing.T) *scenario.Selector {
	t.Helper()
	sel, err := scenario.NewSelector(scenario.DefaultPool(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewSelector() error = %v", err)
	}
	return sel
}

func newTestClient(baseURL string) *httpclient.Client {
	return httpclient.NewClient(httpclient.WithBaseURL(baseURL))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  executor.Config
		wantErr bool
	}{
		{
			name:   "valid",
			config: executor.Config{Requests: 10, Concurrency: 5},
		},
		{
			name:   "valid with timeout",
			config: executor.Config{Requests: 1, Concurrency: 1, Timeout: time.Second},
		},
		{
			name:    "zero requests",
			config:  executor.Config{Requests: 0, Concurrency: 5},
			wantErr: true,
		},
		{
			name:    "negative requests",
			config:  executor.Config{Requests: -1, Concurrency: 5},
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			config:  executor.Config{Requests: 10, Concurrency: 0},
			wantErr: true,
		},
		{
			name:    "negative concurrency",
			config:  executor.Config{Requests: 10, Concurrency: -2},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			config:  executor.Config{Requests: 10, Concurrency: 5, Timeout: -time.Second},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ErrorNamesField(t *testing.T) {
	config := executor.Config{Requests: 0, Concurrency: 5}

	err := config.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}

	verr, ok := err.(*executor.ValidationError)
	if !ok {
		t.Fatalf("Validate() error type = %T, want *executor.ValidationError", err)
	}
	if verr.Field != "requests" {
		t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "requests")
	}
}

func TestConfig_EffectiveConcurrency(t *testing.T) {
	tests := []struct {
		name     string
		config   executor.Config
		expected int
	}{
		{
			name:     "concurrency below requests",
			config:   executor.Config{Requests: 100, Concurrency: 10},
			expected: 10,
		},
		{
			name:     "requests below concurrency",
			config:   executor.Config{Requests: 3, Concurrency: 10},
			expected: 3,
		},
		{
			name:     "equal",
			config:   executor.Config{Requests: 5, Concurrency: 5},
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.EffectiveConcurrency(); got != tt.expected {
				t.Errorf("EffectiveConcurrency() = %d, want %d", got, tt.expected)
			}
		})
	}
}
