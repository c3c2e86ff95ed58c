package apperrors

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type testColors struct{}

func (testColors) Red() string    { return "<red>" }
func (testColors) Yellow() string { return "<yellow>" }
func (testColors) Reset() string  { return "</>" }

func TestHandleJobError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		colors   ColorProvider
		wantCode int
		contains []string
	}{
		{
			name:     "nil error is success",
			err:      nil,
			wantCode: ExitSuccess,
		},
		{
			name:     "deadline exceeded",
			err:      WrapError(context.DeadlineExceeded, "pi"),
			colors:   testColors{},
			wantCode: ExitErrorTimeout,
			contains: []string{"<yellow>", "Timeout", "1.5s"},
		},
		{
			name:     "timeout error type",
			err:      TimeoutError{Operation: "pi", Limit: time.Second},
			wantCode: ExitErrorTimeout,
			contains: []string{"Timeout"},
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			wantCode: ExitErrorCanceled,
			contains: []string{"Canceled"},
		},
		{
			name:     "config error",
			err:      NewConfigError("target error must be positive"),
			colors:   testColors{},
			wantCode: ExitErrorConfig,
			contains: []string{"<red>", "target error must be positive"},
		},
		{
			name:     "estimation failure",
			err:      EstimationError{Job: "e2", Calls: 3, Cause: errors.New("non-finite value")},
			wantCode: ExitErrorGeneric,
			contains: []string{"Failure", "e2: step 4: non-finite value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleJobError(tt.err, 1500*time.Millisecond, &buf, tt.colors)
			if code != tt.wantCode {
				t.Errorf("HandleJobError() = %d, want %d", code, tt.wantCode)
			}
			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q should contain %q", buf.String(), want)
				}
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("nil error should print nothing, got %q", buf.String())
			}
		})
	}
}

func TestExitCodeFor_ValidationError(t *testing.T) {
	t.Parallel()
	err := WrapError(ValidationError{Field: "seed", Message: "bad"}, "parse")
	if got := ExitCodeFor(err); got != ExitErrorConfig {
		t.Errorf("ExitCodeFor(validation) = %d, want %d", got, ExitErrorConfig)
	}
}
