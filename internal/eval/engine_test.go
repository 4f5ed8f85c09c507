package eval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dshills/dapcore/internal/adapter/variables"
)

func TestRecoverableProbe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, true},
		{"invalid argument", ErrInvalidArgument, true},
		{"interrupted", ErrInterrupted, true},
		{"execution", ErrExecution, true},
		{"unsupported", ErrUnsupported, true},
		{"unsupported structure", variables.ErrUnsupportedStructure, true},
		{"wrapped execution", fmt.Errorf("probe: %w", ErrExecution), true},
		{"arbitrary", errors.New("disk on fire"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecoverableProbe(tt.err); got != tt.expected {
				t.Errorf("RecoverableProbe(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}
