package failure_test

import (
	"fmt"
	"testing"

	"github.com/rohmanhakim/product-aggregator/pkg/failure"
	"github.com/stretchr/testify/assert"
)

type stubError struct {
	severity failure.Severity
}

func (s *stubError) Error() string {
	return "stub"
}

func (s *stubError) Severity() failure.Severity {
	return s.severity
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, failure.IsRecoverable(&stubError{severity: failure.SeverityRecoverable}))
	assert.False(t, failure.IsRecoverable(&stubError{severity: failure.SeverityFatal}))
	assert.False(t, failure.IsRecoverable(fmt.Errorf("plain")))
	assert.False(t, failure.IsRecoverable(nil))
}

func TestIsRecoverable_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", &stubError{severity: failure.SeverityRecoverable})
	assert.True(t, failure.IsRecoverable(wrapped))
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "fatal", failure.SeverityFatal.String())
	assert.Equal(t, "recoverable", failure.SeverityRecoverable.String())
	assert.Equal(t, "unknown", failure.Severity(42).String())
}
