package forwardws

import (
	"strings"
	"testing"
)

func TestTruncateForTrace_ShortPayloadUnchanged(t *testing.T) {
	short := "hello"
	if got := truncateForTrace(short); got != short {
		t.Errorf("expected unchanged payload, got %q", got)
	}
}

func TestTruncateForTrace_LongPayloadTruncatedWithSuffix(t *testing.T) {
	long := strings.Repeat("a", maxTraceBytes+500)

	got := truncateForTrace(long)

	if !strings.HasPrefix(got, strings.Repeat("a", maxTraceBytes)) {
		t.Error("expected truncated payload to retain the first maxTraceBytes bytes")
	}
	if !strings.Contains(got, "...1524 bytes") {
		t.Errorf("expected suffix reporting original length, got %q", got)
	}
}

func TestTruncateForTrace_ExactlyAtLimitUnchanged(t *testing.T) {
	exact := strings.Repeat("b", maxTraceBytes)
	if got := truncateForTrace(exact); got != exact {
		t.Error("expected a payload exactly at the limit to pass through unchanged")
	}
}
