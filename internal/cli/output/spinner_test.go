package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "uploading")

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "uploading") {
		t.Errorf("expected spinner message in output, got %q", buf.String())
	}
}

func TestSpinner_Success(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "uploading")

	s.Start()
	s.Success("backup complete")

	if !strings.Contains(buf.String(), "backup complete") {
		t.Errorf("expected success message, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "✓") {
		t.Errorf("expected success marker, got %q", buf.String())
	}
}

func TestSpinner_Fail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "uploading")

	s.Start()
	s.Fail("network unavailable")

	if !strings.Contains(buf.String(), "network unavailable") {
		t.Errorf("expected failure message, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "✗") {
		t.Errorf("expected failure marker, got %q", buf.String())
	}
}
