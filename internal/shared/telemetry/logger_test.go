package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestInfoWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Info("analysis.stage", map[string]any{"stage": "summary", "status": "ok"})

	line := strings.TrimSpace(buf.String())
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", line, err)
	}
	if payload["msg"] != "analysis.stage" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["stage"] != "summary" {
		t.Fatalf("unexpected stage: %v", payload["stage"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARN").String() != "WARN" {
		t.Fatalf("expected warn level")
	}
	if parseLevel("bogus").String() != "INFO" {
		t.Fatalf("expected info default")
	}
}

func TestSetLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("warn")
	t.Cleanup(func() {
		SetLevel(os.Getenv("LOG_LEVEL"))
		SetOutput(os.Stdout)
	})

	Info("dropped", nil)
	Warn("kept", nil)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn line missing: %s", out)
	}
}

func TestErrorLogWritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	ErrorLog().Print("http: TLS handshake error from 10.0.0.1")

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if payload["level"] != "error" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "http: TLS handshake error from 10.0.0.1" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}
