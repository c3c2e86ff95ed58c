package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// decodeEntries parses one JSON log entry per line.
func decodeEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("invalid log line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	return entries
}

// jobLifecycle logs what a job emits from start to termination.
func jobLifecycle(l Logger, stepErr error) {
	l.Info("job started",
		String("job", "e2"),
		String("job_id", "0b7c"),
		Float64("target_error", 1e-6),
		Int("call_budget", 10_000_000))
	l.Debug("progress", String("job", "e2"), Uint64("calls", 4096), Float64("estimate", 0.869))
	fields := []Field{
		String("job", "e2"),
		String("state", "completed"),
		Uint64("calls", 8192),
		Float64("error_estimate", 2.5e-4),
		Duration("elapsed", 1500*time.Millisecond),
	}
	if stepErr != nil {
		l.Error("job failed", stepErr, fields...)
		return
	}
	l.Info("job finished", fields...)
}

func TestZerologAdapter_JobLifecycle(t *testing.T) {
	previous := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(previous)

	var buf bytes.Buffer
	jobLifecycle(NewLogger(&buf, "job"), nil)
	entries := decodeEntries(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	started, progress, finished := entries[0], entries[1], entries[2]
	tests := []struct {
		entry map[string]any
		key   string
		want  any
	}{
		{started, "message", "job started"},
		{started, "level", "info"},
		{started, "component", "job"},
		{started, "job_id", "0b7c"},
		{started, "target_error", 1e-6},
		{started, "call_budget", float64(10_000_000)},
		{progress, "level", "debug"},
		{progress, "calls", float64(4096)},
		{finished, "message", "job finished"},
		{finished, "state", "completed"},
		{finished, "error_estimate", 2.5e-4},
		{finished, "elapsed", float64(1500)},
	}
	for _, tt := range tests {
		if got := tt.entry[tt.key]; got != tt.want {
			t.Errorf("%s[%q] = %v (%T), want %v", tt.entry["message"], tt.key, got, got, tt.want)
		}
	}
	if _, ok := started["time"]; !ok {
		t.Error("entries should be timestamped")
	}
}

func TestZerologAdapter_FailedJob(t *testing.T) {
	var buf bytes.Buffer
	stepErr := errors.New("integrand returned NaN")
	jobLifecycle(NewZerologAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel)), stepErr)
	entries := decodeEntries(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (debug progress filtered)", len(entries))
	}
	failed := entries[1]
	if failed["level"] != "error" || failed["message"] != "job failed" {
		t.Errorf("terminal entry = %v, want an error-level job failed", failed)
	}
	if failed["error"] != "integrand returned NaN" {
		t.Errorf("error = %v, want the step error", failed["error"])
	}
}

func TestZerologAdapter_FieldKinds(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapter(zerolog.New(&buf))
	a.Info("snapshot",
		Field{Key: "remaining_known", Value: false},
		Field{Key: "budget", Value: int64(-1)},
		Field{Key: "cause", Value: errors.New("deadline")},
		Field{Key: "bounds", Value: []float64{0, 1}},
	)
	e := decodeEntries(t, &buf)[0]
	if e["remaining_known"] != false || e["budget"] != float64(-1) || e["cause"] != "deadline" {
		t.Errorf("entry = %v", e)
	}
	if b, ok := e["bounds"].([]any); !ok || len(b) != 2 {
		t.Errorf("bounds = %v, want a two-element array", e["bounds"])
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapter(zerolog.New(&buf))
	a.Printf("estimating %d integrands", 3)
	a.Println("pi", "e2", "close-to-avg")
	entries := decodeEntries(t, &buf)
	if entries[0]["message"] != "estimating 3 integrands" {
		t.Errorf("Printf message = %v", entries[0]["message"])
	}
	if entries[1]["message"] != "pi e2 close-to-avg" {
		t.Errorf("Println message = %q, want no trailing newline", entries[1]["message"])
	}
}

func TestStdLoggerAdapter_JobLifecycle(t *testing.T) {
	var buf bytes.Buffer
	jobLifecycle(NewStdLoggerAdapter(log.New(&buf, "", 0)), errors.New("sampler closed"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{
		"[INFO] job started job=e2 job_id=0b7c target_error=1e-06 call_budget=10000000",
		"[DEBUG] progress job=e2 calls=4096 estimate=0.869",
		"[ERROR] job failed: sampler closed job=e2 state=completed calls=8192 error_estimate=0.00025 elapsed=1.5s",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestStdLoggerAdapter_PrintfPrintln(t *testing.T) {
	var buf bytes.Buffer
	a := NewStdLoggerAdapter(log.New(&buf, "", 0))
	a.Printf("seed %d", 42)
	a.Println("done")
	if got := buf.String(); got != "seed 42\ndone\n" {
		t.Errorf("output = %q", got)
	}
}

func TestFieldConstructors(t *testing.T) {
	err := errors.New("budget exhausted")
	tests := []struct {
		name string
		got  Field
		want Field
	}{
		{"String", String("job", "pi"), Field{"job", "pi"}},
		{"Int", Int("workers", 3), Field{"workers", 3}},
		{"Uint64", Uint64("calls", 1 << 40), Field{"calls", uint64(1 << 40)}},
		{"Float64", Float64("estimate", 3.14159), Field{"estimate", 3.14159}},
		{"Duration", Duration("elapsed", time.Second), Field{"elapsed", time.Second}},
		{"Err", Err(err), Field{"error", err}},
		{"Err nil", Err(nil), Field{"error", nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestNewDefaultLogger(t *testing.T) {
	if NewDefaultLogger() == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}
}

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	jobLifecycle(l, errors.New("ignored"))
	l.Printf("%d", 1)
	l.Println()
}

func TestSetLevel(t *testing.T) {
	previous := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(previous)

	if err := SetLevel("WARN"); err != nil {
		t.Fatalf("SetLevel(WARN) error: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("GlobalLevel = %v, want warn", zerolog.GlobalLevel())
	}

	var buf bytes.Buffer
	jobLifecycle(NewLogger(&buf, "job"), nil)
	if n := len(decodeEntries(t, &buf)); n != 0 {
		t.Errorf("warn level should suppress job lifecycle info logs, got %d entries", n)
	}

	if err := SetLevel("verbose"); err == nil {
		t.Error("SetLevel should reject unknown level names")
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Error("an unknown level must leave the level unchanged")
	}
}
