package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"medtriage/internal/model"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CLASSIFIER_PROVIDER", "none")
	t.Setenv("CLASSIFIER_TIMEOUT", "")
}

func TestExecuteWithoutTranscript(t *testing.T) {
	isolateConfig(t)

	var stdout, stderr bytes.Buffer
	code := execute(nil, &stdout, &stderr)

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	var payload map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil {
		t.Fatalf("stdout is not JSON: %q", stdout.String())
	}
	if payload["error"] != "No transcript provided" {
		t.Errorf("error = %q, want %q", payload["error"], "No transcript provided")
	}
}

func TestExecuteFallbackAnalysis(t *testing.T) {
	isolateConfig(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"--provider", "none", "I have chest pain and a headache"}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("exit code = %d, stdout %q, stderr %q", code, stdout.String(), stderr.String())
	}

	var result model.UrgencyResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not a result: %q", stdout.String())
	}
	if result.UrgencyRank != model.RankImmediate || result.Severity != model.SeverityCritical {
		t.Errorf("rank/severity = %d/%s, want 1/critical", result.UrgencyRank, result.Severity)
	}
	if result.Confidence != 50 {
		t.Errorf("confidence = %v, want 50", result.Confidence)
	}
	if result.AIClassification != "Fallback keyword analysis" {
		t.Errorf("classification = %q", result.AIClassification)
	}
}

func TestExecuteEmptyTranscript(t *testing.T) {
	isolateConfig(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"   "}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	var result model.UrgencyResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not a result: %q", stdout.String())
	}
	if result.UrgencyScore != 0 || result.UrgencyRank != model.RankRoutine || result.Recommendation != "No symptoms described" {
		t.Errorf("unexpected empty result: %+v", result)
	}
}

func TestExecuteInvalidConfiguration(t *testing.T) {
	isolateConfig(t)
	t.Setenv("CLASSIFIER_PROVIDER", "telepathy")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"headache"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	var payload map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil || payload["error"] == "" {
		t.Errorf("expected error payload, got %q", stdout.String())
	}
}

func TestExecuteTranscriptStartingWithDash(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative number", []string{"-5 degrees outside and I can't breathe"}},
		{"bullet", []string{"- chest pain since this morning"}},
		{"after flags", []string{"--provider=none", "--timeout", "3", "-5 degrees outside and I can't breathe"}},
		{"after terminator", []string{"--provider", "none", "--", "--chest pain"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)

			var stdout, stderr bytes.Buffer
			code := execute(tt.args, &stdout, &stderr)
			if code != 0 {
				t.Fatalf("exit code = %d, stdout %q, stderr %q", code, stdout.String(), stderr.String())
			}

			var result model.UrgencyResult
			if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
				t.Fatalf("stdout is not a result: %q", stdout.String())
			}
			if result.UrgencyRank != model.RankImmediate {
				t.Errorf("rank = %d, want 1 for %q", result.UrgencyRank, tt.args[len(tt.args)-1])
			}
		})
	}
}

func TestExecuteHelpIsATranscript(t *testing.T) {
	isolateConfig(t)

	var stdout, stderr bytes.Buffer
	code := execute([]string{"--help"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}

	var result model.UrgencyResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not a result: %q", stdout.String())
	}
	if result.Recommendation == "" {
		t.Errorf("expected a recommendation, got %+v", result)
	}
}

func TestExecuteFlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing value", []string{"--provider"}},
		{"bad timeout", []string{"--timeout", "soon", "headache"}},
		{"two transcripts", []string{"headache", "fever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)

			var stdout, stderr bytes.Buffer
			if code := execute(tt.args, &stdout, &stderr); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}

			var payload map[string]string
			if err := json.Unmarshal(stdout.Bytes(), &payload); err != nil || payload["error"] == "" {
				t.Errorf("expected error payload, got %q", stdout.String())
			}
		})
	}
}

func TestExecuteProviderFlagOverridesInvalidEnvironment(t *testing.T) {
	isolateConfig(t)
	t.Setenv("CLASSIFIER_PROVIDER", "telepathy")

	var stdout, stderr bytes.Buffer
	code := execute([]string{"--provider", "none", "headache"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stdout %q", code, stdout.String())
	}

	var result model.UrgencyResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not a result: %q", stdout.String())
	}
	if result.AIClassification != "Fallback keyword analysis" {
		t.Errorf("classification = %q", result.AIClassification)
	}
}
