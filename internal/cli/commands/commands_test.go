package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestNewPlayCommand(t *testing.T) {
	cmd := NewPlayCommand()

	if cmd.Use != "play [directory]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"config", "rate", "on-stop", "output", "filter", "listen", "limit",
		"duration", "verbose", "quiet", "log-level", "log-file", "webhook-url", "webhook-token"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewInspectCommand(t *testing.T) {
	cmd := NewInspectCommand()

	if cmd.Use != "inspect <log-file|directory>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"output", "sample", "write-config"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if buf.String() != "logplay dev\n" {
		t.Errorf("Unexpected output: %q", buf.String())
	}
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, filepath.Join(tmpDir, "a.log"), `{"updates":[]}`+"\n")

	writeFile(t, configPath, `directory: `+tmpDir+`
rate_hz: 10
on_stop: pause
filter: 'context == "vessels.self"'
webhooks:
  - name: test
    url: http://localhost:9999/deltas
`)

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Configuration valid!", "10.00 Hz (every 100ms)", "pause", "Webhooks:  1", "Log files found: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunValidate_WarnsOnMissingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, configPath, "directory: "+filepath.Join(tmpDir, "missing")+"\n")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Warning: Can't access log directory") {
		t.Errorf("Expected access warning, got:\n%s", buf.String())
	}
}

func TestRunValidate_WarnsOnNoLogFiles(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, configPath, "directory: "+tmpDir+"\n")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Warning: No log files found") {
		t.Errorf("Expected no log files warning, got:\n%s", buf.String())
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	writeFile(t, configPath, "invalid: yaml: content")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestRunValidate_InvalidPolicy(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	writeFile(t, configPath, "on_stop: rewind\n")

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected error for invalid on_stop")
	}
	if !strings.Contains(err.Error(), "on_stop") {
		t.Errorf("Expected on_stop error, got: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	cmd := NewValidateCommand()
	cmd.SetArgs([]string{"/nonexistent/config.yaml"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunInspect_MissingFile(t *testing.T) {
	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"/nonexistent/file.log"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "log file not found") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunInspect_File(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "a.log")
	writeFile(t, logFile, `{"context":"vessels.self","updates":[]}
{"other":true}
garbage
`)

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{logFile})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Lines sampled: 3",
		"Replayable: 66.7% (1 deltas, 1 other objects)",
		"- vessels.self",
		"Skipped lines: 1",
		"line 3:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunInspect_NoReplayableLines(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "a.log")
	writeFile(t, logFile, "nope\n")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{logFile})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No replayable lines found.") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestRunInspect_DirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.log"), `{"updates":[]}`+"\n")
	writeFile(t, filepath.Join(dir, "a.log"), "bad\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "ignored\n")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"-o", "json", dir})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	var got struct {
		Files []FileReport `json:"files"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got.Files) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(got.Files))
	}
	if filepath.Base(got.Files[0].File) != "a.log" || got.Files[0].Invalid != 1 {
		t.Errorf("Unexpected first report: %+v", got.Files[0])
	}
	if filepath.Base(got.Files[1].File) != "b.log" || got.Files[1].Deltas != 1 {
		t.Errorf("Unexpected second report: %+v", got.Files[1])
	}
}

func TestRunInspect_EmptyDirectory(t *testing.T) {
	cmd := NewInspectCommand()
	cmd.SetArgs([]string{t.TempDir()})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No log files found.") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestRunInspect_UnknownOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "a.log")
	writeFile(t, logFile, "{}\n")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"-o", "xml", logFile})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error for unknown output format")
	}
}

func TestRunInspect_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "a.log")
	writeFile(t, logFile, `{"updates":[]}`+"\n")
	configPath := filepath.Join(t.TempDir(), "logplay.yaml")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"-w", configPath, logFile})
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrote starter config to: "+configPath) {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}

	// The generated config must validate and point at the log directory.
	validate := NewValidateCommand()
	validate.SetArgs([]string{configPath})
	var vbuf bytes.Buffer
	validate.SetOut(&vbuf)
	if err := validate.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generated config does not validate: %v", err)
	}
	if !strings.Contains(vbuf.String(), "Directory: "+dir) {
		t.Errorf("Unexpected directory in generated config:\n%s", vbuf.String())
	}

	// A second run must not overwrite it.
	again := NewInspectCommand()
	again.SetArgs([]string{"-w", configPath, logFile})
	again.SetOut(&bytes.Buffer{})
	if err := again.ExecuteContext(context.Background()); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestRunInspect_WriteConfigNoMatch(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "a.log")
	writeFile(t, logFile, "garbage\n")
	configPath := filepath.Join(dir, "logplay.yaml")

	cmd := NewInspectCommand()
	cmd.SetArgs([]string{"-w", configPath, logFile})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatal("Expected error with no replayable lines")
	}
	if _, err := os.Stat(configPath); !os.IsNotExist(err) {
		t.Error("Config file should not have been written")
	}
}
