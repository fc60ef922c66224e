package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gridwright/engine/internal/logging"
	"gridwright/engine/internal/settings"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		logger:  logging.Nop(),
		store:   settings.NewStore(filepath.Join(t.TempDir(), "settings.json")),
		cleanup: func() {},
	}
}

func TestRunLoopHelpAndExit(t *testing.T) {
	runOpenPath = ""
	runSheet = "Sheet1"
	in := strings.NewReader("help\nsummary\nexit\n")
	out := &bytes.Buffer{}
	runCmd.SetIn(in)
	runCmd.SetOut(out)
	if err := runLoop(runCmd, testEnv(t)); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Commands:") {
		t.Fatalf("help not printed:\n%s", got)
	}
	if !strings.Contains(got, "Sheet1") {
		t.Fatalf("summary not printed:\n%s", got)
	}
}

func TestRunLoopSaveWithoutPath(t *testing.T) {
	runOpenPath = ""
	runSheet = "Sheet1"
	in := strings.NewReader("save\nexit\n")
	out := &bytes.Buffer{}
	runCmd.SetIn(in)
	runCmd.SetOut(out)
	if err := runLoop(runCmd, testEnv(t)); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if !strings.Contains(out.String(), "no path") {
		t.Fatalf("missing path warning:\n%s", out.String())
	}
}

func TestRunLoopSaveToPath(t *testing.T) {
	runOpenPath = ""
	runSheet = "Ledger"
	path := filepath.Join(t.TempDir(), "out.xlsx")
	in := strings.NewReader("save " + path + "\nexit\n")
	out := &bytes.Buffer{}
	runCmd.SetIn(in)
	runCmd.SetOut(out)
	if err := runLoop(runCmd, testEnv(t)); err != nil {
		t.Fatalf("runLoop: %v", err)
	}
	if !strings.Contains(out.String(), "saved "+path) {
		t.Fatalf("save not confirmed:\n%s", out.String())
	}
}
