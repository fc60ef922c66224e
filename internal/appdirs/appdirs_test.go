package appdirs

import (
	"path/filepath"
	"testing"
)

func TestDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GRIDWRIGHT_DATA_DIR", dir)
	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if got != dir {
		t.Fatalf("DataDir = %q, want %q", got, dir)
	}
}

func TestDataDirDefaultUnderConfig(t *testing.T) {
	t.Setenv("GRIDWRIGHT_DATA_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if filepath.Base(got) != appDirName {
		t.Fatalf("DataDir = %q, want suffix %q", got, appDirName)
	}
}
