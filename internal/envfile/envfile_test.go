package envfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPathSetsMissingKeysOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nexport GRIDWRIGHT_TEST_A=alpha\nGRIDWRIGHT_TEST_B=\"quoted\"\nGRIDWRIGHT_TEST_C=keep\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("GRIDWRIGHT_TEST_C", "existing")
	os.Unsetenv("GRIDWRIGHT_TEST_A")
	os.Unsetenv("GRIDWRIGHT_TEST_B")
	defer os.Unsetenv("GRIDWRIGHT_TEST_A")
	defer os.Unsetenv("GRIDWRIGHT_TEST_B")

	res := LoadPath(path)
	if res.Err != nil {
		t.Fatalf("load: %v", res.Err)
	}
	if !res.Loaded || res.Keys != 2 {
		t.Fatalf("expected 2 keys loaded, got %+v", res)
	}
	if got := os.Getenv("GRIDWRIGHT_TEST_A"); got != "alpha" {
		t.Fatalf("GRIDWRIGHT_TEST_A = %q", got)
	}
	if got := os.Getenv("GRIDWRIGHT_TEST_B"); got != "quoted" {
		t.Fatalf("GRIDWRIGHT_TEST_B = %q", got)
	}
	if got := os.Getenv("GRIDWRIGHT_TEST_C"); got != "existing" {
		t.Fatalf("existing env overwritten: %q", got)
	}
}

func TestLoadPathMissingFile(t *testing.T) {
	res := LoadPath(filepath.Join(t.TempDir(), "absent.env"))
	if res.Loaded || res.Err == nil {
		t.Fatalf("expected error for missing file, got %+v", res)
	}
}
