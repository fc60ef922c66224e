package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := NewStore(filepath.Join(root, "settings.json"))
	settings, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !settings.Providers[ProviderDeepseek].Enabled {
		t.Fatalf("expected deepseek enabled by default")
	}
	if settings.DefaultModelID != DefaultModelID {
		t.Fatalf("default model = %q", settings.DefaultModelID)
	}
	if settings.MaxBatchOps != defaultMaxBatchOps {
		t.Fatalf("default max batch ops = %d", settings.MaxBatchOps)
	}

	settings.Providers[ProviderOpenAI] = ProviderSettings{Enabled: false}
	settings.DefaultModelID = "openai:gpt-4o-mini"
	settings.ForceDelete = true
	if err := store.Save(settings); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Providers[ProviderOpenAI].Enabled {
		t.Fatalf("expected openai disabled after save")
	}
	if loaded.DefaultModelID != "openai:gpt-4o-mini" {
		t.Fatalf("model id = %q", loaded.DefaultModelID)
	}
	if !loaded.ForceDelete {
		t.Fatalf("force delete lost on round trip")
	}
}

func TestLoadBackfillsMissingProviders(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "settings.json")
	legacy := `{"schema_version": 1, "providers": {"deepseek": {"enabled": false}}}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write legacy settings: %v", err)
	}
	store := NewStore(path)
	settings, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if settings.Providers[ProviderDeepseek].Enabled {
		t.Fatalf("explicit disabled flag overwritten")
	}
	entry, ok := settings.Providers[ProviderOpenAI]
	if !ok || !entry.Enabled {
		t.Fatalf("expected openai backfilled enabled, got %+v", entry)
	}
	if settings.MaxBatchOps != defaultMaxBatchOps {
		t.Fatalf("max batch ops not backfilled: %d", settings.MaxBatchOps)
	}
}

func TestSplitModelID(t *testing.T) {
	provider, model := SplitModelID("openai:gpt-4o-mini")
	if provider != ProviderOpenAI || model != "gpt-4o-mini" {
		t.Fatalf("SplitModelID = %q %q", provider, model)
	}
	provider, model = SplitModelID("deepseek-chat")
	if provider != ProviderDeepseek || model != "deepseek-chat" {
		t.Fatalf("bare model id = %q %q", provider, model)
	}
}
