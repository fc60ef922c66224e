package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const schemaVersion = 1

const (
	ProviderDeepseek = "deepseek"
	ProviderOpenAI   = "openai"

	DefaultModelID = "deepseek:deepseek-chat"

	defaultMaxBatchOps = 200
)

type ProviderSettings struct {
	Enabled bool `json:"enabled"`
}

type Settings struct {
	SchemaVersion  int                         `json:"schema_version"`
	Providers      map[string]ProviderSettings `json:"providers"`
	DefaultModelID string                      `json:"default_model_id,omitempty"`
	// MaxBatchOps caps how many operations one instruction may carry;
	// anything beyond the cap is dropped before validation.
	MaxBatchOps int `json:"max_batch_ops,omitempty"`
	// ForceDelete lets delete operations discard non-empty rows and
	// columns without the per-operation force flag.
	ForceDelete bool `json:"force_delete,omitempty"`
}

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load() (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, err
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	backfill(&settings)
	return &settings, nil
}

func (s *Store) Save(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	backfill(settings)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Update(fn func(*Settings)) (*Settings, error) {
	settings, err := s.Load()
	if err != nil {
		return nil, err
	}
	fn(settings)
	return settings, s.Save(settings)
}

// Default returns the settings used when nothing has been saved yet.
func Default() *Settings {
	return defaultSettings()
}

func defaultSettings() *Settings {
	return &Settings{
		SchemaVersion: schemaVersion,
		Providers: map[string]ProviderSettings{
			ProviderDeepseek: {Enabled: true},
			ProviderOpenAI:   {Enabled: true},
		},
		DefaultModelID: DefaultModelID,
		MaxBatchOps:    defaultMaxBatchOps,
	}
}

func backfill(settings *Settings) {
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = schemaVersion
	}
	if settings.Providers == nil {
		settings.Providers = map[string]ProviderSettings{}
	}
	for _, id := range []string{ProviderDeepseek, ProviderOpenAI} {
		if _, ok := settings.Providers[id]; !ok {
			settings.Providers[id] = ProviderSettings{Enabled: true}
		}
	}
	if settings.DefaultModelID == "" {
		settings.DefaultModelID = DefaultModelID
	}
	if settings.MaxBatchOps <= 0 {
		settings.MaxBatchOps = defaultMaxBatchOps
	}
}

// SplitModelID splits "provider:model" into its parts. A bare model name
// maps to the deepseek provider.
func SplitModelID(modelID string) (providerID, model string) {
	providerID, model, found := strings.Cut(strings.TrimSpace(modelID), ":")
	if !found {
		return ProviderDeepseek, providerID
	}
	return providerID, model
}
