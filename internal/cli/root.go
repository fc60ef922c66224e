// Package cli wires the engine into a command line tool with two entry
// points: an interactive run loop and a JSON-RPC stdio server.
package cli

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"gridwright/engine/internal/appdirs"
	"gridwright/engine/internal/deepseek"
	"gridwright/engine/internal/envfile"
	"gridwright/engine/internal/envutil"
	"gridwright/engine/internal/logging"
	"gridwright/engine/internal/openai"
	"gridwright/engine/internal/session"
	"gridwright/engine/internal/settings"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:           "gridwright-engine",
	Short:         "Natural-language spreadsheet editing engine",
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write debug logs (env: GRIDWRIGHT_DEBUG)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

type env struct {
	logger  *slog.Logger
	store   *settings.Store
	cleanup func()
}

func bootstrap() (*env, error) {
	envResult := envfile.Load()
	debug := debugFlag || envutil.Bool("GRIDWRIGHT_DEBUG")
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return nil, err
	}
	logSetup, logErr := logging.NewFileLogger(dataDir, debug)
	logger := logSetup.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With("component", "engine")
	if logSetup.Enabled {
		logger.Info("engine.logging_enabled", "path", logSetup.Path)
	}
	if envResult.Loaded {
		logger.Debug("engine.env_loaded", "path", envResult.Path, "keys", envResult.Keys)
	}
	if envResult.Err != nil {
		logger.Warn("engine.env_load_failed", "path", envResult.Path, "error", envResult.Err.Error())
	}
	if logErr != nil {
		logger.Warn("engine.log_setup_failed", "error", logErr.Error())
	}
	cleanup := func() {}
	if logSetup.Close != nil {
		cleanup = func() { _ = logSetup.Close() }
	}
	return &env{
		logger:  logger,
		store:   settings.NewStore(filepath.Join(dataDir, "settings.json")),
		cleanup: cleanup,
	}, nil
}

func (e *env) controllerOptions() ([]session.Option, error) {
	current, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	var deepseekClient session.LLMClient = deepseek.NewClient()
	if base := envutil.String("DEEPSEEK_API_URL", ""); base != "" {
		deepseekClient = deepseek.NewClientWithBaseURL(base)
	}
	var openaiClient session.LLMClient = openai.NewClient()
	if base := envutil.String("OPENAI_API_URL", ""); base != "" {
		openaiClient = openai.NewClientWithBaseURL(base)
	}
	return []session.Option{
		session.WithLogger(e.logger),
		session.WithSettings(current),
		session.WithClient(settings.ProviderDeepseek, deepseekClient),
		session.WithClient(settings.ProviderOpenAI, openaiClient),
	}, nil
}
