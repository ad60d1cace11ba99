package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/adapter"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/repository"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// appConfig holds flag values shared across commands
type appConfig struct {
	// Core settings; applied as runtime overrides when set explicitly
	dbPath         string
	embeddingModel string
	topK           int64
	logLevel       string

	// Embedding providers
	openaiAPIKey   string
	geminiProject  string
	geminiLocation string
}

// globalFlags returns the flags backing the four core settings. The
// environment layer for these lives in the config resolver, so the
// flags carry no env sources; a flag set on the command line becomes
// a runtime override.
func globalFlags(cfg *appConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-path",
			Aliases:     []string{"d"},
			Usage:       "Storage location: file path, ':memory:', or firestore://PROJECT/DATABASE",
			Destination: &cfg.dbPath,
		},
		&cli.StringFlag{
			Name:        "embedding-model",
			Aliases:     []string{"m"},
			Usage:       "Embedding model identifier",
			Destination: &cfg.embeddingModel,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Usage:       "Default number of similarity search results",
			Destination: &cfg.topK,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Destination: &cfg.logLevel,
		},
	}
}

// providerFlags returns flags for embedding provider credentials
func providerFlags(cfg *appConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini embeddings",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

func allFlags(cfg *appConfig) []cli.Flag {
	return append(globalFlags(cfg), providerFlags(cfg)...)
}

// newResolver builds the configuration resolver and applies
// explicitly set command-line flags as runtime overrides
func (cfg *appConfig) newResolver(c *cli.Command) (*config.Resolver, error) {
	r := config.New()
	for _, warn := range r.EnvWarnings() {
		logging.Default().Warn(warn)
	}

	overrides := []struct {
		flag  string
		key   config.Key
		value any
	}{
		{"db-path", config.KeyDBPath, cfg.dbPath},
		{"embedding-model", config.KeyEmbeddingModel, cfg.embeddingModel},
		{"top-k", config.KeySimilarityTopK, int(cfg.topK)},
		{"log-level", config.KeyLogLevel, cfg.logLevel},
	}
	for _, o := range overrides {
		if !c.IsSet(o.flag) {
			continue
		}
		if _, err := r.Set(o.key, o.value); err != nil {
			return nil, goerr.Wrap(err, "invalid flag value", goerr.V("flag", o.flag))
		}
	}

	level, err := r.GetString(config.KeyLogLevel)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logging.New(level, os.Stderr))

	return r, nil
}

// newEmbedder wires the embedding gateway with whichever provider
// credentials are available. Missing credentials surface as provider
// errors at embed time, so read-only commands still work.
func (cfg *appConfig) newEmbedder(ctx context.Context, r *config.Resolver) (adapter.Embedder, error) {
	var opts []adapter.GatewayOption

	if cfg.openaiAPIKey != "" {
		opts = append(opts, adapter.WithOpenAI(adapter.NewOpenAI(cfg.openaiAPIKey)))
	}

	if cfg.geminiProject != "" {
		gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini client")
		}
		opts = append(opts, adapter.WithGemini(gemini))
	}

	return adapter.NewGateway(r, opts...), nil
}

// newUseCase assembles the memory service from the resolved
// configuration. The returned closer releases the storage handle.
func (cfg *appConfig) newUseCase(ctx context.Context, c *cli.Command) (*memory.UseCase, func() error, error) {
	r, err := cfg.newResolver(c)
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := r.GetString(config.KeyDBPath)
	if err != nil {
		return nil, nil, err
	}

	repo, err := repository.New(ctx, dbPath)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open repository")
	}

	embedder, err := cfg.newEmbedder(ctx, r)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	return memory.New(repo, embedder, r), repo.Close, nil
}
