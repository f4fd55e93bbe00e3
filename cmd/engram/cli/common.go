package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/felixgeelhaar/engram/internal/credential"
	"github.com/felixgeelhaar/engram/internal/embed"
	"github.com/felixgeelhaar/engram/internal/engine"
	"github.com/felixgeelhaar/engram/internal/observe"
	"github.com/felixgeelhaar/engram/internal/plugin"
	"github.com/felixgeelhaar/engram/internal/store"
)

// dataDir resolves where the database and snapshots live. ENGRAM_HOME
// overrides the default so daemons and tests can point elsewhere.
func dataDir() string {
	if dir := os.Getenv("ENGRAM_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".engram")
}

func getStore() store.Storage {
	dir := dataDir()
	storeLayer, err := store.NewSQLiteStore(
		filepath.Join(dir, "engram.db"),
		filepath.Join(dir, "snapshots"),
	)
	if err != nil {
		fmt.Printf("Failed to init store: %v\n", err)
		os.Exit(1)
	}
	return storeLayer
}

func getObserver() *observe.Observer {
	if jsonOut {
		return observe.NewJSON(os.Stdout, verbose)
	}
	return observe.New(os.Stdout, verbose)
}

// loadEngineConfig overlays stored settings onto the defaults. Unset or
// malformed values silently keep the default.
func loadEngineConfig(s store.Storage) engine.Config {
	cfg := engine.DefaultConfig(0)

	if v, err := s.GetConfig("memory.capacity"); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.Capacity = n
		}
	}
	if v, err := s.GetConfig("memory.alpha"); err == nil && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.Memory.Alpha = f
		}
	}
	if v, err := s.GetConfig("memory.half_life"); err == nil && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Memory.HalfLife = d
		}
	}
	if v, err := s.GetConfig("memory.baseline_importance"); err == nil && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.Memory.Baseline = f
		}
	}
	if v, err := s.GetConfig("memory.retrieval_boost"); err == nil && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			cfg.Memory.RetrievalBoost = f
		}
	}
	if v, err := s.GetConfig("goals.max_active"); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxGoals = n
		}
	}
	if v, err := s.GetConfig("recall.default_k"); err == nil && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultK = n
		}
	}
	return cfg
}

// openEmbedder builds the configured embedder. Flags override the
// configuration store; a plugin path takes precedence over builtin
// providers, whose api keys are decrypted from the store.
func openEmbedder(s store.Storage) (embed.Embedder, func(), error) {
	path := embedderPlugin
	if path == "" {
		path, _ = s.GetConfig("embedder.plugin")
	}
	if path != "" {
		return plugin.Open(path)
	}

	providerName := embedderName
	if providerName == "" {
		providerName, _ = s.GetConfig("embedder")
	}
	model := embedderModel
	if model == "" {
		model, _ = s.GetConfig("embedder.model")
	}
	dim := embedderDim
	if dim == 0 {
		if v, _ := s.GetConfig("embedder.dim"); v != "" {
			dim, _ = strconv.Atoi(v)
		}
	}

	var apiKey, baseURL string
	switch providerName {
	case "openai":
		apiKey, _ = s.GetConfig("openai.api_key")
		baseURL, _ = s.GetConfig("openai.base_url")
	case "gemini":
		apiKey, _ = s.GetConfig("gemini.api_key")
	}
	if credential.IsEncrypted(apiKey) {
		creds, err := credential.NewManager()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init credential manager: %w", err)
		}
		apiKey, err = creds.Decrypt(apiKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decrypt %s.api_key: %w", providerName, err)
		}
	}

	e, err := embed.New(embed.Config{
		Provider:  providerName,
		Model:     model,
		APIKey:    apiKey,
		BaseURL:   baseURL,
		Dimension: dim,
	})
	if err != nil {
		return nil, nil, err
	}
	return e, func() {}, nil
}

// openEngine wires storage, embedder, and observer into a ready engine.
// The returned cleanup flushes state and releases everything.
func openEngine() (*engine.Engine, *observe.Observer, func()) {
	obs := getObserver()
	s := getStore()

	emb, stopEmbedder, err := openEmbedder(s)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init embedder")
	}

	eng, err := engine.New(loadEngineConfig(s), emb, s, obs)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init engine")
	}

	cleanup := func() {
		if err := eng.Close(); err != nil {
			obs.Log().Warn().Err(err).Msg("close failed")
		}
		stopEmbedder()
		_ = obs.Close()
	}
	return eng, obs, cleanup
}
