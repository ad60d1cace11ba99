package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
)

// Key identifies a recognized setting
type Key string

const (
	KeyLogLevel       Key = "log_level"
	KeyDBPath         Key = "db_path"
	KeyEmbeddingModel Key = "embedding_model"
	KeySimilarityTopK Key = "similarity_top_k"
)

// spec describes one setting: its environment source, default value,
// and how to parse/validate incoming values.
type spec struct {
	envVar string
	defVal any
	parse  func(raw any) (any, error)
}

func parseLogLevel(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, goerr.New("log level must be a string",
			goerr.T(model.TagValidation), goerr.V("value", raw))
	}
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(s), nil
	case "warning":
		return "warn", nil
	default:
		return nil, goerr.New("log level must be one of debug, info, warn, error",
			goerr.T(model.TagValidation), goerr.V("value", s))
	}
}

func parseNonEmptyString(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok || s == "" {
		return nil, goerr.New("value must be a non-empty string",
			goerr.T(model.TagValidation), goerr.V("value", raw))
	}
	return s, nil
}

func parsePositiveInt(raw any) (any, error) {
	var n int
	switch x := raw.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		n = int(x)
		if float64(n) != x {
			return nil, goerr.New("value must be an integer",
				goerr.T(model.TagValidation), goerr.V("value", x))
		}
	case string:
		v, err := strconv.Atoi(x)
		if err != nil {
			return nil, goerr.New("value must be an integer",
				goerr.T(model.TagValidation), goerr.V("value", x))
		}
		n = v
	default:
		return nil, goerr.New("value must be an integer",
			goerr.T(model.TagValidation), goerr.V("value", raw))
	}
	if n <= 0 {
		return nil, goerr.New("value must be a positive integer",
			goerr.T(model.TagValidation), goerr.V("value", n))
	}
	return n, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "memories.db"
	}
	return filepath.Join(home, ".hazel", "memories.db")
}

func specs() map[Key]spec {
	return map[Key]spec{
		KeyLogLevel:       {envVar: "HAZEL_LOG_LEVEL", defVal: "info", parse: parseLogLevel},
		KeyDBPath:         {envVar: "HAZEL_DB_PATH", defVal: defaultDBPath(), parse: parseNonEmptyString},
		KeyEmbeddingModel: {envVar: "HAZEL_EMBEDDING_MODEL", defVal: "text-embedding-3-small", parse: parseNonEmptyString},
		KeySimilarityTopK: {envVar: "HAZEL_SIMILARITY_TOP_K", defVal: 3, parse: parsePositiveInt},
	}
}

// Resolver merges three layers of settings: runtime overrides set via
// Set, environment-supplied values captured at construction, and
// compiled-in defaults. Runtime overrides live for the process
// lifetime only.
type Resolver struct {
	mu        sync.RWMutex
	specs     map[Key]spec
	env       map[Key]any
	overrides map[Key]any

	// envWarnings records environment values that failed validation
	// and were ignored, for startup logging by the caller.
	envWarnings []string
}

// New builds a Resolver, reading the environment layer once.
func New() *Resolver {
	r := &Resolver{
		specs:     specs(),
		env:       make(map[Key]any),
		overrides: make(map[Key]any),
	}

	for key, sp := range r.specs {
		raw, ok := os.LookupEnv(sp.envVar)
		if !ok {
			continue
		}
		val, err := sp.parse(raw)
		if err != nil {
			r.envWarnings = append(r.envWarnings,
				sp.envVar+"="+raw+" is invalid, using default")
			continue
		}
		r.env[key] = val
	}

	return r
}

// EnvWarnings returns messages for environment values that were
// rejected during construction.
func (r *Resolver) EnvWarnings() []string {
	return r.envWarnings
}

// Get resolves a setting through the precedence chain:
// runtime override > environment > default.
func (r *Resolver) Get(key Key) (any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(key)
}

func (r *Resolver) resolve(key Key) (any, error) {
	sp, ok := r.specs[key]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownSetting, "unknown setting",
			goerr.V("key", key))
	}
	if v, ok := r.overrides[key]; ok {
		return v, nil
	}
	if v, ok := r.env[key]; ok {
		return v, nil
	}
	return sp.defVal, nil
}

// GetString returns a string-typed setting
func (r *Resolver) GetString(key Key) (string, error) {
	v, err := r.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", goerr.New("setting is not a string",
			goerr.T(model.TagConfiguration), goerr.V("key", key))
	}
	return s, nil
}

// GetInt returns an int-typed setting
func (r *Resolver) GetInt(key Key) (int, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, goerr.New("setting is not an integer",
			goerr.T(model.TagConfiguration), goerr.V("key", key))
	}
	return n, nil
}

// Set validates the value and installs it in the runtime-override
// layer, returning the previously effective value. The override is
// visible to all subsequent Get calls until the process exits.
func (r *Resolver) Set(key Key, value any) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, ok := r.specs[key]
	if !ok {
		return nil, goerr.Wrap(model.ErrUnknownSetting, "unknown setting",
			goerr.V("key", key))
	}

	parsed, err := sp.parse(value)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid setting value", goerr.V("key", key))
	}

	prev, err := r.resolve(key)
	if err != nil {
		return nil, err
	}

	r.overrides[key] = parsed
	return prev, nil
}

// GetAll returns every recognized setting with its currently
// effective value.
func (r *Resolver) GetAll() map[Key]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make(map[Key]any, len(r.specs))
	for key := range r.specs {
		v, _ := r.resolve(key)
		all[key] = v
	}
	return all
}

// Keys returns all recognized setting names in stable order
func (r *Resolver) Keys() []Key {
	keys := make([]Key, 0, len(r.specs))
	for key := range r.specs {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
