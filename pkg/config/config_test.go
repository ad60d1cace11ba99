package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
)

func TestPrecedence(t *testing.T) {
	t.Run("default when nothing is set", func(t *testing.T) {
		r := config.New()
		v, err := r.Get(config.KeySimilarityTopK)
		gt.NoError(t, err)
		gt.Equal(t, v, 3)
	})

	t.Run("environment beats default", func(t *testing.T) {
		t.Setenv("HAZEL_SIMILARITY_TOP_K", "7")
		r := config.New()
		v, err := r.Get(config.KeySimilarityTopK)
		gt.NoError(t, err)
		gt.Equal(t, v, 7)
	})

	t.Run("runtime override beats environment", func(t *testing.T) {
		t.Setenv("HAZEL_SIMILARITY_TOP_K", "7")
		r := config.New()

		prev, err := r.Set(config.KeySimilarityTopK, 5)
		gt.NoError(t, err)
		gt.Equal(t, prev, 7)

		v, err := r.Get(config.KeySimilarityTopK)
		gt.NoError(t, err)
		gt.Equal(t, v, 5)
	})

	t.Run("override sticks until replaced", func(t *testing.T) {
		r := config.New()

		_, err := r.Set(config.KeyLogLevel, "debug")
		gt.NoError(t, err)

		v, err := r.Get(config.KeyLogLevel)
		gt.NoError(t, err)
		gt.Equal(t, v, "debug")

		prev, err := r.Set(config.KeyLogLevel, "error")
		gt.NoError(t, err)
		gt.Equal(t, prev, "debug")

		v, err = r.Get(config.KeyLogLevel)
		gt.NoError(t, err)
		gt.Equal(t, v, "error")
	})
}

func TestUnknownKey(t *testing.T) {
	r := config.New()

	_, err := r.Get("no_such_setting")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrUnknownSetting))

	_, err = r.Set("no_such_setting", "x")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrUnknownSetting))
}

func TestValidation(t *testing.T) {
	r := config.New()

	testCases := []struct {
		name  string
		key   config.Key
		value any
	}{
		{"zero top_k", config.KeySimilarityTopK, 0},
		{"negative top_k", config.KeySimilarityTopK, -1},
		{"non-numeric top_k", config.KeySimilarityTopK, "three"},
		{"bogus log level", config.KeyLogLevel, "verbose"},
		{"empty db path", config.KeyDBPath, ""},
		{"empty model", config.KeyEmbeddingModel, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Set(tc.key, tc.value)
			gt.Error(t, err)
			gt.Equal(t, model.ErrorKind(err), "validation")
		})
	}
}

func TestSetAcceptsStringForms(t *testing.T) {
	r := config.New()

	// Values arriving via tool calls or flags are often strings
	_, err := r.Set(config.KeySimilarityTopK, "9")
	gt.NoError(t, err)

	n, err := r.GetInt(config.KeySimilarityTopK)
	gt.NoError(t, err)
	gt.Equal(t, n, 9)

	// "warning" normalizes to "warn"
	_, err = r.Set(config.KeyLogLevel, "WARNING")
	gt.NoError(t, err)

	level, err := r.GetString(config.KeyLogLevel)
	gt.NoError(t, err)
	gt.Equal(t, level, "warn")
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("HAZEL_SIMILARITY_TOP_K", "lots")
	r := config.New()

	v, err := r.Get(config.KeySimilarityTopK)
	gt.NoError(t, err)
	gt.Equal(t, v, 3)
	gt.A(t, r.EnvWarnings()).Length(1)
}

func TestGetAll(t *testing.T) {
	r := config.New()
	_, err := r.Set(config.KeySimilarityTopK, 8)
	gt.NoError(t, err)

	all := r.GetAll()
	gt.Equal(t, all[config.KeySimilarityTopK], 8)
	gt.Equal(t, all[config.KeyEmbeddingModel], "text-embedding-3-small")
	gt.A(t, r.Keys()).Length(4)
}
