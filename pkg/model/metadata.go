package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

type MetaKind string

const (
	MetaString MetaKind = "string"
	MetaNumber MetaKind = "number"
	MetaBool   MetaKind = "bool"
)

// MetaValue is a scalar annotation value. Keeping the variants closed
// lets every storage backend serialize metadata without reflection.
type MetaValue struct {
	Kind MetaKind
	Str  string
	Num  float64
	Bool bool
}

func MetaStr(s string) MetaValue  { return MetaValue{Kind: MetaString, Str: s} }
func MetaNum(n float64) MetaValue { return MetaValue{Kind: MetaNumber, Num: n} }
func MetaBoolV(b bool) MetaValue  { return MetaValue{Kind: MetaBool, Bool: b} }

// Any returns the plain scalar for JSON-ish consumers.
func (v MetaValue) Any() any {
	switch v.Kind {
	case MetaNumber:
		return v.Num
	case MetaBool:
		return v.Bool
	default:
		return v.Str
	}
}

func (v MetaValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *MetaValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	mv, err := MetaFromAny(raw)
	if err != nil {
		return err
	}
	*v = mv
	return nil
}

// MetaFromAny converts a decoded JSON value into a MetaValue. Nested
// objects and arrays are rejected: metadata holds small scalar
// annotations only.
func MetaFromAny(raw any) (MetaValue, error) {
	switch x := raw.(type) {
	case string:
		return MetaStr(x), nil
	case float64:
		return MetaNum(x), nil
	case int:
		return MetaNum(float64(x)), nil
	case int64:
		return MetaNum(float64(x)), nil
	case bool:
		return MetaBoolV(x), nil
	default:
		return MetaValue{}, goerr.New("metadata values must be string, number, or boolean",
			goerr.T(TagValidation), goerr.V("value", raw))
	}
}

// MetaFromMap converts an open map (e.g. decoded tool arguments) into
// typed metadata.
func MetaFromMap(raw map[string]any) (map[string]MetaValue, error) {
	if raw == nil {
		return nil, nil
	}
	meta := make(map[string]MetaValue, len(raw))
	for k, v := range raw {
		mv, err := MetaFromAny(v)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid metadata", goerr.V("key", k))
		}
		meta[k] = mv
	}
	return meta, nil
}

// MetaToMap flattens typed metadata back to plain scalars for
// serialization and display.
func MetaToMap(meta map[string]MetaValue) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v.Any()
	}
	return out
}
