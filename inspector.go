package fanout

import (
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when the input is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Inspector examines raw bytes and returns a View for field queries.
type Inspector interface {
	Inspect(raw []byte) (View, error)
}

// View provides read-only field access over one JSON value without
// decoding it.
type View interface {
	// HasField returns true if the path exists.
	HasField(path string) bool

	// GetString returns the string value at path, or false if not found
	// or not a string.
	GetString(path string) (string, bool)

	// GetBytes returns the raw bytes at path, or false if not found.
	// For JSON, this returns the raw JSON value (including quotes for strings).
	GetBytes(path string) ([]byte, bool)

	// Field returns a View rooted at path, or false if not found.
	Field(path string) (View, bool)

	// IsObject reports whether the viewed value is a JSON object.
	IsObject() bool

	// IsArray reports whether the viewed value is a JSON array.
	IsArray() bool
}

// JSONInspector returns an Inspector that uses gjson for field access.
func JSONInspector() Inspector {
	return jsonInspector{}
}

type jsonInspector struct{}

func (jsonInspector) Inspect(raw []byte) (View, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return jsonView{res: gjson.ParseBytes(raw)}, nil
}

type jsonView struct {
	res gjson.Result
}

func (v jsonView) HasField(path string) bool {
	return v.res.Get(path).Exists()
}

func (v jsonView) GetString(path string) (string, bool) {
	r := v.res.Get(path)
	if !r.Exists() {
		return "", false
	}
	if r.Type != gjson.String {
		return "", false
	}
	return r.String(), true
}

func (v jsonView) GetBytes(path string) ([]byte, bool) {
	r := v.res.Get(path)
	if !r.Exists() {
		return nil, false
	}
	return []byte(r.Raw), true
}

func (v jsonView) Field(path string) (View, bool) {
	r := v.res.Get(path)
	if !r.Exists() {
		return nil, false
	}
	return jsonView{res: r}, true
}

func (v jsonView) IsObject() bool {
	return v.res.IsObject()
}

func (v jsonView) IsArray() bool {
	return v.res.IsArray()
}
