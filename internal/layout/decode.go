package layout

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/victorgalvez56/nvim-voice/internal/geometry"
	"github.com/victorgalvez56/nvim-voice/internal/keycode"
)

// Decode failures. Every error returned by Decode and FromValue wraps
// ErrNoLayout and exactly one of the reasons below.
var (
	ErrNoLayout        = errors.New("no layout")
	ErrInvalidDocument = errors.New("invalid layout document")
	ErrMissingGeometry = errors.New("missing geometry")
	ErrUnknownGeometry = geometry.ErrUnknownGeometry
	ErrMissingLayers   = errors.New("missing layers")
)

// DefaultTitle names layouts whose document carries no title.
const DefaultTitle = "Unknown"

const schemaURL = "https://nvim-voice.dev/schema/keymapp-layout.schema.json"

//go:embed schema/keymapp-layout.schema.json
var schemaData []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// Decode builds a KeyboardLayout from a Keymapp revision document.
//
// The required structure (layout, geometry, revision.layers as an array of
// objects) is validated first and any mismatch fails the whole decode.
// Optional fields are read leniently: a field of the wrong type is treated
// as absent, a layer whose keys are not a list of objects has no keys, and
// placeholder tap or hold codes are dropped.
func Decode(data []byte) (*KeyboardLayout, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, noLayout(ErrInvalidDocument, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile layout schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, noLayout(classify(instance), err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, noLayout(ErrInvalidDocument, err)
	}

	g, err := geometry.Parse(doc.Layout.Geometry)
	if err != nil {
		return nil, noLayout(ErrUnknownGeometry, err)
	}

	out := &KeyboardLayout{
		Title:    DefaultTitle,
		Geometry: g,
		Layers:   make([]KeyboardLayer, 0, len(doc.Layout.Revision.Layers)),
	}
	if doc.Layout.Title.set {
		out.Title = doc.Layout.Title.v
	}
	for _, ld := range doc.Layout.Revision.Layers {
		out.Layers = append(out.Layers, ld.layer())
	}
	return out, nil
}

// FromValue builds a KeyboardLayout from an already-parsed document, such as
// the result of json.Unmarshal into an any.
func FromValue(v any) (*KeyboardLayout, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, noLayout(ErrInvalidDocument, err)
	}
	return Decode(data)
}

func noLayout(reason, detail error) error {
	return fmt.Errorf("%w: %w: %v", ErrNoLayout, reason, detail)
}

// classify names the first required field the instance gets wrong.
func classify(instance any) error {
	root, ok := instance.(map[string]any)
	if !ok {
		return ErrInvalidDocument
	}
	l, ok := root["layout"].(map[string]any)
	if !ok {
		return ErrInvalidDocument
	}
	switch g := l["geometry"].(type) {
	case nil:
		return ErrMissingGeometry
	case string:
		if _, err := geometry.Parse(g); err != nil {
			return ErrUnknownGeometry
		}
	default:
		return ErrUnknownGeometry
	}
	rev, ok := l["revision"].(map[string]any)
	if !ok {
		return ErrMissingLayers
	}
	layers, ok := rev["layers"].([]any)
	if !ok {
		return ErrMissingLayers
	}
	for _, layer := range layers {
		if _, ok := layer.(map[string]any); !ok {
			return ErrMissingLayers
		}
	}
	return ErrInvalidDocument
}

// Wire shapes. Required fields use plain types since the schema has
// already vouched for them. Optional fields swallow type mismatches.

type document struct {
	Layout struct {
		Title    optString `json:"title"`
		Geometry string    `json:"geometry"`
		Revision struct {
			Layers []layerDoc `json:"layers"`
		} `json:"revision"`
	} `json:"layout"`
}

type layerDoc struct {
	Title optString `json:"title"`
	Keys  optKeys   `json:"keys"`
}

func (d layerDoc) layer() KeyboardLayer {
	keys := make([]KeyAction, 0, len(d.Keys))
	for _, k := range d.Keys {
		keys = append(keys, k.action())
	}
	return KeyboardLayer{Title: d.Title.v, Keys: keys}
}

type keyDoc struct {
	Tap         optCode   `json:"tap"`
	Hold        optCode   `json:"hold"`
	CustomLabel optString `json:"customLabel"`
}

func (d keyDoc) action() KeyAction {
	var a KeyAction
	a.Tap = d.Tap.keyCode()
	a.Hold = d.Hold.keyCode()
	switch {
	case d.Hold.Layer.set:
		a.HoldLayer = &d.Hold.Layer.v
	case d.Tap.Layer.set:
		a.HoldLayer = &d.Tap.Layer.v
	}
	if d.CustomLabel.set {
		a.CustomLabel = &d.CustomLabel.v
	}
	return a
}

type optCode struct {
	Code  optString `json:"code"`
	Layer optInt    `json:"layer"`
}

func (c *optCode) UnmarshalJSON(b []byte) error {
	if !isObject(b) {
		return nil
	}
	type plain optCode
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return nil
	}
	*c = optCode(p)
	return nil
}

// keyCode returns nil for a missing or placeholder code.
func (c optCode) keyCode() *KeyCode {
	if !c.Code.set || keycode.IsPlaceholder(c.Code.v) {
		return nil
	}
	kc := NewKeyCode(c.Code.v)
	return &kc
}

type optString struct {
	v   string
	set bool
}

func (s *optString) UnmarshalJSON(b []byte) error {
	var v string
	if isNull(b) || json.Unmarshal(b, &v) != nil {
		return nil
	}
	*s = optString{v: v, set: true}
	return nil
}

type optInt struct {
	v   int
	set bool
}

func (n *optInt) UnmarshalJSON(b []byte) error {
	var v int
	if isNull(b) || json.Unmarshal(b, &v) != nil {
		return nil
	}
	*n = optInt{v: v, set: true}
	return nil
}

// optKeys is empty unless the value is an array whose every element is an
// object.
type optKeys []keyDoc

func (k *optKeys) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if json.Unmarshal(b, &raw) != nil {
		return nil
	}
	keys := make([]keyDoc, 0, len(raw))
	for _, r := range raw {
		if !isObject(r) {
			return nil
		}
		var kd keyDoc
		if json.Unmarshal(r, &kd) != nil {
			return nil
		}
		keys = append(keys, kd)
	}
	*k = keys
	return nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func isObject(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}
