package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Model is a block model: a set of axis-aligned cuboid elements measured in
// sixteenths of a block, with the block occupying [0, 16] on every axis.
type Model struct {
	Name     string    `json:"name"`
	Parent   string    `json:"parent,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}

// Element is one cuboid of a model.
type Element struct {
	From     [3]float64       `json:"from"`
	To       [3]float64       `json:"to"`
	Rotation *ElementRotation `json:"rotation,omitempty"`
}

// ElementRotation turns an element about Origin by Angle degrees.
type ElementRotation struct {
	Origin [3]float64 `json:"origin"`
	Axis   string     `json:"axis"`
	Angle  float64    `json:"angle"`
}

var ErrInvalidModel = errors.New("invalid block model")

// ParseModel decodes a JSON block model. name is used when the document has
// no name of its own.
func ParseModel(r io.Reader, name string) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("provider: parse model %q: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// LoadModels registers every *.json model at the top of fsys, named after
// its file.
func (p *Provider) LoadModels(fsys fs.FS) (int, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return 0, err
	}
	for _, n := range names {
		f, err := fsys.Open(n)
		if err != nil {
			return 0, err
		}
		m, err := ParseModel(f, strings.TrimSuffix(path.Base(n), ".json"))
		f.Close()
		if err != nil {
			return 0, err
		}
		p.models[m.Name] = m
	}
	return len(names), nil
}

// Validate checks element extents and rotation axes.
func (m Model) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("provider: model without name: %w", ErrInvalidModel)
	}
	for i, e := range m.Elements {
		for a := 0; a < 3; a++ {
			if e.To[a] < e.From[a] {
				return fmt.Errorf("provider: model %q element %d: to < from on axis %d: %w", m.Name, i, a, ErrInvalidModel)
			}
		}
		if e.Rotation != nil {
			if _, ok := rotationAxis(e.Rotation.Axis); !ok {
				return fmt.Errorf("provider: model %q element %d: unknown rotation axis %q: %w", m.Name, i, e.Rotation.Axis, ErrInvalidModel)
			}
		}
	}
	return nil
}

func sixteenths(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0] / 16, Y: a[1] / 16, Z: a[2] / 16}
}

// Size returns the element's extent in block units.
func (e Element) Size() v3.Vec {
	return sixteenths(e.To).Sub(sixteenths(e.From))
}

// Center returns the element's midpoint relative to the block centre.
func (e Element) Center() v3.Vec {
	half := v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	return sixteenths(e.From).Add(sixteenths(e.To)).MulScalar(0.5).Sub(half)
}

// Placement returns the element's position and orientation relative to the
// block centre. Unrotated elements have a nil orientation.
func (e Element) Placement() (v3.Vec, *sdf.M44) {
	c := e.Center()
	if e.Rotation == nil || e.Rotation.Angle == 0 {
		return c, nil
	}
	axis, _ := rotationAxis(e.Rotation.Axis)
	rot := sdf.Rotate3d(axis, e.Rotation.Angle*math.Pi/180)
	origin := sixteenths(e.Rotation.Origin).Sub(v3.Vec{X: 0.5, Y: 0.5, Z: 0.5})
	return origin.Add(rot.MulPosition(c.Sub(origin))), &rot
}

// modelName reduces a namespaced reference like "minecraft:block/slab" to
// the registered name "slab".
func modelName(ref string) string {
	return path.Base(strings.TrimPrefix(ref, "minecraft:"))
}

func rotationAxis(s string) (v3.Vec, bool) {
	switch s {
	case "x":
		return v3.Vec{X: 1}, true
	case "y":
		return v3.Vec{Y: 1}, true
	case "z":
		return v3.Vec{Z: 1}, true
	}
	return v3.Vec{}, false
}
