package scene

import (
	"strings"
	"testing"
)

// hasError reports whether errs contains an error-severity finding whose
// message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func buildTree(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	t.Helper()
	g := New()
	a := addNamed(t, g, "a", ZeroID)
	b := addNamed(t, g, "b", a)
	c := addNamed(t, g, "c", b)
	return g, a, b, c
}

func TestValidateClean(t *testing.T) {
	g, _, _, _ := buildTree(t)
	if errs := Validate(g); len(errs) != 0 {
		t.Fatalf("expected no findings, got %v", errs)
	}
}

func TestValidateCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(g *Graph, a, b, c NodeID)
		want    string
	}{
		{"cycle", func(g *Graph, a, b, c NodeID) {
			g.nodes[c].Children = []NodeID{a}
			g.nodes[a].Parent = c
		}, "cycle detected"},
		{"missing transform", func(g *Graph, a, b, c NodeID) {
			delete(g.transforms, b)
		}, "no transform"},
		{"orphan transform", func(g *Graph, a, b, c NodeID) {
			g.transforms["ghost"] = DefaultTransform()
		}, "transform has no node"},
		{"parent missing child", func(g *Graph, a, b, c NodeID) {
			g.nodes[a].Children = nil
		}, "not listed in children"},
		{"duplicate child", func(g *Graph, a, b, c NodeID) {
			g.nodes[a].Children = []NodeID{b, b}
		}, "more than once"},
		{"dangling child", func(g *Graph, a, b, c NodeID) {
			g.nodes[a].Children = append(g.nodes[a].Children, "ghost")
		}, "does not exist"},
		{"child points elsewhere", func(g *Graph, a, b, c NodeID) {
			g.nodes[a].Children = append(g.nodes[a].Children, c)
		}, "has parent"},
		{"dangling selection", func(g *Graph, a, b, c NodeID) {
			g.selected = "ghost"
		}, "missing node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, a, b, c := buildTree(t)
			tt.corrupt(g, a, b, c)
			errs := Validate(g)
			if !hasError(errs, tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, errs)
			}
			if !HasErrors(errs) {
				t.Error("HasErrors should be true")
			}
		})
	}
}

func TestValidateScaleWarning(t *testing.T) {
	g := New()
	n := NewSceneNode("odd", NodeItem)
	tr := DefaultTransform() // solid block tier, not an item tier
	g.AddNode(n, tr)

	errs := Validate(g)
	if len(errs) != 1 || errs[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning, got %v", errs)
	}
	if HasErrors(errs) {
		t.Error("warnings alone should not count as errors")
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{NodeID: "0123456789", Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != "[error] node 01234567: bad" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "graph", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] graph" {
		t.Errorf("Error() = %q", got)
	}
}
