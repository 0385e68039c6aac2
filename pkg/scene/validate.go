package scene

import (
	"fmt"
	"slices"

	"github.com/ErikKalkoken/go-set"
)

// ValidationSeverity indicates whether a finding means the hierarchy is
// corrupt or only unusual.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // the hierarchy invariants are broken
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID // zero for graph-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate checks the graph's structural invariants and returns every
// finding. An empty result means the graph is consistent. It never mutates
// the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateKeys(g)...)
	errs = append(errs, validateLinks(g)...)
	errs = append(errs, validateAcyclic(g)...)
	errs = append(errs, validateSelection(g)...)
	errs = append(errs, validateScales(g)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	return slices.ContainsFunc(errs, func(e ValidationError) bool {
		return e.Severity == SeverityError
	})
}

// validateKeys checks that metadata and transforms are keyed identically.
func validateKeys(g *Graph) []ValidationError {
	var errs []ValidationError
	for id, n := range g.nodes {
		if n.UUID != id {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("stored under %s but carries id %s", id.Short(), n.UUID.Short()),
				Severity: SeverityError,
			})
		}
		if _, ok := g.transforms[id]; !ok {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "node has no transform",
				Severity: SeverityError,
			})
		}
	}
	for id := range g.transforms {
		if _, ok := g.nodes[id]; !ok {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "transform has no node",
				Severity: SeverityError,
			})
		}
	}
	if len(g.order) != len(g.nodes) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("insertion order has %d entries for %d nodes", len(g.order), len(g.nodes)),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateLinks checks that parent and children links agree in both
// directions and that no child list repeats an id.
func validateLinks(g *Graph) []ValidationError {
	var errs []ValidationError
	for id, n := range g.nodes {
		if !n.Parent.IsZero() {
			p, ok := g.nodes[n.Parent]
			switch {
			case !ok:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("parent %s does not exist", n.Parent.Short()),
					Severity: SeverityError,
				})
			case !p.HasChild(id):
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("not listed in children of parent %s", n.Parent.Short()),
					Severity: SeverityError,
				})
			}
		}
		seen := set.Of[NodeID]()
		for _, c := range n.Children {
			if seen.Contains(c) {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child %s listed more than once", c.Short()),
					Severity: SeverityError,
				})
				continue
			}
			seen.Add(c)
			child, ok := g.nodes[c]
			if !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child %s does not exist", c.Short()),
					Severity: SeverityError,
				})
				continue
			}
			if child.Parent != id {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child %s has parent %q", c.Short(), child.Parent.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateAcyclic walks the children edges with 3-colour marking. Reaching a
// gray node means the current path loops back on itself.
func validateAcyclic(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)
	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is its own ancestor", id.Short()),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		n, ok := g.nodes[id]
		if !ok {
			color[id] = black
			return false
		}
		for _, c := range n.Children {
			if visit(c) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

func validateSelection(g *Graph) []ValidationError {
	if g.selected.IsZero() {
		return nil
	}
	if _, ok := g.nodes[g.selected]; !ok {
		return []ValidationError{{
			NodeID:   g.selected,
			Message:  "selection refers to a missing node",
			Severity: SeverityError,
		}}
	}
	return nil
}

// validateScales flags transforms whose scale is not an allowed tier. The
// graph does not enforce tiers on write, so this is advisory.
func validateScales(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, id := range g.order {
		n, ok := g.nodes[id]
		if !ok {
			continue
		}
		tr := g.transforms[id]
		if !IsTier(n.Type, tr.Scale) {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("scale %g is not a %s tier", tr.Scale, n.Type),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
