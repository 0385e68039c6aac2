// Package scene holds the editor's project state: node metadata, per-node
// transforms, the parent/child hierarchy and the current selection.
// Transforms are world-space; the hierarchy only organizes nodes for display
// and never composes their placement.
package scene
