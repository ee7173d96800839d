// Package graph provides the base abstraction every model layer is built on:
// a named computation-graph node whose output is computed once and memoized.
package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/23skdu/longbow-bowyer/internal/engine"
)

// Layer is the compute hook a concrete layer implements. Compute runs at
// most once per owning Node.
type Layer interface {
	Compute(inputs ...engine.Tensor) engine.Tensor
}

// Node pairs a Layer with a scope name and a write-once output slot. The
// graph is declared once and fed data once per instance; sharing a Node
// reference anywhere in the tree yields a single execution.
type Node struct {
	name  string
	kind  string
	layer Layer
	out   engine.Tensor
}

func New(name string, layer Layer) *Node {
	return &Node{
		name:  name,
		kind:  kindOf(layer),
		layer: layer,
	}
}

// Name returns the node's scope path.
func (n *Node) Name() string {
	return n.name
}

// Evaluate computes the node output on the first call and returns the
// memoized tensor on every later call, regardless of the arguments passed.
func (n *Node) Evaluate(inputs ...engine.Tensor) engine.Tensor {
	if n.out == nil {
		start := time.Now()
		n.out = n.layer.Compute(inputs...)
		evalDuration.WithLabelValues(n.kind).Observe(time.Since(start).Seconds())
	}
	return n.out
}

// Scope joins a parent scope path with a child segment. Scope paths key
// engine parameters and must be unique per component instance.
func Scope(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func kindOf(l Layer) string {
	kind := fmt.Sprintf("%T", l)
	if i := strings.LastIndexByte(kind, '.'); i >= 0 {
		kind = kind[i+1:]
	}
	return kind
}
