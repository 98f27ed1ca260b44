package collider

import (
	"strings"

	"github.com/chazu/collidergen/pkg/scene"
)

// Convention is a naming-convention marker selecting which proxy to build.
type Convention int

const (
	ConventionNone    Convention = iota
	ConventionBox                // ubx_
	ConventionCapsule            // ucp_
	ConventionSphere             // usp_
	ConventionConvex             // ucx_
	ConventionMesh               // umc_
)

// rule describes what a convention generates.
type rule struct {
	prefix        string
	shape         scene.ShapeKind
	keepIfRotated bool // rotated nodes keep the proxy in place
	transformMesh bool // bake the node transform into its mesh first
	convex        bool
}

var rules = map[Convention]rule{
	ConventionBox:     {prefix: "ubx", shape: scene.ShapeBox, keepIfRotated: true},
	ConventionCapsule: {prefix: "ucp", shape: scene.ShapeCapsule, keepIfRotated: true},
	ConventionSphere:  {prefix: "usp", shape: scene.ShapeSphere},
	ConventionConvex:  {prefix: "ucx", shape: scene.ShapeMesh, transformMesh: true, convex: true},
	ConventionMesh:    {prefix: "umc", shape: scene.ShapeMesh, transformMesh: true},
}

// detectOrder is the fixed priority in which conventions are tested.
var detectOrder = []Convention{
	ConventionBox,
	ConventionCapsule,
	ConventionSphere,
	ConventionConvex,
	ConventionMesh,
}

// Conventions returns every convention in detection order.
func Conventions() []Convention {
	return append([]Convention(nil), detectOrder...)
}

// Prefix returns the marker without its trailing underscore, or "" for
// ConventionNone.
func (c Convention) Prefix() string {
	return rules[c].prefix
}

func (c Convention) String() string {
	if r, ok := rules[c]; ok {
		return r.prefix
	}
	return "none"
}

// Shape returns the kind of proxy the convention generates.
func (c Convention) Shape() scene.ShapeKind {
	return rules[c].shape
}

// KeepIfRotated reports whether a rotated node keeps its proxy in place
// instead of being merged onto its parent.
func (c Convention) KeepIfRotated() bool {
	return rules[c].keepIfRotated
}

// TransformsMesh reports whether the node's mesh is rebased into parent
// space before the proxy is built.
func (c Convention) TransformsMesh() bool {
	return rules[c].transformMesh
}

// Convex reports whether generated mesh colliders are convex.
func (c Convention) Convex() bool {
	return rules[c].convex
}

// Detect classifies a node. Conventions are tried in fixed order; for each
// one the mesh name is checked before the node name.
func Detect(s *scene.Scene, id scene.NodeID) (Convention, bool) {
	n := s.Node(id)
	if n == nil {
		return ConventionNone, false
	}
	var meshName string
	if m := s.Mesh(n.Mesh); m != nil {
		meshName = strings.ToLower(m.Name)
	}
	name := strings.ToLower(n.Name)

	for _, c := range detectOrder {
		marker := c.Prefix() + "_"
		if strings.HasPrefix(meshName, marker) || strings.HasPrefix(name, marker) {
			return c, true
		}
	}
	return ConventionNone, false
}
