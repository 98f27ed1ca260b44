package collider

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/collidergen/pkg/scene"
)

// DefaultRotationTolerance is the angle in degrees below which a node is
// treated as unrotated.
const DefaultRotationTolerance = 0.01

// Toggle reports whether generation is switched on. The prefs store
// satisfies it.
type Toggle interface {
	Enabled() bool
}

// Generator runs the naming-convention pass over imported models.
type Generator struct {
	// Toggle gates PostprocessModel. A nil Toggle disables it.
	Toggle Toggle
	// RotationTolerance in degrees. Zero means DefaultRotationTolerance.
	RotationTolerance float64
	Logger            *slog.Logger
}

// NewGenerator returns a generator gated by toggle.
func NewGenerator(toggle Toggle, logger *slog.Logger) *Generator {
	return &Generator{Toggle: toggle, Logger: logger}
}

// HasRotation reports whether q differs from the identity rotation by more
// than tolerance degrees.
func HasRotation(q mgl64.Quat, tolerance float64) bool {
	return scene.AngleBetween(q, mgl64.QuatIdent()) > tolerance
}

// Process converts every marked node below root. The root itself is never
// classified. Input that does not follow the convention is left alone; the
// pass never fails.
func Process(s *scene.Scene, root scene.NodeID) Report {
	return (&Generator{}).Process(s, root)
}

// PostprocessModel is the import hook: it processes the whole scene when the
// toggle is enabled and does nothing otherwise.
func (g *Generator) PostprocessModel(s *scene.Scene) Report {
	if g.Toggle == nil || !g.Toggle.Enabled() {
		g.logger().Debug("collider generation disabled")
		return Report{}
	}
	return g.Process(s, s.Root())
}

// Process runs the pass below root with the generator's settings.
func (g *Generator) Process(s *scene.Scene, root scene.NodeID) Report {
	p := &pass{
		scene:     s,
		tolerance: g.tolerance(),
		log:       g.logger(),
	}
	if s.Node(root) == nil {
		return p.report
	}

	for _, child := range s.Children(root) {
		p.visit(child)
	}

	// Reverse order destroys ancestors before descendants; descendants are
	// then already gone and skipped.
	for i := len(p.deleted) - 1; i >= 0; i-- {
		id := p.deleted[i]
		if !s.Alive(id) {
			continue
		}
		if s.Destroy(id) {
			p.report.Destroyed++
		}
	}

	p.log.Info("collider pass complete",
		"merged", p.report.Count(ActionMerged),
		"kept", p.report.Count(ActionKept),
		"destroyed", p.report.Destroyed)
	return p.report
}

func (g *Generator) tolerance() float64 {
	if g.RotationTolerance > 0 {
		return g.RotationTolerance
	}
	return DefaultRotationTolerance
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// pass holds the state of one Process call.
type pass struct {
	scene     *scene.Scene
	tolerance float64
	log       *slog.Logger
	deleted   []scene.NodeID
	report    Report
}

// visit handles children first so that a marked node's subtree is fully
// converted before the node itself is merged or kept.
func (p *pass) visit(id scene.NodeID) {
	for _, child := range p.scene.Children(id) {
		p.visit(child)
	}

	conv, ok := Detect(p.scene, id)
	if !ok {
		return
	}
	n := p.scene.Node(id)
	if n == nil || !p.scene.Alive(n.Parent) {
		return
	}

	rewritten := false
	if conv.TransformsMesh() {
		rewritten = p.transformSharedMesh(n)
	}

	ev := Event{
		Node:          n.Name,
		NodeID:        id,
		Convention:    conv,
		MeshRewritten: rewritten,
	}
	if conv.KeepIfRotated() && HasRotation(n.Rotation, p.tolerance) {
		ev.Action = ActionKept
		ev.Target = id
		ev.Shape = p.keep(n, conv)
	} else {
		ev.Action = ActionMerged
		ev.Target = n.Parent
		ev.Shape = p.merge(n, conv)
	}
	ev.TargetName = p.scene.Node(ev.Target).Name
	p.report.Events = append(p.report.Events, ev)

	p.log.Debug("collider generated",
		"node", ev.Node,
		"convention", conv.String(),
		"action", ev.Action.String(),
		"target", ev.TargetName)
}

// newShape fits a proxy of the convention's kind to the node.
func (p *pass) newShape(n *scene.Node, conv Convention) scene.Shape {
	sh := p.scene.FitShape(conv.Shape(), n.ID)
	if ms, ok := sh.(scene.MeshShape); ok {
		ms.Convex = conv.Convex()
		sh = ms
	}
	return sh
}

// merge attaches the proxy to the node, copies it onto the parent with the
// center moved into parent space, and queues the node for deletion. The
// copy is what survives.
func (p *pass) merge(n *scene.Node, conv Convention) scene.Shape {
	sh := p.newShape(n, conv)
	p.scene.AddShape(n.ID, sh)

	moved := sh
	if c, ok := scene.ShapeCenter(sh); ok {
		world := p.scene.TransformPoint(n.ID, c)
		moved = scene.WithCenter(sh, p.scene.InverseTransformPoint(n.Parent, world))
	}
	p.scene.AddShape(n.Parent, moved)
	p.deleted = append(p.deleted, n.ID)
	return moved
}

// keep attaches the proxy in place and strips the node's render geometry.
func (p *pass) keep(n *scene.Node, conv Convention) scene.Shape {
	sh := p.newShape(n, conv)
	p.scene.AddShape(n.ID, sh)
	p.scene.RemoveMesh(n.ID)
	return sh
}

// transformSharedMesh rewrites the node's mesh vertices from node space into
// parent space. The mesh is shared, so every node referencing it sees the
// change; a mesh referenced by several marked nodes is rewritten once per
// node.
func (p *pass) transformSharedMesh(n *scene.Node) bool {
	m := p.scene.Mesh(n.Mesh)
	if m == nil {
		return false
	}
	toParent := p.scene.WorldMatrix(n.Parent).Inv().Mul4(p.scene.WorldMatrix(n.ID))
	for i, v := range m.Vertices {
		m.Vertices[i] = mgl64.TransformCoordinate(v, toParent)
	}
	return true
}
