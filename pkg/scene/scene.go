package scene

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

// Scene is an imported model: a tree of nodes under a single root plus the
// meshes they reference. It is not safe for concurrent use.
type Scene struct {
	nodes  []*Node // index is NodeID; nil once destroyed
	meshes []*Mesh // index is MeshID
	root   NodeID
	alive  int
}

// New creates a scene holding only a root node with the given name.
func New(rootName string) *Scene {
	s := &Scene{}
	s.root = s.AddNode(rootName, NoNode)
	return s
}

// Root returns the ID of the root node.
func (s *Scene) Root() NodeID {
	return s.root
}

// AddNode creates a node with an identity transform under parent. A parent
// of NoNode leaves the node detached until Attach is called.
func (s *Scene) AddNode(name string, parent NodeID) NodeID {
	id := NodeID(len(s.nodes))
	n := &Node{
		ID:       id,
		Name:     name,
		Parent:   NoNode,
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
		Mesh:     NoMesh,
	}
	s.nodes = append(s.nodes, n)
	s.alive++
	if parent != NoNode {
		// A fresh node has no descendants, so attaching cannot form a cycle.
		_ = s.Attach(id, parent)
	}
	return id
}

// Attach moves child under parent, appending it to parent's children.
func (s *Scene) Attach(child, parent NodeID) error {
	c := s.Node(child)
	if c == nil {
		return fmt.Errorf("scene: attach: no node %d", child)
	}
	p := s.Node(parent)
	if p == nil {
		return fmt.Errorf("scene: attach %q: no parent node %d", c.Name, parent)
	}
	for cur := parent; cur != NoNode; cur = s.nodes[cur].Parent {
		if cur == child {
			return fmt.Errorf("scene: attach %q under %q would create a cycle", c.Name, p.Name)
		}
	}
	s.detach(c)
	c.Parent = parent
	p.Children = append(p.Children, child)
	return nil
}

func (s *Scene) detach(n *Node) {
	if p := s.Node(n.Parent); p != nil {
		p.Children = slices.DeleteFunc(p.Children, func(id NodeID) bool { return id == n.ID })
	}
	n.Parent = NoNode
}

// Node returns the node with the given ID, or nil if it does not exist or
// has been destroyed.
func (s *Scene) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id]
}

// Alive reports whether id addresses a node that has not been destroyed.
func (s *Scene) Alive(id NodeID) bool {
	return s.Node(id) != nil
}

// Children returns a copy of the node's child IDs in order.
func (s *Scene) Children(id NodeID) []NodeID {
	n := s.Node(id)
	if n == nil {
		return nil
	}
	return slices.Clone(n.Children)
}

// Lookup returns the first live node with the given name, or nil.
func (s *Scene) Lookup(name string) *Node {
	for _, n := range s.nodes {
		if n != nil && n.Name == name {
			return n
		}
	}
	return nil
}

// Walk visits id and its descendants depth-first, parents before children.
// Returning false from fn skips the node's children.
func (s *Scene) Walk(id NodeID, fn func(n *Node) bool) {
	n := s.Node(id)
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range s.Children(id) {
		s.Walk(c, fn)
	}
}

// Destroy removes the node and its whole subtree. Their IDs stay reserved
// and resolve to nil afterwards. Destroy reports false if the node was
// already gone.
func (s *Scene) Destroy(id NodeID) bool {
	n := s.Node(id)
	if n == nil {
		return false
	}
	s.detach(n)
	s.invalidate(id)
	return true
}

func (s *Scene) invalidate(id NodeID) {
	n := s.nodes[id]
	for _, c := range n.Children {
		if s.Node(c) != nil {
			s.invalidate(c)
		}
	}
	s.nodes[id] = nil
	s.alive--
}

// NodeCount returns the number of live nodes.
func (s *Scene) NodeCount() int {
	return s.alive
}

// NodeIDs returns the IDs of all live nodes in creation order.
func (s *Scene) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, s.alive)
	for i, n := range s.nodes {
		if n != nil {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// AddMesh stores m and returns its ID.
func (s *Scene) AddMesh(m *Mesh) MeshID {
	s.meshes = append(s.meshes, m)
	return MeshID(len(s.meshes) - 1)
}

// Mesh returns the mesh with the given ID, or nil.
func (s *Scene) Mesh(id MeshID) *Mesh {
	if id < 0 || int(id) >= len(s.meshes) {
		return nil
	}
	return s.meshes[id]
}

// MeshCount returns the number of stored meshes, referenced or not.
func (s *Scene) MeshCount() int {
	return len(s.meshes)
}

// SetMesh makes the node reference mesh and marks it rendered.
func (s *Scene) SetMesh(id NodeID, mesh MeshID) {
	if n := s.Node(id); n != nil {
		n.Mesh = mesh
		n.Renderer = mesh != NoMesh
	}
}

// RemoveMesh drops the node's geometry reference and its renderer. The
// mesh itself stays in the scene for other users.
func (s *Scene) RemoveMesh(id NodeID) {
	if n := s.Node(id); n != nil {
		n.Mesh = NoMesh
		n.Renderer = false
	}
}

// AddShape appends a shape proxy to the node.
func (s *Scene) AddShape(id NodeID, sh Shape) {
	if n := s.Node(id); n != nil {
		n.Shapes = append(n.Shapes, sh)
	}
}
