package sceneio

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/collidergen/pkg/scene"
)

// ToScene builds a scene from a document.
func (d *Document) ToScene() (*scene.Scene, error) {
	s := scene.New(d.Root.Name)
	meshes := make(map[string]scene.MeshID, len(d.Meshes))

	for i, md := range d.Meshes {
		m, err := md.toMesh()
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%q): %w", i, md.Name, err)
		}
		key := md.Key
		if key == "" {
			key = md.Name
		}
		if _, dup := meshes[key]; dup {
			return nil, fmt.Errorf("mesh %d: duplicate mesh key %q", i, key)
		}
		meshes[key] = s.AddMesh(m)
	}

	b := &docBuilder{scene: s, meshes: meshes}
	if err := b.fill(s.Root(), &d.Root, "root"); err != nil {
		return nil, err
	}
	return s, nil
}

func (md *MeshDoc) toMesh() (*scene.Mesh, error) {
	if md.Box != nil {
		if len(md.Vertices) > 0 || len(md.Triangles) > 0 {
			return nil, fmt.Errorf("box meshes cannot also list geometry")
		}
		size, err := vec3("size", md.Box.Size, mgl64.Vec3{})
		if err != nil {
			return nil, err
		}
		center, err := vec3("center", md.Box.Center, mgl64.Vec3{})
		if err != nil {
			return nil, err
		}
		return scene.BoxMesh(md.Name, size, center), nil
	}

	m := &scene.Mesh{Name: md.Name, Triangles: md.Triangles}
	for i, v := range md.Vertices {
		p, err := vec3("vertex "+strconv.Itoa(i), v, mgl64.Vec3{})
		if err != nil {
			return nil, err
		}
		m.Vertices = append(m.Vertices, p)
	}
	return m, nil
}

type docBuilder struct {
	scene  *scene.Scene
	meshes map[string]scene.MeshID
}

func (b *docBuilder) fill(id scene.NodeID, nd *NodeDoc, path string) error {
	n := b.scene.Node(id)
	var err error

	if n.Position, err = vec3("position", nd.Position, mgl64.Vec3{}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if n.Scale, err = vec3("scale", nd.Scale, mgl64.Vec3{1, 1, 1}); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if n.Rotation, err = rotation(nd); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if nd.Mesh != "" {
		mid, ok := b.meshes[nd.Mesh]
		if !ok {
			return fmt.Errorf("%s: unknown mesh %q", path, nd.Mesh)
		}
		b.scene.SetMesh(id, mid)
	}
	if nd.Renderer != nil {
		n.Renderer = *nd.Renderer
	}

	for i := range nd.Shapes {
		sh, err := b.shape(&nd.Shapes[i])
		if err != nil {
			return fmt.Errorf("%s: shape %d: %w", path, i, err)
		}
		b.scene.AddShape(id, sh)
	}

	for i := range nd.Children {
		cd := &nd.Children[i]
		child := b.scene.AddNode(cd.Name, id)
		if err := b.fill(child, cd, path+"/"+cd.Name); err != nil {
			return err
		}
	}
	return nil
}

func rotation(nd *NodeDoc) (mgl64.Quat, error) {
	switch {
	case len(nd.Rotation) > 0 && len(nd.Quaternion) > 0:
		return mgl64.Quat{}, fmt.Errorf("rotation and quaternion are mutually exclusive")
	case len(nd.Quaternion) > 0:
		if len(nd.Quaternion) != 4 {
			return mgl64.Quat{}, fmt.Errorf("quaternion: want 4 components, got %d", len(nd.Quaternion))
		}
		q := mgl64.Quat{W: nd.Quaternion[3], V: mgl64.Vec3{nd.Quaternion[0], nd.Quaternion[1], nd.Quaternion[2]}}
		if q.Len() == 0 {
			return mgl64.Quat{}, fmt.Errorf("quaternion: zero length")
		}
		return q.Normalize(), nil
	case len(nd.Rotation) > 0:
		e, err := vec3("rotation", nd.Rotation, mgl64.Vec3{})
		if err != nil {
			return mgl64.Quat{}, err
		}
		return scene.Euler(e[0], e[1], e[2]), nil
	}
	return mgl64.QuatIdent(), nil
}

func (b *docBuilder) shape(sd *ShapeDoc) (scene.Shape, error) {
	center, err := vec3("center", sd.Center, mgl64.Vec3{})
	if err != nil {
		return nil, err
	}
	switch sd.Type {
	case "box":
		size, err := vec3("size", sd.Size, mgl64.Vec3{1, 1, 1})
		if err != nil {
			return nil, err
		}
		return scene.BoxShape{Center: center, Size: size}, nil
	case "sphere":
		return scene.SphereShape{Center: center, Radius: sd.Radius}, nil
	case "capsule":
		dir, err := axis(sd.Direction)
		if err != nil {
			return nil, err
		}
		return scene.CapsuleShape{Center: center, Radius: sd.Radius, Height: sd.Height, Direction: dir}, nil
	case "mesh":
		mid := scene.NoMesh
		if sd.Mesh != "" {
			var ok bool
			if mid, ok = b.meshes[sd.Mesh]; !ok {
				return nil, fmt.Errorf("unknown mesh %q", sd.Mesh)
			}
		}
		return scene.MeshShape{Mesh: mid, Convex: sd.Convex}, nil
	}
	return nil, fmt.Errorf("unknown shape type %q", sd.Type)
}

func axis(s string) (scene.Axis, error) {
	switch s {
	case "x":
		return scene.AxisX, nil
	case "", "y":
		return scene.AxisY, nil
	case "z":
		return scene.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid direction %q, expected x, y, or z", s)
}

// vec3 converts an optional 3-component list, returning def when empty.
func vec3(field string, v []float64, def mgl64.Vec3) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(v))
}

// FromScene captures the live part of a scene as a document. Only meshes
// still referenced by a live node or proxy are kept.
func FromScene(s *scene.Scene) *Document {
	e := &docEncoder{scene: s, keys: map[scene.MeshID]string{}}
	e.collectMeshes(s.Root())
	return &Document{
		Meshes: e.meshes,
		Root:   e.node(s.Root()),
	}
}

type docEncoder struct {
	scene  *scene.Scene
	keys   map[scene.MeshID]string
	meshes []MeshDoc
}

func (e *docEncoder) collectMeshes(root scene.NodeID) {
	used := map[scene.MeshID]bool{}
	e.scene.Walk(root, func(n *scene.Node) bool {
		used[n.Mesh] = true
		for _, sh := range n.Shapes {
			if ms, ok := sh.(scene.MeshShape); ok {
				used[ms.Mesh] = true
			}
		}
		return true
	})

	names := map[string]int{}
	for id := scene.MeshID(0); int(id) < e.scene.MeshCount(); id++ {
		if used[id] {
			names[e.scene.Mesh(id).Name]++
		}
	}
	for id := scene.MeshID(0); int(id) < e.scene.MeshCount(); id++ {
		if !used[id] {
			continue
		}
		m := e.scene.Mesh(id)
		md := MeshDoc{Name: m.Name, Triangles: m.Triangles}
		key := m.Name
		// An empty key reads back as "no mesh", so unnamed meshes always get one.
		if names[m.Name] > 1 || m.Name == "" {
			key = m.Name + "#" + strconv.Itoa(int(id))
			md.Key = key
		}
		for _, v := range m.Vertices {
			md.Vertices = append(md.Vertices, []float64{v[0], v[1], v[2]})
		}
		e.keys[id] = key
		e.meshes = append(e.meshes, md)
	}
}

func (e *docEncoder) node(id scene.NodeID) NodeDoc {
	n := e.scene.Node(id)
	nd := NodeDoc{Name: n.Name}

	if n.Position != (mgl64.Vec3{}) {
		nd.Position = append([]float64(nil), n.Position[:]...)
	}
	if n.Scale != (mgl64.Vec3{1, 1, 1}) {
		nd.Scale = append([]float64(nil), n.Scale[:]...)
	}
	if q := n.Rotation; q != mgl64.QuatIdent() {
		nd.Quaternion = []float64{q.V[0], q.V[1], q.V[2], q.W}
	}
	if n.HasMesh() {
		nd.Mesh = e.keys[n.Mesh]
	}
	// Renderer is implied by a mesh; spell it out only when it differs.
	if n.Renderer != n.HasMesh() {
		r := n.Renderer
		nd.Renderer = &r
	}

	for _, sh := range n.Shapes {
		nd.Shapes = append(nd.Shapes, e.shape(sh))
	}
	for _, c := range e.scene.Children(id) {
		nd.Children = append(nd.Children, e.node(c))
	}
	return nd
}

func (e *docEncoder) shape(sh scene.Shape) ShapeDoc {
	sd := ShapeDoc{Type: sh.Kind().String()}
	if c, ok := scene.ShapeCenter(sh); ok && c != (mgl64.Vec3{}) {
		sd.Center = c[:]
	}
	switch v := sh.(type) {
	case scene.BoxShape:
		sd.Size = v.Size[:]
	case scene.SphereShape:
		sd.Radius = v.Radius
	case scene.CapsuleShape:
		sd.Radius = v.Radius
		sd.Height = v.Height
		sd.Direction = v.Direction.String()
	case scene.MeshShape:
		if v.Mesh != scene.NoMesh {
			sd.Mesh = e.keys[v.Mesh]
		}
		sd.Convex = v.Convex
	}
	return sd
}
