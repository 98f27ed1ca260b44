package engine

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/collidergen/pkg/scene"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpQuat struct {
	q mgl64.Quat
}

func (q *sexpQuat) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(quat %g %g %g %g)", q.q.V[0], q.q.V[1], q.q.V[2], q.q.W)
}
func (q *sexpQuat) Type() *zygo.RegisteredType { return nil }

// sexpMesh refers to a mesh already stored in the scene. Passing the same
// value to several nodes shares the mesh between them.
type sexpMesh struct {
	id   scene.MeshID
	name string
}

func (m *sexpMesh) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(mesh %q)", m.name)
}
func (m *sexpMesh) Type() *zygo.RegisteredType { return nil }

type sexpNode struct {
	id   scene.NodeID
	name string
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(node %q)", n.name)
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string and returns its
// name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toRotation accepts a quaternion, or a vec3 read as Euler angles in degrees.
func toRotation(s zygo.Sexp) (mgl64.Quat, error) {
	switch v := s.(type) {
	case *sexpQuat:
		return v.q, nil
	case *sexpVec3:
		return scene.Euler(v.vec[0], v.vec[1], v.vec[2]), nil
	}
	return mgl64.Quat{}, fmt.Errorf("expected quat or euler angles, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a vec3 or a single number for uniform scale.
func toScale(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("expected vec3 or number, got %T (%s)", s, s.SexpString(nil))
	}
	return mgl64.Vec3{f, f, f}, nil
}

func toMesh(s zygo.Sexp) (*sexpMesh, error) {
	if m, ok := s.(*sexpMesh); ok {
		return m, nil
	}
	return nil, fmt.Errorf("expected mesh, got %T (%s)", s, s.SexpString(nil))
}

func toNode(s zygo.Sexp) (*sexpNode, error) {
	if n, ok := s.(*sexpNode); ok {
		return n, nil
	}
	return nil, fmt.Errorf("expected node, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Scene builder
// ---------------------------------------------------------------------------

// builder accumulates the scene while builtins run. Nodes start detached and
// are attached by the node or scene form that lists them; anything still
// detached at the end hangs off the root.
type builder struct {
	scene    *scene.Scene
	declared bool
}

func newBuilder() *builder {
	return &builder{scene: scene.New(DefaultRootName)}
}

func (b *builder) attach(form string, parent scene.NodeID, children []zygo.Sexp) error {
	for i, c := range children {
		child, err := toNode(c)
		if err != nil {
			return fmt.Errorf("%s: child %d: %w", form, i+1, err)
		}
		if child.id == b.scene.Root() {
			return fmt.Errorf("%s: the scene root cannot be a child", form)
		}
		if n := b.scene.Node(child.id); n != nil && n.Parent != scene.NoNode {
			return fmt.Errorf("%s: child %q already has a parent", form, child.name)
		}
		if err := b.scene.Attach(child.id, parent); err != nil {
			return fmt.Errorf("%s: %w", form, err)
		}
	}
	return nil
}

func (b *builder) adoptOrphans() {
	root := b.scene.Root()
	for _, id := range b.scene.NodeIDs() {
		if id == root {
			continue
		}
		if n := b.scene.Node(id); n.Parent == scene.NoNode {
			_ = b.scene.Attach(id, root)
		}
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment. Source
// must go through preprocessSource first so keywords arrive as marked
// strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats(name, args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: mgl64.Vec3{v[0], v[1], v[2]}}, nil
	})

	// (euler 0 45 0), degrees
	env.AddFunction("euler", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats(name, args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpQuat{q: scene.Euler(v[0], v[1], v[2])}, nil
	})

	// (quat x y z w)
	env.AddFunction("quat", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := floats(name, args, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		q := mgl64.Quat{W: v[3], V: mgl64.Vec3{v[0], v[1], v[2]}}
		if q.Len() == 0 {
			return zygo.SexpNull, fmt.Errorf("quat: zero-length quaternion")
		}
		return &sexpQuat{q: q.Normalize()}, nil
	})

	// (mesh "name" :vertices (list (vec3 ..) ..) :triangles (list 0 1 2 ..))
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a name argument")
		}
		meshName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: name: %w", err)
		}
		m := &scene.Mesh{Name: meshName}

		if v, ok := pa.kw["vertices"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: vertices: %w", err)
			}
			for i, item := range items {
				vec, err := toVec3(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("mesh: vertex %d: %w", i, err)
				}
				m.Vertices = append(m.Vertices, vec)
			}
		}
		if v, ok := pa.kw["triangles"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("mesh: triangles: %w", err)
			}
			for i, item := range items {
				idx, err := toInt(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("mesh: index %d: %w", i, err)
				}
				if idx < 0 || int(idx) >= len(m.Vertices) {
					return zygo.SexpNull, fmt.Errorf("mesh: index %d: vertex %d out of range", i, idx)
				}
				m.Triangles = append(m.Triangles, uint32(idx))
			}
			if len(m.Triangles)%3 != 0 {
				return zygo.SexpNull, fmt.Errorf("mesh: %d indices is not a multiple of 3", len(m.Triangles))
			}
		}

		return &sexpMesh{id: b.scene.AddMesh(m), name: meshName}, nil
	})

	// (box-mesh "name" (vec3 sx sy sz) :center (vec3 ..))
	//
	// Registered as box_mesh; preprocessSource rewrites the hyphen.
	env.AddFunction("box_mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("box-mesh requires a name and a size")
		}
		meshName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-mesh: name: %w", err)
		}
		size, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box-mesh: size: %w", err)
		}
		var center mgl64.Vec3
		if v, ok := pa.kw["center"]; ok {
			if center, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("box-mesh: center: %w", err)
			}
		}
		id := b.scene.AddMesh(scene.BoxMesh(meshName, size, center))
		return &sexpMesh{id: id, name: meshName}, nil
	})

	// (node "name" :position v :rotation q :scale v :mesh m :renderer true child...)
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("node requires a name argument")
		}
		nodeName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: name: %w", err)
		}

		id := b.scene.AddNode(nodeName, scene.NoNode)
		n := b.scene.Node(id)

		if v, ok := pa.kw["position"]; ok {
			if n.Position, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: position: %w", nodeName, err)
			}
		}
		if v, ok := pa.kw["rotation"]; ok {
			if n.Rotation, err = toRotation(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: rotation: %w", nodeName, err)
			}
		}
		if v, ok := pa.kw["scale"]; ok {
			if n.Scale, err = toScale(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: scale: %w", nodeName, err)
			}
		}
		if v, ok := pa.kw["mesh"]; ok {
			m, err := toMesh(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: mesh: %w", nodeName, err)
			}
			b.scene.SetMesh(id, m.id)
		}
		if v, ok := pa.kw["renderer"]; ok {
			if n.Renderer, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node %q: renderer: %w", nodeName, err)
			}
		}

		if err := b.attach("node "+nodeName, id, pa.positional[1:]); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNode{id: id, name: nodeName}, nil
	})

	// (scene "root" child...)
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.declared {
			return zygo.SexpNull, fmt.Errorf("scene may only be declared once")
		}
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("scene requires a name argument")
		}
		rootName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scene: name: %w", err)
		}
		b.declared = true
		root := b.scene.Node(b.scene.Root())
		root.Name = rootName

		if err := b.attach("scene", root.ID, args[1:]); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNode{id: root.ID, name: rootName}, nil
	})
}

// floats converts exactly n numeric arguments.
func floats(form string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", form, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", form, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}
