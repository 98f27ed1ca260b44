package scene

import "fmt"

// ValidationSeverity indicates whether a finding makes the scene unusable or
// is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // scene is inconsistent
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
	Node     NodeID // NoNode for scene-level findings
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Node == NoNode {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %d: %s", e.Severity, e.Node, e.Message)
}

// Validate runs the structural checks a loader applies before handing a
// scene to the import pipeline. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateRoot(s)...)
	errs = append(errs, validateLinks(s)...)
	errs = append(errs, validateMeshRefs(s)...)
	errs = append(errs, validateMeshes(s)...)
	errs = append(errs, validateTransforms(s)...)
	errs = append(errs, validateReachable(s)...)
	return errs
}

// HasErrors reports whether errs contains an error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

func validateRoot(s *Scene) []ValidationError {
	root := s.Node(s.Root())
	if root == nil {
		return []ValidationError{{Node: NoNode, Message: "scene has no root node", Severity: SeverityError}}
	}
	if root.Parent != NoNode {
		return []ValidationError{{Node: root.ID, Message: "root node has a parent", Severity: SeverityError}}
	}
	return nil
}

// validateLinks checks that parent and child links agree in both directions.
func validateLinks(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		n := s.Node(id)
		for _, c := range n.Children {
			child := s.Node(c)
			if child == nil {
				errs = append(errs, ValidationError{
					Node:     id,
					Message:  fmt.Sprintf("child %d does not exist", c),
					Severity: SeverityError,
				})
				continue
			}
			if child.Parent != id {
				errs = append(errs, ValidationError{
					Node:     c,
					Message:  fmt.Sprintf("listed under %q but parent is %d", n.Name, child.Parent),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateMeshRefs checks every mesh reference held by nodes and shapes.
func validateMeshRefs(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		n := s.Node(id)
		if n.HasMesh() && s.Mesh(n.Mesh) == nil {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  fmt.Sprintf("references missing mesh %d", n.Mesh),
				Severity: SeverityError,
			})
		}
		if n.Renderer && !n.HasMesh() {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  "has a renderer but no mesh",
				Severity: SeverityWarning,
			})
		}
		for _, sh := range n.Shapes {
			ms, ok := sh.(MeshShape)
			if ok && ms.Mesh != NoMesh && s.Mesh(ms.Mesh) == nil {
				errs = append(errs, ValidationError{
					Node:     id,
					Message:  fmt.Sprintf("mesh collider references missing mesh %d", ms.Mesh),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateMeshes checks triangle indices against vertex counts.
func validateMeshes(s *Scene) []ValidationError {
	var errs []ValidationError
	for i := 0; i < s.MeshCount(); i++ {
		m := s.Mesh(MeshID(i))
		if m == nil {
			continue
		}
		if len(m.Triangles)%3 != 0 {
			errs = append(errs, ValidationError{
				Node:     NoNode,
				Message:  fmt.Sprintf("mesh %q has %d indices, not a multiple of 3", m.Name, len(m.Triangles)),
				Severity: SeverityError,
			})
		}
		for _, idx := range m.Triangles {
			if int(idx) >= len(m.Vertices) {
				errs = append(errs, ValidationError{
					Node:     NoNode,
					Message:  fmt.Sprintf("mesh %q index %d out of range (%d vertices)", m.Name, idx, len(m.Vertices)),
					Severity: SeverityError,
				})
				break
			}
		}
	}
	return errs
}

func validateTransforms(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		n := s.Node(id)
		if n.Rotation.Len() == 0 {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  "rotation quaternion has zero length",
				Severity: SeverityError,
			})
		}
		if n.Scale[0] == 0 || n.Scale[1] == 0 || n.Scale[2] == 0 {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  fmt.Sprintf("scale %v has a zero component; points cannot be mapped into its space", n.Scale),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateReachable warns about live nodes that hang outside the root's tree.
func validateReachable(s *Scene) []ValidationError {
	reached := make(map[NodeID]bool)
	s.Walk(s.Root(), func(n *Node) bool {
		reached[n.ID] = true
		return true
	})
	var errs []ValidationError
	for _, id := range s.NodeIDs() {
		if !reached[id] {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  fmt.Sprintf("node %q is not reachable from the root", s.Node(id).Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
