package sceneio

// Document is the serialized form of a scene. The same structure is used
// for YAML and JSON.
type Document struct {
	Meshes []MeshDoc `yaml:"meshes,omitempty" json:"meshes,omitempty"`
	Root   NodeDoc   `yaml:"root" json:"root"`
}

// MeshDoc is either explicit geometry or a generated box.
type MeshDoc struct {
	Name string `yaml:"name" json:"name"`
	// Key disambiguates meshes sharing a name. Nodes refer to a mesh by its
	// key when set, by name otherwise.
	Key       string      `yaml:"key,omitempty" json:"key,omitempty"`
	Vertices  [][]float64 `yaml:"vertices,omitempty" json:"vertices,omitempty"`
	Triangles []uint32    `yaml:"triangles,omitempty" json:"triangles,omitempty"`
	Box       *BoxDoc     `yaml:"box,omitempty" json:"box,omitempty"`
}

// BoxDoc generates an axis-aligned box mesh.
type BoxDoc struct {
	Size   []float64 `yaml:"size" json:"size"`
	Center []float64 `yaml:"center,omitempty" json:"center,omitempty"`
}

// NodeDoc is one node and its subtree.
type NodeDoc struct {
	Name     string    `yaml:"name" json:"name"`
	Position []float64 `yaml:"position,omitempty" json:"position,omitempty"`
	// Rotation is Euler angles in degrees; Quaternion is x, y, z, w. At most
	// one may be set.
	Rotation   []float64  `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Quaternion []float64  `yaml:"quaternion,omitempty" json:"quaternion,omitempty"`
	Scale      []float64  `yaml:"scale,omitempty" json:"scale,omitempty"`
	Mesh       string     `yaml:"mesh,omitempty" json:"mesh,omitempty"`
	Renderer   *bool      `yaml:"renderer,omitempty" json:"renderer,omitempty"`
	Shapes     []ShapeDoc `yaml:"shapes,omitempty" json:"shapes,omitempty"`
	Children   []NodeDoc  `yaml:"children,omitempty" json:"children,omitempty"`
}

// ShapeDoc is a collision proxy. Type is box, capsule, sphere or mesh.
type ShapeDoc struct {
	Type      string    `yaml:"type" json:"type"`
	Center    []float64 `yaml:"center,omitempty" json:"center,omitempty"`
	Size      []float64 `yaml:"size,omitempty" json:"size,omitempty"`
	Radius    float64   `yaml:"radius,omitempty" json:"radius,omitempty"`
	Height    float64   `yaml:"height,omitempty" json:"height,omitempty"`
	Direction string    `yaml:"direction,omitempty" json:"direction,omitempty"`
	Mesh      string    `yaml:"mesh,omitempty" json:"mesh,omitempty"`
	Convex    bool      `yaml:"convex,omitempty" json:"convex,omitempty"`
}
