// Package scene defines the scene graph that imported models are loaded into.
// Nodes and meshes live in an arena and are addressed by stable indices, so a
// node can be destroyed while other code still holds its ID: lookups on a
// destroyed ID return nil instead of a dangling node.
package scene
