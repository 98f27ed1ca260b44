// Package collider turns specially named nodes of an imported model into
// collision shape proxies.
//
// A node whose mesh name or own name starts with one of the prefixes
// UBX_, UCP_, USP_, UCX_ or UMC_ (case-insensitive) is replaced by a box,
// capsule, sphere, convex mesh or mesh collider. Most proxies are merged onto
// the node's parent and the node is deleted; rotated boxes and capsules stay
// in place as collider-only nodes, since a single parent-space shape cannot
// express their orientation.
package collider
