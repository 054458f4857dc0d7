// Package scene loads graph scene files and materializes them into an
// in-memory host.
//
// A scene is a declarative description of a graph: nodes with optional
// fixed positions, edges, an initial viewport, and overlay declarations
// describing the surfaces to stack over it. Scenes are stored as TOML
// or JSON; the format is chosen by file extension.
//
// Nodes without positions are placed by Graphviz via [AutoLayout].
// Nodes without identifiers receive generated UUIDs during [Build].
package scene
