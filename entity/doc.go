// Package entity defines the core data model of the expansion engine:
// typed references into the network's stores, the contracts satisfied by
// opaque molecules and operators, the committed Reaction record, and the
// collaborator interfaces (transformation, decoding) the engine is
// parameterized over.
//
// The engine never inspects molecule or operator internals. Identity is
// structural: two values with equal canonical keys are the same network
// entity. Values additionally expose a stable binary encoding (Blob) used
// for persistence and for detecting canonicalization bugs (two values with
// the same key but different blobs).
package entity
