// Package network implements the engine's object store: three append-only,
// deduplicating arenas (molecules, operators, reactions), one
// resolver-mediated metadata table per arena, and the Network aggregate
// handed to enumeration, pipelines, and global hooks.
//
// Stores are monotonic. Once assigned, a ref's underlying value never
// changes; only its metadata may be added to or resolved. Nothing is ever
// deleted - removal from consideration is expressed through metadata flags
// and filter steps.
//
// Thread-safety model:
//   - Add*: safe from any goroutine; structural dedup is linearized so two
//     workers inserting the same value receive the same ref and only one
//     logical insertion occurs
//   - metadata Set: serialized per (entity, key) pair so resolvers always
//     see the sequential two-argument application
//   - Each*: iterates a stable insertion-order snapshot
package network
