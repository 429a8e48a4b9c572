/*
Package ports defines the driven ports (interfaces) for the Botflow engine.

These interfaces decouple the traversal core from the places flow graphs are
authored and stored, allowing the engine to run the same conversation from a
directory, an in-memory fixture, or a shared Redis registry.

# Key Interfaces

  - FlowLoader: Responsible for resolving a FlowGraph by ID (e.g., from Loam, Memory or Redis).
  - Watchable: Optional capability of loaders that can signal when flows change.
*/
package ports
