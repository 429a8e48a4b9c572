/*
Package domain contains the core domain models for the Botflow engine.

It defines the authored shape of a conversation (FlowGraph, Block, Step, Edge,
Variable) and the runtime records the engine produces while traversing it
(DisplayedEntry, ContinuationEntry, lifecycle events). This package is kept
pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - FlowGraph: One complete conversation definition (blocks, edges, variables).
  - Block: A named group of ordered steps shown together.
  - Step: The smallest unit within a block; may declare an outgoing edge.
  - Edge: A directed link from a source step to a target block (and optional step).
  - DisplayedEntry: A record of a block shown to the user, with its entry step index.
  - LifecycleHooks: Callbacks the engine uses to announce traversal events.
*/
package domain
