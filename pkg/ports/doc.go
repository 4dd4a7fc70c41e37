/*
Package ports defines the driven ports (interfaces) of the navigation engine.

These interfaces decouple the engine from where flows come from and where
sessions are kept.

# Key Interfaces

  - FlowLoader: loads flow graphs (e.g., from YAML files or memory).
  - SessionStore: persists and loads session snapshots.
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
