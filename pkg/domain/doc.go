/*
Package domain contains the core models of the flow navigation engine.

It defines the flow graph and its canonical depth-first order, the breadcrumbs
recorded as a user answers nodes, and the passport derived from them. This
package is kept pure and free of I/O or persistence concerns.

# Key Entities

  - Node: a vertex of the flow graph with a typed payload and ordered edges.
  - Graph: an immutable snapshot of nodes, rooted at RootID.
  - Breadcrumb: one recorded answer or visit for a node.
  - Breadcrumbs: an insertion ordered ledger of breadcrumbs.
  - Passport: the key-value store derived by replaying breadcrumbs.
  - Snapshot: the persisted form of a session.
*/
package domain
