/*
Package domain contains the core domain models shared by the jembe client.

It defines the identity model of component instances (execNames), the commands
queued for the next request, the wire records exchanged with the producer and the
history entries derived from the component registry. This package is kept pure
and free of I/O so the reconciliation engine can be exercised without a live
document or network.

# Key Entities

  - ExecName helpers: hierarchical "/"-delimited component identifiers.
  - Command: an Init, Call or Emit record waiting in the queue.
  - Request / ComponentRecord / GlobalsRecord: the outgoing and incoming bodies.
  - HistoryEntry: the navigation snapshot pushed after each reconciliation pass.
*/
package domain
