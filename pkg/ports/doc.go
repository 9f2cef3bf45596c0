/*
Package ports defines the driven ports (interfaces) of the jembe client.

These interfaces decouple reconciliation from the outside world, so the same
client runs against a real producer, a test double, or a shared history backend.

# Key Interfaces

  - Transport: sends the batched request and returns the raw response body.
  - Uploader: ships files referenced by Init params and returns their descriptors.
  - HistoryStore: records navigation entries per session (push, replace, back).
  - DistributedLocker: serializes access to one session across replicas.
*/
package ports
