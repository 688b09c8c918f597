/*
Package ports defines the driven ports (interfaces) of the facet session layer.

These interfaces decouple the facade and the HTTP backend from concrete storage,
allowing sessions to live in memory, on disk, or in Redis.

# Key Interfaces

  - Backend: The host session subsystem the facade sequences calls into.
  - RecordStore: Responsible for persisting and loading session Records.
  - DistributedLocker: Provides distributed locking so one holder at a time owns a session.
*/
package ports
