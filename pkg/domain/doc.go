/*
Package domain contains the core domain models of the facet session layer.

It defines the persisted session Record, the cookie scope used to transport the
session identifier, the lifecycle events emitted by the facade, and the error kinds
shared by every adapter. This package is kept pure and free of I/O, following
Hexagonal Architecture principles.

# Key Entities

  - Record: The flat key/value map persisted for one session identifier.
  - CookieScope: Lifetime, path and domain of the session cookie.
  - SessionEvent: A lifecycle notification (open, close, destroy, misuse).
  - ProgrammerError: Misuse of the facade contract (wrong call order).
*/
package domain
