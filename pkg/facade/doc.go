/*
Package facade provides a namespaced accessor over a host session backend.

A Session guards the backend's lifecycle (closed -> open -> closed) and reads and
writes values under a key prefix, so its entries do not collide with other
consumers of the same session map. One Session is built per request around that
request's ports.Backend; it holds no global state.

# Usage

	s := facade.New(backend)
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.Set("user_id", 42); err != nil {
		return err
	}
	id, err := s.Get("user_id", nil)

Calling Set, Get, GetAll, Delete or Decode on a closed Session, or
ConfigureCrossSubdomainScope on an open one, returns a *domain.ProgrammerError.
Backend failures are returned unchanged.

Destroy clears the whole session map, including keys written under other prefixes.
*/
package facade
