/*
Package session implements session access coordination for the facet backend.

The Manager serializes holders of the same session ID inside one process with a
reference-counted mutex, and across replicas with an optional distributed lock.
A backend acquires the session when it starts and releases it when it writes
back, so one request at a time owns a session's value map.
*/
package session
