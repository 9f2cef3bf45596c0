/*
Package session keeps one jembe client per driver session.

Operations on a session are serialized with a reference-counted local lock and,
when several driver replicas share a history backend, a distributed lock.
*/
package session
