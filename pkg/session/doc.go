/*
Package session implements session management and persistence orchestration.

A navigation session is a snapshot of breadcrumbs. The Manager serialises
every load-modify-save cycle on a session, locally with a reference counted
mutex and, when configured, across replicas with a DistributedLocker.
*/
package session
