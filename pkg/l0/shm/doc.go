// Package shm provides the shared areas cooperating tasks use to exchange
// state, and the Manager that owns them by index.
//
// An area is a fixed-capacity byte region guarded by its own mutex. Writes
// mark it dirty and reads clear the flag, so a consumer can poll IsDirty
// cheaply and only take the lock when there is something new.
package shm
