// Package msgs defines the typed payloads kept in shared areas.
//
// Areas hold raw bytes. The types here give the bytes a layout so the
// communication processes and the daemon can agree on what an area means,
// e.g. the one-shot transmit request or the periodic schedule.
package msgs
