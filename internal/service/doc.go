// Package service contains the application use cases. It orchestrates
// domain objects, the scheduling policy in internal/domain/srs and the
// persistence contracts in internal/store.
//
// NoteService is the review orchestrator: it creates notes with their first
// scheduled read, advances the schedule when a note is marked read, records
// the read history and daily rollups, and answers the due-note and stats
// queries. Every operation is scoped by owner, and a note owned by someone
// else is reported exactly like a missing one.
//
// Services receive their stores and a store.Transactor through constructor
// injection and never depend on a concrete database implementation.
package service
