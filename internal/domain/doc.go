// Package domain contains the core business entities of the note scheduler:
// notes, their append-only read history, per-day activity rollups, and the
// categories and users notes belong to.
//
// Entities validate themselves; persistence and scheduling live elsewhere.
// The scheduling fields of a Note are only ever changed through NewNote and
// MarkRead, using dates computed by the srs package.
package domain
