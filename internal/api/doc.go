// Package api exposes the note scheduler over HTTP. It decodes and validates
// requests, calls service.NoteService, and renders notes with their
// derived interval and frequency. Errors are mapped to status codes and
// safe messages in errors.go so internal details never reach clients.
package api
