// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// All note, history and rollup operations are scoped by owner. Stores accept
// a DBTX so the same implementation runs against a pool or a transaction;
// WithTx binds a store to a transaction started by RunInTransaction.
package store
