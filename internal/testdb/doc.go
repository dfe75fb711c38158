//go:build integration

// Package testdb provides utilities for database integration tests.
//
// Each test runs in its own transaction that is rolled back when the test
// completes, so tests can share one schema and run with t.Parallel():
//
//	func TestNoteStore_Create(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        notes := postgres.NewPostgresNoteStore(tx, nil)
//	        require.NoError(t, notes.Create(context.Background(), note))
//	    })
//	}
//
// Tests are skipped unless DATABASE_URL or FORGETMENOT_TEST_DB_URL is set.
// The schema comes from the goose migrations embedded in the postgres
// package, applied once per test binary.
package testdb
