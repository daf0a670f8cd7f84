// Package testdb provides helpers for database integration tests.
//
// Tests are skipped unless TASKS_TEST_DATABASE_URL (or DATABASE_URL) points at
// a disposable PostgreSQL database. Each test runs inside a GORM transaction
// that is rolled back when the test finishes, so tests can run in parallel
// against the same schema without cleanup.
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *gorm.DB) {
//	        users := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
package testdb
