// Package store provides SQLite-backed storage for tags and tag assignments,
// and runs tag searches against a caller-owned object table.
//
// The store manages two tables:
//   - tags: id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT
//   - tag_assignments: (tag_id, object_id) edges, no identity of their own
//
// The object table belongs to the caller and is described once, at Open, by a
// schema.Object. Result rows are turned into caller types by a Materializer.
//
// # Looseness
//
// Neither tag names nor (tag, object) pairs are unique at the storage level.
// Callers that want uniqueness check TagExists / AssignmentExists first, or
// use EnsureTag. DeleteTag does not touch assignments; use DeleteTagCascade,
// or follow DeleteTag with DeleteAssignmentsByTag.
//
// # Errors
//
// Every failure is an *Error carrying a Code:
//   - CodeConnection, CodeSchema, CodeStatement: only from Open; no store is returned
//   - CodeExecution: an operation failed against the database
//   - CodeRowConversion: the Materializer rejected a row
//   - CodeClosed: the store was used after Close
//
// "Not found" is never an error: lookups return ok=false, lists return an
// empty slice.
//
// # Database Configuration
//
// Stores opened with Open own their *sql.DB, limited to one connection, with
// these pragmas unless Options.Pragmas overrides them:
//   - WAL mode
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The store adds no locking of its own. A Store shared between goroutines
// relies on database/sql and SQLite for serialization.
package store
