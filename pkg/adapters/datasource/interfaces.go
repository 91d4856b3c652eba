package datasource

// Dialect adapts the importer's SQL to one target database engine.
// Statements are written with ? placeholders and rebound per engine.
type Dialect interface {
	// Type is the registry key ("mysql", "postgres", "sqlserver").
	Type() string

	// DriverName is the database/sql driver the DSN is opened with.
	DriverName() string

	// DSN returns the connection string. Never log it unsanitized.
	DSN() string

	// Rebind rewrites ? placeholders into the engine's bind syntax.
	Rebind(query string) string

	// Insert builds a parameterized INSERT for the given columns.
	Insert(table string, columns []string) string

	// InsertIgnore builds an INSERT that tolerates an existing row where the
	// engine supports it. Callers still treat IsDuplicate errors as success.
	InsertIgnore(table string, columns []string) string

	// IsDuplicate reports a unique or primary key violation.
	IsDuplicate(err error) bool

	// IsConnectionLost reports an error after which the session must be reopened.
	IsConnectionLost(err error) bool
}
