package dialect

// Dialect abstracts engine-specific catalog access and statement text.
type Dialect interface {
	// Connection
	DriverName() string
	DSN(path string, readOnly bool) string

	// Metadata Queries (Schema Introspection)
	GetTablesQuery() string
	GetColumnsQuery() string
	GetForeignKeysQuery() string
	GetTableDefinitionQuery() string
	IsSystemTable(name string) bool

	// Query Generation
	SelectRowsQuery(table string, cols []string) string
	InsertStatement(table string, cols, vals []string) string
	DefaultValuesStatement(table string) string
	CountQuery(table string) string

	// Helpers
	QuoteIdent(name string) string
}
