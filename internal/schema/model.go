package schema

type Table struct {
	Name         string
	Columns      []*Column
	ForeignKeys  []*ForeignKey
	Dependencies []string // tables referenced by foreign keys, used for ordering
}

// Column is one catalog row of a table's schema. DeclaredType is advisory:
// the engine does not enforce it, so stored values may disagree with it.
type Column struct {
	Name         string
	DeclaredType string
	Default      *string // declared default expression text, nil when absent
	NotNull      bool
	PrimaryKey   int // 1-based position in the primary key, 0 if not part of it
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// HasDefault reports whether the column declares a default expression.
func (c *Column) HasDefault() bool {
	return c.Default != nil
}

// ColumnNames returns the table's column names in physical order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// 리포트용 구조체
type VerifyResult struct {
	TableName string
	Source    int
	Replayed  int
	Status    string
	ErrorMsg  string
}
