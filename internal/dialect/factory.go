package dialect

import (
	"errors"
	"fmt"
)

var ErrUnknownDriver = errors.New("unknown driver")

// GetDialect returns the Dialect implementation for a database/sql driver name.
func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return &SqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Ensure interface implementation
var _ Dialect = (*SqliteDialect)(nil)
