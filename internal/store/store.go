// Package store executes guard-approved SQL against the Northwind MySQL
// database and shapes results for JSON serialization. Every statement passes
// through RunQuery, which consults the sqlguard before any connection is
// acquired.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Rejection sentinels. These mean "we chose not to run this"; a
// *DatabaseError means "we tried and the store failed".
var (
	ErrEmptyQuery      = errors.New("no SQL query provided")
	ErrNotReadOnly     = errors.New("this operation will not be performed (non-read-only query detected)")
	ErrDisallowedTable = errors.New("query references invalid or disallowed tables")
)

// DatabaseError wraps a connection or execution failure that happened after
// the statement was approved.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %v", e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// ResultSet is the ordered column list plus row mappings produced by an
// approved, successfully executed statement. All scalar values are
// JSON-representable.
type ResultSet struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// SalesPoint is one day of aggregated sales, the unit of the forecasting
// training series.
type SalesPoint struct {
	Date  time.Time `json:"order_date"`
	Total float64   `json:"total_sales"`
}

// normalizeValue maps driver scalars onto JSON-friendly types: integers and
// decimals become float64, byte slices become strings (or float64 when they
// carry a MySQL DECIMAL), date/time values become ISO-8601 strings.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return v
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case []byte:
		s := string(v)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}
