package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/askwind/askwind/internal/observability"
	"github.com/askwind/askwind/internal/sqlguard"
)

const tlsConfigName = "askwind"

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	TLSCAPath       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// Open builds a pooled MySQL handle for the Northwind database. When a CA
// certificate path is configured the connection requires TLS against that CA.
func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("database host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database name is required")
	}

	mysqlCfg := mysql.NewConfig()
	mysqlCfg.Net = "tcp"
	mysqlCfg.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	mysqlCfg.User = cfg.User
	mysqlCfg.Passwd = cfg.Password
	mysqlCfg.DBName = cfg.Database
	mysqlCfg.ParseTime = true
	mysqlCfg.Params = map[string]string{"charset": "utf8mb4"}

	if cfg.TLSCAPath != "" {
		pem, err := os.ReadFile(cfg.TLSCAPath)
		if err != nil {
			return nil, fmt.Errorf("read tls ca certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("tls ca certificate %q contains no usable certificates", cfg.TLSCAPath)
		}
		if err := mysql.RegisterTLSConfig(tlsConfigName, &tls.Config{RootCAs: pool}); err != nil {
			return nil, fmt.Errorf("register tls config: %w", err)
		}
		mysqlCfg.TLSConfig = tlsConfigName
	}

	db, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open northwind db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping northwind db: %w", err)
	}

	return db, nil
}

// Store is the execution gate over the Northwind connection pool.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping northwind db: %w", err)
	}
	return nil
}

// RunQuery validates the statement through the sqlguard and, only on an
// approved verdict, executes it against the pool. Rejections come back as
// the sentinel errors; execution failures as *DatabaseError. A rejected
// statement never touches a connection.
func (s *Store) RunQuery(ctx context.Context, sqlText string) (*ResultSet, error) {
	verdict := sqlguard.Check(sqlText)
	observability.ObserveGuardVerdict(verdict.String())

	switch verdict {
	case sqlguard.RejectedEmpty:
		return nil, ErrEmptyQuery
	case sqlguard.RejectedNotReadOnly:
		return nil, ErrNotReadOnly
	case sqlguard.RejectedDisallowedTable:
		return nil, ErrDisallowedTable
	}

	start := time.Now()
	result, err := s.execute(ctx, sqlText)
	observability.ObserveQueryDuration(time.Since(start), err == nil)
	if err != nil {
		return nil, &DatabaseError{Err: err}
	}
	return result, nil
}

func (s *Store) execute(ctx context.Context, sqlText string) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &ResultSet{Columns: columns, Rows: []map[string]any{}}
	scanTargets := make([]any, len(columns))
	scanValues := make([]any, len(columns))
	for i := range scanValues {
		scanTargets[i] = &scanValues[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalizeValue(scanValues[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// salesSeriesQuery aggregates daily revenue from orders and order_details,
// the series the forecaster trains on.
const salesSeriesQuery = `
SELECT
    o.order_date,
    SUM(od.unit_price * od.quantity * (1 - IFNULL(od.discount, 0))) AS total_sales
FROM orders o
JOIN order_details od ON o.order_id = od.order_id
GROUP BY o.order_date
ORDER BY o.order_date`

// SalesSeries returns the daily total sales history ordered by date.
func (s *Store) SalesSeries(ctx context.Context) ([]SalesPoint, error) {
	rows, err := s.db.QueryContext(ctx, salesSeriesQuery)
	if err != nil {
		return nil, &DatabaseError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	var series []SalesPoint
	for rows.Next() {
		var point SalesPoint
		var total any
		if err := rows.Scan(&point.Date, &total); err != nil {
			return nil, &DatabaseError{Err: err}
		}
		switch v := normalizeValue(total).(type) {
		case float64:
			point.Total = v
		default:
			return nil, &DatabaseError{Err: fmt.Errorf("total_sales has non-numeric value %v", total)}
		}
		series = append(series, point)
	}
	if err := rows.Err(); err != nil {
		return nil, &DatabaseError{Err: err}
	}
	return series, nil
}

// statsTables are the tables reported by TableStats. Counting just the two
// sales tables is enough to explain an empty training series.
var statsTables = []string{"orders", "order_details"}

// TableStats returns row counts for the sales tables, used by the debug
// endpoints and training diagnostics.
func (s *Store) TableStats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, len(statsTables))
	for _, table := range statsTables {
		var count int64
		query := "SELECT COUNT(*) FROM " + table
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, &DatabaseError{Err: err}
		}
		stats[table] = count
	}
	return stats, nil
}
