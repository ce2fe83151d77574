package connectors

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go-league/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLConnector reads league tables from postgres, mysql or sqlite
type SQLConnector struct {
	dbType string // "postgresql", "mysql" or "sqlite"
	db     *sql.DB
}

func NewSQLConnector(dbType string) *SQLConnector {
	return &SQLConnector{dbType: dbType}
}

// NewSQLConnectorFromConfig opens the data store described by the
// application configuration.
func NewSQLConnectorFromConfig(ctx context.Context, cfg config.DataStoreConfig) (*SQLConnector, error) {
	c := NewSQLConnector(cfg.Type)
	if cfg.DSN != "" {
		if err := c.Open(ctx, cfg.DSN); err != nil {
			return nil, err
		}
		return c, nil
	}

	err := c.Connect(ctx, map[string]interface{}{
		"host":     cfg.Host,
		"port":     float64(cfg.Port),
		"database": cfg.Name,
		"username": cfg.User,
		"password": cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Connect establishes connection from discrete connection parameters
func (c *SQLConnector) Connect(ctx context.Context, config map[string]interface{}) error {
	connStr, err := c.buildConnectionString(config)
	if err != nil {
		return fmt.Errorf("failed to build connection string: %w", err)
	}
	return c.Open(ctx, connStr)
}

// Open establishes connection from a driver specific DSN
func (c *SQLConnector) Open(ctx context.Context, dsn string) error {
	db, err := sql.Open(c.driverName(), dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if c.dbType == "sqlite" {
		// in-memory databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	c.db = db
	return nil
}

func (c *SQLConnector) Disconnect(ctx context.Context) error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Query executes a read against a single table
func (c *SQLConnector) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	query, args, err := c.buildSQLQuery(req)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query on %s: %w", req.Table, err)
	}
	defer rows.Close()

	data, err := c.rowsToMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to process query results: %w", err)
	}

	return &QueryResponse{
		Data:       data,
		TotalCount: int64(len(data)),
		Timestamp:  time.Now(),
	}, nil
}

// Exec runs a statement; used to seed local sqlite stores.
func (c *SQLConnector) Exec(ctx context.Context, stmt string, args ...interface{}) error {
	if c.db == nil {
		return fmt.Errorf("database connection not established")
	}
	_, err := c.db.ExecContext(ctx, stmt, args...)
	return err
}

func (c *SQLConnector) TestConnection(ctx context.Context) error {
	if c.db == nil {
		return fmt.Errorf("database connection not established")
	}
	return c.db.PingContext(ctx)
}

func (c *SQLConnector) GetType() string {
	return c.dbType
}

func (c *SQLConnector) driverName() string {
	switch c.dbType {
	case "postgresql":
		return "postgres"
	default:
		return c.dbType
	}
}

func (c *SQLConnector) buildConnectionString(config map[string]interface{}) (string, error) {
	host, _ := config["host"].(string)
	port, _ := config["port"].(float64)
	database, _ := config["database"].(string)
	username, _ := config["username"].(string)
	password, _ := config["password"].(string)

	if c.dbType == "sqlite" {
		if database == "" {
			return "", fmt.Errorf("missing sqlite database path")
		}
		return database, nil
	}

	if host == "" || database == "" || username == "" {
		return "", fmt.Errorf("missing required connection parameters")
	}

	if port == 0 {
		if c.dbType == "postgresql" {
			port = 5432
		} else {
			port = 3306
		}
	}

	if c.dbType == "postgresql" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			host, int(port), username, password, database,
		), nil
	}

	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?parseTime=true",
		username, password, host, int(port), database,
	), nil
}

// buildSQLQuery constructs a parameterized SELECT. Conditions are emitted in
// field order so the same request always yields the same statement.
func (c *SQLConnector) buildSQLQuery(req QueryRequest) (string, []interface{}, error) {
	if !identifierPattern.MatchString(req.Table) {
		return "", nil, fmt.Errorf("invalid table name %q", req.Table)
	}

	var query strings.Builder
	var args []interface{}
	argIndex := 1

	query.WriteString("SELECT ")
	if len(req.Fields) > 0 {
		for _, f := range req.Fields {
			if !identifierPattern.MatchString(f) {
				return "", nil, fmt.Errorf("invalid field name %q", f)
			}
		}
		query.WriteString(strings.Join(req.Fields, ", "))
	} else {
		query.WriteString("*")
	}
	query.WriteString(" FROM ")
	query.WriteString(req.Table)

	var conditions []string
	for _, field := range sortedKeys(req.Filters) {
		if !identifierPattern.MatchString(field) {
			return "", nil, fmt.Errorf("invalid filter field %q", field)
		}
		conditions = append(conditions, fmt.Sprintf("%s = %s", field, c.getPlaceholder(argIndex)))
		args = append(args, req.Filters[field])
		argIndex++
	}

	inFields := make([]string, 0, len(req.In))
	for field := range req.In {
		inFields = append(inFields, field)
	}
	sort.Strings(inFields)
	for _, field := range inFields {
		if !identifierPattern.MatchString(field) {
			return "", nil, fmt.Errorf("invalid filter field %q", field)
		}
		values := req.In[field]
		if len(values) == 0 {
			// empty membership matches nothing
			conditions = append(conditions, "1 = 0")
			continue
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = c.getPlaceholder(argIndex)
			args = append(args, v)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")))
	}

	if len(conditions) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(conditions, " AND "))
	}

	if len(req.Sort) > 0 {
		sortFields := make([]string, 0, len(req.Sort))
		for field := range req.Sort {
			sortFields = append(sortFields, field)
		}
		sort.Strings(sortFields)

		sortClauses := []string{}
		for _, field := range sortFields {
			if !identifierPattern.MatchString(field) {
				return "", nil, fmt.Errorf("invalid sort field %q", field)
			}
			dir := "ASC"
			if req.Sort[field] == -1 {
				dir = "DESC"
			}
			sortClauses = append(sortClauses, fmt.Sprintf("%s %s", field, dir))
		}
		query.WriteString(" ORDER BY ")
		query.WriteString(strings.Join(sortClauses, ", "))
	}

	if req.Limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT %d", req.Limit))
	}

	return query.String(), args, nil
}

func (c *SQLConnector) getPlaceholder(index int) string {
	if c.dbType == "postgresql" {
		return fmt.Sprintf("$%d", index)
	}
	return "?"
}

func (c *SQLConnector) rowsToMaps(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]interface{}{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = val
			}
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
