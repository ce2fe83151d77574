package connectors

import (
	"context"
	"time"
)

// QueryRequest represents a read against one entity table
type QueryRequest struct {
	Table   string                   // Table name
	Fields  []string                 // Fields to retrieve, all when empty
	Filters map[string]interface{}   // Equality conditions
	In      map[string][]interface{} // Membership conditions (field IN values)
	Sort    map[string]int           // Sort order (1 for ASC, -1 for DESC)
	Limit   int64
}

// QueryResponse represents query results
type QueryResponse struct {
	Data       []map[string]interface{}
	TotalCount int64
	Timestamp  time.Time
}

// Connector is the read side of the league data store. Reports never write
// through it.
type Connector interface {
	// Connect establishes connection to data source
	Connect(ctx context.Context, config map[string]interface{}) error

	// Disconnect closes connection
	Disconnect(ctx context.Context) error

	// Query executes a query and returns results
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)

	// TestConnection tests if connection is valid
	TestConnection(ctx context.Context) error

	// GetType returns the connector type
	GetType() string
}
