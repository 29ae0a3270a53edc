package contract

import (
	"context"
	"encoding/json"
)

// RecordGateway is the table-addressed record store behind every tool.
// Implementations must treat the filters as mandatory: tools always
// include a user_id equality filter, and the gateway applies it as-is.
type RecordGateway interface {
	Select(ctx context.Context, table string, query Query) ([]json.RawMessage, error)
	Insert(ctx context.Context, table string, row map[string]any) (json.RawMessage, error)
	Update(ctx context.Context, table string, patch map[string]any, filters []Filter) error
}

// Assistant is the caller-facing surface of the agent core: one turn in,
// one reply out.
type Assistant interface {
	Run(ctx context.Context, userID, userName, message string) (string, error)
}
