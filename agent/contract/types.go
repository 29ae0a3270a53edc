package contract

import (
	"fmt"
	"strings"
)

// Scope is the per-turn identity bundle passed to every tool invocation.
// It is built once per turn from authenticated caller identity and is
// never derived from model-controlled input.
type Scope struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// NewScope validates and builds a turn scope.
func NewScope(userID, userName string) (Scope, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Scope{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return Scope{}, fmt.Errorf("%w: user name is required", ErrValidation)
	}
	return Scope{UserID: userID, UserName: userName}, nil
}

// Valid reports whether the scope carries a usable identity.
func (s Scope) Valid() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// ToolRequest is one tool invocation requested by the model backend.
type ToolRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is the structured outcome of one tool invocation. Gateway
// and validation faults are carried in Error so the model can narrate
// them; they are never raised as Go errors across the tool boundary.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// FilterOp is a row filter operator understood by the record gateway.
type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterGte FilterOp = "gte"
)

// Filter restricts a gateway select/update to matching rows.
type Filter struct {
	Column string
	Op     FilterOp
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: FilterEq, Value: value}
}

// Gte builds a greater-or-equal filter.
func Gte(column, value string) Filter {
	return Filter{Column: column, Op: FilterGte, Value: value}
}

// Order sorts gateway select results by one column.
type Order struct {
	Column string
	Desc   bool
}

// Query shapes one gateway select.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}
