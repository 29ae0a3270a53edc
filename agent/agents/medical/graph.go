package medical

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/medibot-ai/medibot/agent/contract"
)

type GraphInput struct {
	UserID   string
	UserName string
	Message  string
}

type GraphOutput struct {
	Reply string
}

// turnState carries one turn through the graph. The scope is bound once
// in validate_request and is read-only afterwards.
type turnState struct {
	scope   contractx.Scope
	message string
	reply   string
}

func (d *Dispatcher) compileTurnGraph(ctx context.Context) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*turnState, error) {
			scope, err := contractx.NewScope(in.UserID, in.UserName)
			if err != nil {
				return nil, err
			}
			message := strings.TrimSpace(in.Message)
			if message == "" {
				return nil, fmt.Errorf("%w: message is empty", contractx.ErrValidation)
			}
			return &turnState{scope: scope, message: message}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("converse",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			if in == nil {
				return nil, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			return d.converse(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node converse: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (GraphOutput, error) {
			if in == nil {
				return GraphOutput{}, fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			reply := strings.TrimSpace(in.reply)
			if reply == "" {
				return GraphOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrSchemaViolation)
			}
			return GraphOutput{Reply: reply}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "converse"},
		{"converse", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("medical.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
