// Package medical implements the turn dispatcher: it binds one user
// utterance to a scoped execution context, lets the model backend call
// catalog tools, and reduces the exchange to a single text reply.
package medical

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/medibot-ai/medibot/agent/contract"
	promptx "github.com/medibot-ai/medibot/agent/prompt"
	toolx "github.com/medibot-ai/medibot/agent/tool"
)

// FallbackReply is the user-safe text returned when a turn cannot be
// completed. The underlying cause is logged for operators, never shown
// to the caller.
const FallbackReply = "I'm having trouble processing your request right now. Please try again in a moment."

const (
	maxModelRetries     = 2
	maxToolIterations   = 8
	defaultRetryBackoff = 500 * time.Millisecond
)

// Option customizes the dispatcher.
type Option func(*Dispatcher)

// WithRetryBackoff overrides the pause between model retries. Zero
// disables the pause.
func WithRetryBackoff(backoff time.Duration) Option {
	return func(d *Dispatcher) {
		d.retryBackoff = backoff
	}
}

// WithExecutorOptions forwards options to the tool executor.
func WithExecutorOptions(opts ...toolx.ExecutorOption) Option {
	return func(d *Dispatcher) {
		d.executorOpts = append(d.executorOpts, opts...)
	}
}

// Dispatcher serves one turn at a time. It holds no per-turn state, so a
// single instance is safe for concurrent turns from different users.
type Dispatcher struct {
	model        einomodel.ToolCallingChatModel
	executor     toolx.Executor
	executorOpts []toolx.ExecutorOption
	systemPrompt string
	retryBackoff time.Duration

	runner compose.Runnable[GraphInput, GraphOutput]
}

var _ contractx.Assistant = (*Dispatcher)(nil)

// New builds a dispatcher over the given chat model and record gateway.
// The tool catalog is bound to the model once here; nothing about the
// catalog changes afterwards.
func New(ctx context.Context, chatModel einomodel.ToolCallingChatModel, gateway contractx.RecordGateway, opts ...Option) (*Dispatcher, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if gateway == nil {
		return nil, errors.New("record gateway is required")
	}

	d := &Dispatcher{
		systemPrompt: promptx.Medical(),
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	infos := toolx.Infos()
	d.executor = toolx.NewExecutor(gateway, d.executorOpts...)

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tool catalog: %v", contractx.ErrModelInvoke, err)
	}
	d.model = toolModel

	runner, err := d.compileTurnGraph(ctx)
	if err != nil {
		return nil, err
	}
	d.runner = runner

	return d, nil
}

// Run handles one turn for an already-authenticated caller. Transient
// model failures past the retry budget surface as FallbackReply with a
// nil error; only precondition violations come back as errors.
func (d *Dispatcher) Run(ctx context.Context, userID, userName, message string) (string, error) {
	out, err := d.runner.Invoke(ctx, GraphInput{
		UserID:   userID,
		UserName: userName,
		Message:  message,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			return "", err
		}
		log.Error().Err(err).
			Str("user_id", userID).
			Msg("turn failed, returning fallback reply")
		return FallbackReply, nil
	}
	return out.Reply, nil
}

// converse is the tool-calling loop for one turn. Tool calls are
// serviced strictly in the order the model requests them; each
// structured result is fed back before the model is consulted again.
func (d *Dispatcher) converse(ctx context.Context, st *turnState) (*turnState, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(d.systemPrompt + "\n\nYou are speaking with " + st.scope.UserName + "."),
		schema.UserMessage(st.message),
	}

	for iteration := 0; iteration < maxToolIterations; iteration++ {
		msg, err := d.generate(ctx, msgs)
		if err != nil {
			return nil, err
		}

		if len(msg.ToolCalls) == 0 {
			reply := strings.TrimSpace(msg.Content)
			if reply == "" {
				return nil, fmt.Errorf("%w: model returned empty reply", contractx.ErrSchemaViolation)
			}
			st.reply = reply
			return st, nil
		}

		msgs = append(msgs, msg)
		for _, call := range msg.ToolCalls {
			req, err := toToolRequest(call)
			if err != nil {
				return nil, err
			}

			result, err := d.executor(ctx, st.scope, req.Tool, req.Args)
			if err != nil {
				return nil, err
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("%w: marshal result for tool=%s: %v", contractx.ErrValidation, req.Tool, err)
			}
			msgs = append(msgs, schema.ToolMessage(string(payload), call.ID))
		}
	}

	return nil, fmt.Errorf("%w: tool loop did not converge after %d rounds", contractx.ErrModelInvoke, maxToolIterations)
}

// generate calls the model backend, retrying transient failures up to
// the fixed budget. A nil message counts as a malformed reply. Once the
// turn context is cancelled no further attempt is made.
func (d *Dispatcher) generate(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	var lastErr error
	for attempt := 0; attempt <= maxModelRetries; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).
				Int("attempt", attempt).
				Msg("retrying model backend call")
			if d.retryBackoff > 0 {
				select {
				case <-ctx.Done():
					return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, ctx.Err())
				case <-time.After(d.retryBackoff * time.Duration(attempt)):
				}
			}
		}

		msg, err := d.model.Generate(ctx, msgs)
		if err == nil && msg != nil {
			return msg, nil
		}
		if err == nil {
			err = errors.New("model returned nil message")
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, lastErr)
}

func toToolRequest(call schema.ToolCall) (contractx.ToolRequest, error) {
	tool := strings.TrimSpace(call.Function.Name)
	if tool == "" {
		return contractx.ToolRequest{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return contractx.ToolRequest{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
		}
	}

	return contractx.ToolRequest{Tool: tool, Args: args}, nil
}
