package server

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/pixelmill/pixelmill-mcp/internal/telemetry"
)

// Call is one tool invocation moving through the middleware chain.
type Call struct {
	Tool *Tool
	Args json.RawMessage
}

// CallFunc advances a tool call to the next stage of the chain.
type CallFunc func(ctx context.Context, call *Call) (any, error)

// Middleware wraps a CallFunc with cross-cutting behavior. Middleware
// applies uniformly to every tool; nothing in the chain knows about
// individual tools beyond their definitions.
type Middleware func(next CallFunc) CallFunc

// chain composes middleware so the first listed wraps the outermost layer.
func chain(final CallFunc, mw ...Middleware) CallFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		final = mw[i](final)
	}
	return final
}

// recovery converts handler panics into internal JSON-RPC errors so a
// buggy tool cannot kill the server.
func recovery(log zerolog.Logger) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *Call) (result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("tool", call.Tool.Name).
						Interface("panic", r).
						Bytes("stack", debug.Stack()).
						Msg("tool handler panicked")
					result = nil
					err = &RPCError{
						Code:    CodeInternalError,
						Message: fmt.Sprintf("Internal error in tool '%s'", call.Tool.Name),
					}
				}
			}()
			return next(ctx, call)
		}
	}
}

// logCalls records one structured entry per tool call with its outcome and
// duration.
func logCalls(log zerolog.Logger) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *Call) (any, error) {
			start := time.Now()
			result, err := next(ctx, call)
			ev := log.Info()
			if err != nil {
				ev = log.Error().Err(err)
			}
			ev.Str("tool", call.Tool.Name).
				Dur("duration", time.Since(start)).
				Msg("tool call")
			return result, err
		}
	}
}

// track emits an anonymous usage event per call when telemetry is enabled.
// Only the tool name, duration and success flag are recorded.
func track(client *telemetry.Client) Middleware {
	return func(next CallFunc) CallFunc {
		return func(ctx context.Context, call *Call) (any, error) {
			start := time.Now()
			result, err := next(ctx, call)
			client.Track("tool_call", map[string]any{
				"tool":        call.Tool.Name,
				"duration_ms": time.Since(start).Milliseconds(),
				"success":     err == nil,
			})
			return result, err
		}
	}
}
