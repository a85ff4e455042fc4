package bridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// HandlerFunc answers one request type. It returns the response payload to
// encode, or a *Error describing the failure.
type HandlerFunc func(payload json.RawMessage) (interface{}, *Error)

// Dispatcher routes requests to registered handlers. It implements Channel
// so a facade can talk to it directly in-process.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageType]HandlerFunc
	logger   *zap.Logger
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[MessageType]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a handler to a message type, replacing any previous one.
func (d *Dispatcher) Register(t MessageType, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
}

// Send routes the request to its handler and encodes the result. Requests
// for unregistered types answer with UNKNOWN_MESSAGE_TYPE rather than a
// transport error so the caller can tell a stale UI from a dead channel.
func (d *Dispatcher) Send(req Request) (Response, error) {
	d.mu.RLock()
	handler, ok := d.handlers[req.Type]
	d.mu.RUnlock()
	if !ok {
		d.logger.Warn("unhandled bridge message", zap.String("type", string(req.Type)))
		return Response{ID: req.ID, Err: &Error{
			Code:    CodeUnknownMessageType,
			Message: fmt.Sprintf("no handler for message type %q", req.Type),
		}}, nil
	}

	data, herr := handler(req.Payload)
	if herr != nil {
		return Response{ID: req.ID, Err: herr}, nil
	}

	var encoded json.RawMessage
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			d.logger.Error("failed to encode bridge response", zap.String("type", string(req.Type)), zap.Error(err))
			return Response{ID: req.ID, Err: &Error{
				Code:    CodeBadPayload,
				Message: "failed to encode response payload",
			}}, nil
		}
		encoded = raw
	}
	return Response{ID: req.ID, Data: encoded}, nil
}
