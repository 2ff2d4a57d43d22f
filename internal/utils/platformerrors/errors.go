package platformerrors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorType categorizes an error for logging and triage.
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeDatabaseError ErrorType = "DATABASE_ERROR"
	ErrorTypeExternal      ErrorType = "EXTERNAL"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

// Layer names the application layer where the error occurred.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

// PlatformError carries the layer, category and request correlation of an
// error so log lines stay greppable across services.
type PlatformError struct {
	ID        string
	Type      ErrorType
	Layer     Layer
	Message   string
	Err       error
	RequestID string
	Timestamp time.Time
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewError wraps err with layer and category metadata. The request id is
// taken from the context when the HTTP layer injected one.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		ID:        uuid.NewString(),
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		Err:       err,
		RequestID: requestIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
	}
}

type requestIDKey struct{}

// WithRequestID stores the request correlation id on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
