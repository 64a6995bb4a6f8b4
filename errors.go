package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zero-day-ai/inventory/config"
	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/knowledge"
	"github.com/zero-day-ai/inventory/listing"
	"github.com/zero-day-ai/inventory/objectstore"
	"github.com/zero-day-ai/inventory/ooi"
	"github.com/zero-day-ai/inventory/properties"
	"github.com/zero-day-ai/inventory/resolver"
	"github.com/zero-day-ai/inventory/scanprofile"
	"github.com/zero-day-ai/inventory/transport"
)

// Sentinel errors for session configuration problems.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMissingOrganization indicates the session has no organization.
	ErrMissingOrganization = errors.New("organization is required")

	// ErrMissingOrganizationCode indicates the organization has an empty code.
	ErrMissingOrganizationCode = errors.New("organization code is required")

	// ErrMissingConnector indicates the session has no graph connector.
	ErrMissingConnector = errors.New("graph connector is required")

	// ErrMissingService indicates an optional service (object store, plugin
	// catalog) needed by the operation was not configured.
	ErrMissingService = errors.New("service is not configured")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where an object or plugin was not found.
	KindNotFound = "not_found"

	// KindValidation represents malformed references, levels or windows.
	KindValidation = "validation"

	// KindConfiguration represents missing organization, connector or services.
	KindConfiguration = "configuration"

	// KindNetwork represents failures talking to a remote service.
	KindNetwork = "network"

	// KindTimeout represents deadline or cancellation errors.
	KindTimeout = "timeout"

	// KindInvariant represents data from a remote service that breaks a
	// structural guarantee, such as a tree without its root.
	KindInvariant = "invariant"

	// KindInternal represents everything else.
	KindInternal = "internal"
)

// Error wraps an underlying error with the operation that failed and the
// category of the failure.
//
// Error supports unwrapping, so errors.Is() and errors.As() see through it
// to package sentinels such as connector.ErrNotFound.
type Error struct {
	// Op is the operation that failed (e.g., "Session.Get").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error.
	Err error

	// Context carries optional debugging information such as the reference.
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("inventory: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("inventory: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("inventory: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a target *Error by Kind (and Op when the target sets one), then
// falls back to the underlying error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with ctx merged into its context.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	newErr.Context = make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		newErr.Context[k] = v
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound || errors.Is(err, connector.ErrNotFound)
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Err: err}
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewConfigurationError creates a new Error with KindConfiguration.
func NewConfigurationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindConfiguration, Err: err}
}

// classify wraps err in an *Error whose Kind follows from the package
// sentinels in its chain. A nil err stays nil and an *Error passes through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Op: op, Kind: kindFor(err), Err: err}
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, connector.ErrNotFound),
		errors.Is(err, katalogus.ErrPluginNotFound):
		return KindNotFound
	case errors.Is(err, ooi.ErrMalformedReference),
		errors.Is(err, ooi.ErrTypeNotRegistered),
		errors.Is(err, connector.ErrInvalidArgument),
		errors.Is(err, listing.ErrInvalidWindow),
		errors.Is(err, resolver.ErrInvalidDepth),
		errors.Is(err, scanprofile.ErrInvalidLevel),
		errors.Is(err, objectstore.ErrInvalidTaskID),
		errors.Is(err, katalogus.ErrUnknownFilter),
		errors.Is(err, katalogus.ErrInvalidPredicate):
		return KindValidation
	case errors.Is(err, ErrMissingOrganization),
		errors.Is(err, ErrMissingOrganizationCode),
		errors.Is(err, ErrMissingConnector),
		errors.Is(err, ErrMissingService),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, objectstore.ErrMissingCredentials),
		errors.Is(err, knowledge.ErrInvalidKnowledgeBase):
		return KindConfiguration
	case errors.Is(err, properties.ErrMissingField),
		errors.Is(err, ooi.ErrRootMissing),
		errors.Is(err, ooi.ErrInvalidObject),
		errors.Is(err, objectstore.ErrMalformedMeta):
		return KindInvariant
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindTimeout
	case transport.IsRequestError(err):
		return KindNetwork
	default:
		return KindInternal
	}
}

// CloseWithLog closes the resource and logs any error at warning level.
// If logger is nil, slog.Default() is used.
//
//	defer inventory.CloseWithLog(session, logger, "session")
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource",
			"resource", name,
			"error", err)
	}
}
