package core

import (
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/asad/sandstack/internal/logging"
)

// Default scope applied when a request carries no account or region context.
const (
	DefaultAccountID = "123456789012"
	DefaultRegion    = "us-east-1"
)

// Headers used to carry the account/region context. The region is normally
// recovered from the SigV4 credential scope; these exist as explicit
// overrides for clients that do not sign requests.
const (
	HeaderAccountID = "X-Sandstack-Account-Id"
	HeaderRegion    = "X-Sandstack-Region"
)

// Context carries one decoded inbound call: the resolved account/region
// scope and the raw parameter bundle.
type Context struct {
	AccountID string
	Region    string
	RequestID string

	params json.RawMessage
}

// Decode unmarshals the request's parameter bundle into v.
func (c *Context) Decode(v interface{}) error {
	if len(c.params) == 0 {
		return nil
	}
	return json.Unmarshal(c.params, v)
}

// OperationFunc executes one named operation against the caller's backend
// scope and returns the response payload to serialize.
type OperationFunc func(c *Context) (interface{}, error)

// Dispatcher serves AWS JSON-protocol requests for one service: it reads the
// operation name from the X-Amz-Target header, resolves the account/region
// scope, looks the operation up in an explicit table, and serializes the
// return value or fault.
type Dispatcher struct {
	targetPrefix string
	operations   map[string]OperationFunc
	logger       logging.Logger

	defaultAccountID string
	defaultRegion    string
}

// NewDispatcher creates a dispatcher for one service. targetPrefix is the
// service's wire prefix, e.g. "Comprehend_20171127"; operations maps bare
// operation names to their implementations.
func NewDispatcher(targetPrefix string, operations map[string]OperationFunc, logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		targetPrefix:     targetPrefix,
		operations:       operations,
		logger:           logger,
		defaultAccountID: DefaultAccountID,
		defaultRegion:    DefaultRegion,
	}
}

// Operations returns the names of all dispatchable operations.
func (d *Dispatcher) Operations() []string {
	names := make([]string, 0, len(d.operations))
	for name := range d.operations {
		names = append(names, name)
	}
	return names
}

// ServeHTTP implements http.Handler.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("x-amzn-RequestId", requestID)

	operation := d.operationName(r)
	if operation == "" {
		WriteFault(w, NewAPIError("UnknownOperationException", http.StatusBadRequest,
			"missing or malformed X-Amz-Target header"))
		return
	}

	op, ok := d.operations[operation]
	if !ok {
		WriteFault(w, NewAPIError("UnknownOperationException", http.StatusBadRequest,
			"unknown operation %s.%s", d.targetPrefix, operation))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteFault(w, NewAPIError("SerializationException", http.StatusBadRequest,
			"failed to read request body"))
		return
	}
	defer r.Body.Close()

	if len(body) > 0 && !json.Valid(body) {
		WriteFault(w, NewAPIError("SerializationException", http.StatusBadRequest,
			"request body is not valid JSON"))
		return
	}

	ctx := &Context{
		AccountID: ResolveAccountID(r, d.defaultAccountID),
		Region:    ResolveRegion(r, d.defaultRegion),
		RequestID: requestID,
		params:    body,
	}

	result, err := op(ctx)
	if err != nil {
		apiErr, ok := err.(*APIError)
		if !ok {
			d.logger.Error("operation failed",
				logging.String("operation", operation),
				logging.ErrorField(err),
			)
			apiErr = NewAPIError("InternalFailure", http.StatusInternalServerError, "internal failure")
		}
		WriteFault(w, apiErr)
		return
	}

	d.logger.Debug("operation completed",
		logging.String("operation", operation),
		logging.String("account", ctx.AccountID),
		logging.String("region", ctx.Region),
	)

	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(http.StatusOK)
	if result == nil {
		w.Write([]byte("{}"))
		return
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		d.logger.Error("failed to encode response",
			logging.String("operation", operation),
			logging.ErrorField(err),
		)
	}
}

// operationName extracts the bare operation name from the X-Amz-Target
// header, tolerating both "Prefix.Operation" and a bare operation name.
func (d *Dispatcher) operationName(r *http.Request) string {
	target := r.Header.Get("X-Amz-Target")
	if target == "" {
		return ""
	}
	if idx := strings.LastIndex(target, "."); idx >= 0 {
		prefix := target[:idx]
		if prefix != d.targetPrefix {
			return ""
		}
		return target[idx+1:]
	}
	return target
}

// WriteFault serializes an APIError into the JSON fault shape the SDKs
// expect: the code in __type and the X-Amzn-Errortype header, the message in
// the body.
func WriteFault(w http.ResponseWriter, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.Header().Set("X-Amzn-Errortype", apiErr.Code)
	status := apiErr.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"__type":  apiErr.Code,
		"message": apiErr.Message,
	})
}

// ResolveRegion recovers the caller's region: the explicit override header
// wins, then the SigV4 Authorization credential scope, then the default.
func ResolveRegion(r *http.Request, fallback string) string {
	if region := r.Header.Get(HeaderRegion); region != "" {
		return region
	}
	if region := regionFromAuthorization(r.Header.Get("Authorization")); region != "" {
		return region
	}
	return fallback
}

// ResolveAccountID recovers the caller's account id from the override header,
// falling back to the fixed default account.
func ResolveAccountID(r *http.Request, fallback string) string {
	if account := r.Header.Get(HeaderAccountID); account != "" {
		return account
	}
	return fallback
}

// regionFromAuthorization parses the region out of a SigV4 header of the form
//
//	AWS4-HMAC-SHA256 Credential=AKID/20230101/us-west-2/comprehend/aws4_request, ...
func regionFromAuthorization(header string) string {
	idx := strings.Index(header, "Credential=")
	if idx < 0 {
		return ""
	}
	scope := header[idx+len("Credential="):]
	if end := strings.IndexAny(scope, ", "); end >= 0 {
		scope = scope[:end]
	}
	parts := strings.Split(scope, "/")
	if len(parts) < 5 || parts[4] != "aws4_request" {
		return ""
	}
	return parts[2]
}
