package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldExpenseID  = "expense_id"
	FieldRecords    = "records"
	FieldVisible    = "visible"
	FieldFileName   = "file_name"
	FieldFileSize   = "file_size"
	FieldOutcome    = "outcome"
	FieldApplied    = "applied_fields"
	FieldSortKey    = "sort_key"
	FieldSortDir    = "sort_direction"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAPI      = "api_client"
	ComponentStore    = "store"
	ComponentScan     = "scan"
	ComponentRender   = "render"
	ComponentJournal  = "journal"
	ComponentAMQP     = "amqp"
	ComponentExport   = "export"
	ComponentSession  = "session"
	ComponentSecurity = "security"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpLoad     = "load"
	OpFilter   = "filter"
	OpSort     = "sort"
	OpReset    = "reset"
	OpRender   = "render"
	OpScan     = "scan"
	OpMerge    = "merge"
	OpApprove  = "approve"
	OpReject   = "reject"
	OpExport   = "export"
	OpRecord   = "record"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithRequest adds HTTP request fields
func (f LogFields) WithRequest(requestID, method, path, clientIP string) LogFields {
	f[FieldRequestID] = requestID
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldClientIP] = clientIP
	return f
}

// WithResponse adds HTTP response fields
func (f LogFields) WithResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
