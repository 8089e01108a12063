package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldRenderID   = "render_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldErrorKind  = "error_kind"
	FieldOperation  = "operation"
	FieldSource     = "source"
	FieldVariant    = "variant"
	FieldRecords    = "records"
	FieldUsers      = "users"
	FieldChart      = "chart"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentReport   = "report"
	ComponentCharts   = "charts"
	ComponentJournal  = "journal"
	ComponentAMQP     = "amqp"
	ComponentTemplate = "template"
	ComponentCLI      = "cli"
)

// Operations defines standard operation names
const (
	OpRender   = "render"
	OpRecord   = "record"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error and, when known, its kind.
func (f LogFields) WithError(err error, kind string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	if kind != "" {
		f[FieldErrorKind] = kind
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRender adds the identity and size of a render cycle.
func (f LogFields) WithRender(id, source, variant string, records, users int) LogFields {
	f[FieldRenderID] = id
	f[FieldSource] = source
	f[FieldVariant] = variant
	f[FieldRecords] = records
	f[FieldUsers] = users
	return f
}

// WithDuration adds the elapsed milliseconds.
func (f LogFields) WithDuration(ms int64) LogFields {
	f[FieldDuration] = ms
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
