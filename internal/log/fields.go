package log

// Field names shared by every structured log line.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldKind       = "kind"
	FieldRecordID   = "record_id"
	FieldEventID    = "event_id"
	FieldGatewayOp  = "gateway_op"
	FieldRows       = "rows"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentGateway   = "gateway"
	ComponentStorage   = "storage"
	ComponentServices  = "services"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operation names.
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpCopy     = "copy"
	OpExport   = "export"
	OpValidate = "validate"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Error categories.
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeGateway       = "gateway_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// Fields builds an ordered attribute list for slog.
type Fields []any

func NewFields() Fields { return make(Fields, 0, 16) }

func (f Fields) With(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) WithComponent(component string) Fields {
	return f.With(FieldComponent, component)
}

func (f Fields) WithRequestID(id string) Fields {
	if id == "" {
		return f
	}
	return f.With(FieldRequestID, id)
}

func (f Fields) WithClientIP(ip string) Fields {
	return f.With(FieldClientIP, ip)
}

func (f Fields) WithError(err error) Fields {
	if err == nil {
		return f
	}
	return f.With(FieldError, err.Error())
}

func (f Fields) WithOperation(op string) Fields {
	return f.With(FieldOperation, op)
}

// WithRecord tags the entity kind and id a line is about.
func (f Fields) WithRecord(kind string, id int64) Fields {
	f = f.With(FieldKind, kind)
	if id != 0 {
		f = f.With(FieldRecordID, id)
	}
	return f
}

func (f Fields) WithHTTPRequest(method, path, query, userAgent string) Fields {
	f = f.With(FieldMethod, method).With(FieldPath, path)
	if query != "" {
		f = f.With(FieldQuery, query)
	}
	if userAgent != "" {
		f = f.With(FieldUserAgent, userAgent)
	}
	return f
}

func (f Fields) WithHTTPResponse(status int, durationMs int64) Fields {
	return f.With(FieldStatusCode, status).
		With(FieldDuration, durationMs).
		With(FieldSuccess, status < 400)
}
