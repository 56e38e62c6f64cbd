package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldSuccess       = "success"
	FieldDuration      = "duration_ms"
	FieldKey           = "key"
	FieldBackend       = "backend"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldBank          = "bank"
	FieldAmount        = "amount"
	FieldCount         = "count"
	FieldRevision      = "revision"
	FieldYear          = "year"
	FieldMonth         = "month"
	FieldPath          = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentStore   = "store"
	ComponentStorage = "storage"
	ComponentBackup  = "backup"
	ComponentReport  = "report"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentAdvisor = "advisor"
	ComponentBackend = "backend"
	ComponentMetrics = "metrics"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpLoad        = "load"
	OpSave        = "save"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpBulkUpdate  = "bulk_update"
	OpDelete      = "delete"
	OpClear       = "clear"
	OpCancelClear = "cancel_clear"
	OpMark        = "mark_reimbursable"
	OpUnmark      = "unmark_reimbursable"
	OpBulkClear   = "bulk_clear"
	OpReplace     = "replace"
	OpReset       = "reset"
	OpExport      = "export"
	OpImport      = "import"
	OpPublish     = "publish"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation = "validation_error"
	ErrorTypeNotFound   = "not_found_error"
	ErrorTypeConflict   = "conflict_error"
	ErrorTypeStorage    = "storage_unavailable"
	ErrorTypeCorrupt    = "corrupt_snapshot"
	ErrorTypeInternal   = "internal_error"
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

// WithErrorType adds the error category field
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithKey adds the persistence key field
func (f LogFields) WithKey(key string) LogFields {
	f[FieldKey] = key
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, category, amount string) LogFields {
	f[FieldTransactionID] = id
	f[FieldCategory] = category
	f[FieldAmount] = amount
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
