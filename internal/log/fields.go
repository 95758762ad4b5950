package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldTxID        = "transaction_id"
	FieldTxType      = "transaction_type"
	FieldCategoryKey = "category_key"
	FieldAmountCents = "amount_cents"
	FieldLimitCents  = "limit_cents"
	FieldSpentCents  = "spent_cents"
	FieldDriftCents  = "drift_cents"
	FieldStatus      = "status"
	FieldReason      = "reason"
	FieldTimeframe   = "timeframe"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentAccountant = "accountant"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentReports    = "reports"
	ComponentRateLimit  = "rate_limit"
)

// Operations defines standard operation names
const (
	OpRecord    = "record"
	OpAppend    = "append"
	OpReconcile = "reconcile"
	OpSweep     = "sweep"
	OpCreate    = "create"
	OpDelete    = "delete"
	OpList      = "list"
	OpReport    = "report"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
