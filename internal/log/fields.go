package log

// Standard field names used across structured log records.
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldID          = "transaction_id"
	FieldDescription = "description"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldAccount     = "account"
	FieldDate        = "date"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatus      = "status"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
)

// Component names.
const (
	ComponentApp     = "fintrack"
	ComponentAPI     = "api"
	ComponentStorage = "storage"
	ComponentEngine  = "recurring_engine"
	ComponentWorker  = "sync_worker"
	ComponentSweep   = "recurring_worker"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
)
