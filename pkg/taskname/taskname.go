package taskname

const (
	// Order lifecycle tasks
	OrderCreated          = "order:created"
	OrderQueuedGeneration = "order:queued_generation"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)
