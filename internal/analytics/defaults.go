package analytics

import "time"

const (
	defaultBatchSize = 500
	retrySleep       = 5 * time.Second
)
