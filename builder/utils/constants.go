package utils

import (
	"runtime"
)

const (
	MaxBufferSize    = 64 * 1024 // 64KB, larger pooled buffers are dropped
	MaxWorkers       = 32
	WorkerBufferSize = 4
)

// DefaultWorkerCount returns one worker per CPU, capped at MaxWorkers
func DefaultWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		return 2
	}
	if workers > MaxWorkers {
		return MaxWorkers
	}
	return workers
}
