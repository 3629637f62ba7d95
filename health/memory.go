package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckConfig configures the memory health check.
type MemoryCheckConfig struct {
	// ID is the check identifier. Default: "memory"
	ID string

	// WarningThreshold is the usage ratio that triggers a warning.
	// Value should be between 0 and 1. Default: 0.8 (80%)
	WarningThreshold float64

	// CriticalThreshold is the usage ratio that triggers an error.
	// Value should be between 0 and 1. Default: 0.95 (95%)
	CriticalThreshold float64

	// MaxAlloc is the maximum expected allocation in bytes.
	// If zero, the memory obtained from the OS is used.
	MaxAlloc uint64
}

// MemoryCheck reports heap usage against configured thresholds.
type MemoryCheck struct {
	config   MemoryCheckConfig
	readStat func(*runtime.MemStats)
}

// NewMemoryCheck creates a new memory health check.
func NewMemoryCheck(config MemoryCheckConfig) *MemoryCheck {
	if config.ID == "" {
		config.ID = "memory"
	}
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = config.WarningThreshold + 0.1
		if config.CriticalThreshold > 1 {
			config.CriticalThreshold = 0.99
		}
	}

	return &MemoryCheck{config: config, readStat: runtime.ReadMemStats}
}

// ID returns the check identifier.
func (m *MemoryCheck) ID() string { return m.config.ID }

// Name returns the display name.
func (m *MemoryCheck) Name() string { return "Memory usage" }

// Run performs the memory health check.
func (m *MemoryCheck) Run(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var stats runtime.MemStats
	m.readStat(&stats)

	maxAlloc := m.config.MaxAlloc
	if maxAlloc == 0 {
		maxAlloc = stats.Sys
	}
	if maxAlloc == 0 {
		return Info("memory stats unavailable"), nil
	}

	usageRatio := float64(stats.Alloc) / float64(maxAlloc)
	details := map[string]any{
		"alloc_bytes":   stats.Alloc,
		"max_alloc":     maxAlloc,
		"usage_percent": usageRatio * 100,
		"heap_in_use":   stats.HeapInuse,
		"heap_objects":  stats.HeapObjects,
		"num_gc":        stats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	switch {
	case usageRatio >= m.config.CriticalThreshold:
		return Failure(fmt.Sprintf("memory usage critical: %.1f%%", usageRatio*100), ErrCheckFailed).
			WithRemediation("Increase the memory limit or investigate heap growth.").
			WithDetails(details), nil
	case usageRatio >= m.config.WarningThreshold:
		return Warning(fmt.Sprintf("memory usage high: %.1f%%", usageRatio*100)).
			WithRemediation("Review memory limits before usage becomes critical.").
			WithDetails(details), nil
	default:
		return Success(fmt.Sprintf("memory usage normal: %.1f%%", usageRatio*100)).
			WithDetails(details), nil
	}
}
