package cdaconvert

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks conversion performance metrics using lock-free atomic
// operations. All methods are safe for concurrent use.
type Metrics struct {
	// Conversion counts
	conversionsTotal    atomic.Uint64
	conversionsRejected atomic.Uint64

	// Timing (stored as nanoseconds)
	conversionTimeTotal atomic.Uint64
	conversionTimeMin   atomic.Uint64
	conversionTimeMax   atomic.Uint64

	// Output counts
	resourcesEmitted   atomic.Uint64
	statementsParsed   atomic.Uint64
	statementsRejected atomic.Uint64
	decisionsRecorded  atomic.Uint64

	// Per-stage timing
	stageTiming sync.Map // map[string]*stageMetrics
}

// stageMetrics tracks metrics for a single conversion stage.
type stageMetrics struct {
	invocations atomic.Uint64
	totalTime   atomic.Uint64 // nanoseconds
	issuesFound atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.conversionTimeMin.Store(^uint64(0))
	return m
}

// RecordConversion records a completed conversion.
func (m *Metrics) RecordConversion(duration time.Duration, rejected bool) {
	m.conversionsTotal.Add(1)
	if rejected {
		m.conversionsRejected.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.conversionTimeTotal.Add(ns)

	for {
		old := m.conversionTimeMin.Load()
		if ns >= old {
			break
		}
		if m.conversionTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	for {
		old := m.conversionTimeMax.Load()
		if ns <= old {
			break
		}
		if m.conversionTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordResources records the number of resources emitted by a conversion.
func (m *Metrics) RecordResources(n int) {
	if n > 0 {
		m.resourcesEmitted.Add(uint64(n))
	}
}

// RecordStatement records a parsed clinical statement.
func (m *Metrics) RecordStatement(rejected bool) {
	m.statementsParsed.Add(1)
	if rejected {
		m.statementsRejected.Add(1)
	}
}

// RecordDecision records a recoverable decision.
func (m *Metrics) RecordDecision() {
	m.decisionsRecorded.Add(1)
}

// RecordStage records metrics for a conversion stage.
func (m *Metrics) RecordStage(stageName string, duration time.Duration, issuesFound int) {
	sm := m.getOrCreateStageMetrics(stageName)
	sm.invocations.Add(1)
	sm.totalTime.Add(uint64(duration.Nanoseconds()))
	sm.issuesFound.Add(uint64(issuesFound))
}

func (m *Metrics) getOrCreateStageMetrics(name string) *stageMetrics {
	if v, ok := m.stageTiming.Load(name); ok {
		return v.(*stageMetrics)
	}
	sm := &stageMetrics{}
	actual, _ := m.stageTiming.LoadOrStore(name, sm)
	return actual.(*stageMetrics)
}

// --- Query Methods ---

// ConversionsTotal returns the total number of conversions performed.
func (m *Metrics) ConversionsTotal() uint64 {
	return m.conversionsTotal.Load()
}

// ConversionsRejected returns the number of rejected documents.
func (m *Metrics) ConversionsRejected() uint64 {
	return m.conversionsRejected.Load()
}

// RejectionRate returns the fraction of rejected conversions (0.0 to 1.0).
func (m *Metrics) RejectionRate() float64 {
	total := m.conversionsTotal.Load()
	if total == 0 {
		return 0
	}
	return float64(m.conversionsRejected.Load()) / float64(total)
}

// AverageConversionTime returns the average conversion duration.
func (m *Metrics) AverageConversionTime() time.Duration {
	total := m.conversionsTotal.Load()
	if total == 0 {
		return 0
	}
	return time.Duration(m.conversionTimeTotal.Load() / total)
}

// MinConversionTime returns the minimum conversion duration.
func (m *Metrics) MinConversionTime() time.Duration {
	minVal := m.conversionTimeMin.Load()
	if minVal == ^uint64(0) {
		return 0
	}
	return time.Duration(minVal)
}

// MaxConversionTime returns the maximum conversion duration.
func (m *Metrics) MaxConversionTime() time.Duration {
	return time.Duration(m.conversionTimeMax.Load())
}

// ResourcesEmitted returns the total resources emitted.
func (m *Metrics) ResourcesEmitted() uint64 {
	return m.resourcesEmitted.Load()
}

// StatementsParsed returns the total clinical statements parsed.
func (m *Metrics) StatementsParsed() uint64 {
	return m.statementsParsed.Load()
}

// StatementsRejected returns the total clinical statements rejected.
func (m *Metrics) StatementsRejected() uint64 {
	return m.statementsRejected.Load()
}

// DecisionsRecorded returns the total recoverable decisions recorded.
func (m *Metrics) DecisionsRecorded() uint64 {
	return m.decisionsRecorded.Load()
}

// StageStats contains statistics for one conversion stage.
type StageStats struct {
	Name        string
	Invocations uint64
	TotalTime   time.Duration
	AvgTime     time.Duration
	IssuesFound uint64
}

// StageStats returns statistics for a specific stage.
func (m *Metrics) StageStats(stageName string) (StageStats, bool) {
	v, ok := m.stageTiming.Load(stageName)
	if !ok {
		return StageStats{Name: stageName}, false
	}
	sm := v.(*stageMetrics)
	invocations := sm.invocations.Load()
	totalTime := sm.totalTime.Load()

	var avgTime time.Duration
	if invocations > 0 {
		avgTime = time.Duration(totalTime / invocations)
	}

	return StageStats{
		Name:        stageName,
		Invocations: invocations,
		TotalTime:   time.Duration(totalTime),
		AvgTime:     avgTime,
		IssuesFound: sm.issuesFound.Load(),
	}, true
}

// AllStageStats returns statistics for all stages.
func (m *Metrics) AllStageStats() []StageStats {
	var stats []StageStats
	m.stageTiming.Range(func(key, value any) bool {
		sm := value.(*stageMetrics)
		invocations := sm.invocations.Load()
		totalTime := sm.totalTime.Load()

		var avgTime time.Duration
		if invocations > 0 {
			avgTime = time.Duration(totalTime / invocations)
		}

		stats = append(stats, StageStats{
			Name:        key.(string),
			Invocations: invocations,
			TotalTime:   time.Duration(totalTime),
			AvgTime:     avgTime,
			IssuesFound: sm.issuesFound.Load(),
		})
		return true
	})
	return stats
}

// Snapshot represents a point-in-time snapshot of all metrics.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`

	ConversionsTotal    uint64  `json:"conversions_total"`
	ConversionsRejected uint64  `json:"conversions_rejected"`
	RejectionRate       float64 `json:"rejection_rate"`

	AvgConversionTimeNs uint64 `json:"avg_conversion_time_ns"`
	MinConversionTimeNs uint64 `json:"min_conversion_time_ns"`
	MaxConversionTimeNs uint64 `json:"max_conversion_time_ns"`

	ResourcesEmitted   uint64 `json:"resources_emitted"`
	StatementsParsed   uint64 `json:"statements_parsed"`
	StatementsRejected uint64 `json:"statements_rejected"`
	DecisionsRecorded  uint64 `json:"decisions_recorded"`

	Stages []StageStats `json:"stages,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	total := m.conversionsTotal.Load()

	var avgTime float64
	if total > 0 {
		avgTime = float64(m.conversionTimeTotal.Load()) / float64(total)
	}

	minTime := m.conversionTimeMin.Load()
	if minTime == ^uint64(0) {
		minTime = 0
	}

	return Snapshot{
		Timestamp:           time.Now(),
		ConversionsTotal:    total,
		ConversionsRejected: m.conversionsRejected.Load(),
		RejectionRate:       m.RejectionRate(),
		AvgConversionTimeNs: uint64(avgTime),
		MinConversionTimeNs: minTime,
		MaxConversionTimeNs: m.conversionTimeMax.Load(),
		ResourcesEmitted:    m.resourcesEmitted.Load(),
		StatementsParsed:    m.statementsParsed.Load(),
		StatementsRejected:  m.statementsRejected.Load(),
		DecisionsRecorded:   m.decisionsRecorded.Load(),
		Stages:              m.AllStageStats(),
	}
}

// Export returns metrics as a map suitable for external systems.
func (m *Metrics) Export() map[string]interface{} {
	s := m.Snapshot()
	return map[string]interface{}{
		"conversions_total":      s.ConversionsTotal,
		"conversions_rejected":   s.ConversionsRejected,
		"rejection_rate":         s.RejectionRate,
		"avg_conversion_time_ns": s.AvgConversionTimeNs,
		"min_conversion_time_ns": s.MinConversionTimeNs,
		"max_conversion_time_ns": s.MaxConversionTimeNs,
		"resources_emitted":      s.ResourcesEmitted,
		"statements_parsed":      s.StatementsParsed,
		"statements_rejected":    s.StatementsRejected,
		"decisions_recorded":     s.DecisionsRecorded,
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.conversionsTotal.Store(0)
	m.conversionsRejected.Store(0)
	m.conversionTimeTotal.Store(0)
	m.conversionTimeMin.Store(^uint64(0))
	m.conversionTimeMax.Store(0)
	m.resourcesEmitted.Store(0)
	m.statementsParsed.Store(0)
	m.statementsRejected.Store(0)
	m.decisionsRecorded.Store(0)

	m.stageTiming.Range(func(key, _ any) bool {
		m.stageTiming.Delete(key)
		return true
	})
}
