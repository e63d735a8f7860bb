package cdaconvert

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsConversions(t *testing.T) {
	m := NewMetrics()

	m.RecordConversion(10*time.Millisecond, false)
	m.RecordConversion(30*time.Millisecond, true)
	m.RecordConversion(20*time.Millisecond, false)

	if got := m.ConversionsTotal(); got != 3 {
		t.Errorf("ConversionsTotal = %d, want 3", got)
	}
	if got := m.ConversionsRejected(); got != 1 {
		t.Errorf("ConversionsRejected = %d, want 1", got)
	}
	if got := m.RejectionRate(); got < 0.33 || got > 0.34 {
		t.Errorf("RejectionRate = %f", got)
	}
	if got := m.MinConversionTime(); got != 10*time.Millisecond {
		t.Errorf("Min = %v", got)
	}
	if got := m.MaxConversionTime(); got != 30*time.Millisecond {
		t.Errorf("Max = %v", got)
	}
	if got := m.AverageConversionTime(); got != 20*time.Millisecond {
		t.Errorf("Avg = %v", got)
	}
}

func TestMetricsZeroValueQueries(t *testing.T) {
	m := NewMetrics()
	if m.RejectionRate() != 0 {
		t.Error("rate on no conversions should be zero")
	}
	if m.MinConversionTime() != 0 || m.AverageConversionTime() != 0 {
		t.Error("times on no conversions should be zero")
	}
}

func TestMetricsStages(t *testing.T) {
	m := NewMetrics()
	m.RecordStage("parse", 4*time.Millisecond, 2)
	m.RecordStage("parse", 6*time.Millisecond, 0)
	m.RecordStage("map", 1*time.Millisecond, 0)

	stats, ok := m.StageStats("parse")
	if !ok {
		t.Fatal("parse stage should be tracked")
	}
	if stats.Invocations != 2 || stats.IssuesFound != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgTime != 5*time.Millisecond {
		t.Errorf("AvgTime = %v", stats.AvgTime)
	}

	if _, ok := m.StageStats("missing"); ok {
		t.Error("untracked stage should report false")
	}
	if got := len(m.AllStageStats()); got != 2 {
		t.Errorf("AllStageStats = %d stages, want 2", got)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordConversion(time.Millisecond, j%2 == 0)
				m.RecordStatement(false)
				m.RecordDecision()
				m.RecordStage("map", time.Microsecond, 0)
			}
		}()
	}
	wg.Wait()

	if got := m.ConversionsTotal(); got != 800 {
		t.Errorf("ConversionsTotal = %d, want 800", got)
	}
	if got := m.StatementsParsed(); got != 800 {
		t.Errorf("StatementsParsed = %d, want 800", got)
	}
	if got := m.DecisionsRecorded(); got != 800 {
		t.Errorf("DecisionsRecorded = %d, want 800", got)
	}
}

func TestMetricsReset(t *testing.T) {
	m := NewMetrics()
	m.RecordConversion(time.Millisecond, true)
	m.RecordResources(5)
	m.RecordStage("parse", time.Millisecond, 1)

	m.Reset()

	if m.ConversionsTotal() != 0 || m.ResourcesEmitted() != 0 {
		t.Error("counters should be zero after reset")
	}
	if m.MinConversionTime() != 0 {
		t.Error("min time should report zero after reset")
	}
	if len(m.AllStageStats()) != 0 {
		t.Error("stage stats should be empty after reset")
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordConversion(2*time.Millisecond, false)
	m.RecordResources(7)

	s := m.Snapshot()
	if s.ConversionsTotal != 1 || s.ResourcesEmitted != 7 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Timestamp.IsZero() {
		t.Error("snapshot timestamp should be set")
	}

	exported := m.Export()
	if exported["resources_emitted"].(uint64) != 7 {
		t.Errorf("export = %v", exported)
	}
}
