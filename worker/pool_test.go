package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gofhir/cdaconvert"
)

type stubConverter struct {
	calls atomic.Int64
	fn    func(document []byte) (*cdaconvert.Result, error)
}

func (c *stubConverter) Convert(_ context.Context, document []byte) (*cdaconvert.Result, error) {
	c.calls.Add(1)
	if c.fn != nil {
		return c.fn(document)
	}
	return cdaconvert.NewResult(), nil
}

func TestConvertBatch(t *testing.T) {
	conv := &stubConverter{fn: func(document []byte) (*cdaconvert.Result, error) {
		res := cdaconvert.NewResult()
		res.DocumentID = string(document)
		return res, nil
	}}
	pool := NewPool(conv, 3)

	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = Job{ID: fmt.Sprintf("job-%d", i), Document: []byte(fmt.Sprintf("doc-%d", i))}
	}

	results := pool.ConvertBatch(context.Background(), jobs)
	if len(results) != len(jobs) {
		t.Fatalf("results = %d, want %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.JobID != jobs[i].ID {
			t.Errorf("result %d job id = %q, want %q", i, res.JobID, jobs[i].ID)
		}
		if res.DocumentID != string(jobs[i].Document) {
			t.Errorf("result %d out of job order", i)
		}
	}
	if got := conv.calls.Load(); got != 10 {
		t.Errorf("conversions = %d, want 10", got)
	}
}

func TestConvertBatchEmpty(t *testing.T) {
	pool := NewPool(&stubConverter{}, 2)
	if got := pool.ConvertBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("results = %d, want none", len(got))
	}
}

func TestConvertBatchConverterError(t *testing.T) {
	conv := &stubConverter{fn: func([]byte) (*cdaconvert.Result, error) {
		return nil, errors.New("internal fault")
	}}
	pool := NewPool(conv, 1)

	results := pool.ConvertBatch(context.Background(), []Job{{ID: "a", Document: []byte("x")}})
	if len(results) != 1 {
		t.Fatal("one result per job")
	}
	res := results[0]
	if !res.Rejected() {
		t.Error("a converter error should reject the job's result")
	}
	rej, _ := res.Rejection()
	if rej.Code != cdaconvert.IssueTypeProcessing {
		t.Errorf("rejection code = %q", rej.Code)
	}
	if res.JobID != "a" {
		t.Errorf("job id = %q", res.JobID)
	}
}

func TestConvertBatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conv := &stubConverter{fn: func([]byte) (*cdaconvert.Result, error) {
		cancel()
		return cdaconvert.NewResult(), nil
	}}
	pool := NewPool(conv, 1)

	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = Job{ID: fmt.Sprintf("job-%d", i), Document: []byte("x")}
	}

	results := pool.ConvertBatch(ctx, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("results = %d, want one per job", len(results))
	}

	var unstarted int
	for _, res := range results {
		if res == nil {
			t.Fatal("every job gets a result")
		}
		if rej, ok := res.Rejection(); ok && strings.Contains(rej.Diagnostics, "conversion not started") {
			unstarted++
		}
	}
	if unstarted == 0 {
		t.Error("cancelled batch should leave unstarted jobs with a cancellation result")
	}
	if got := conv.calls.Load(); got == int64(len(jobs)) {
		t.Error("cancellation should stop handing out work")
	}
}

func TestWorkerCountDefaults(t *testing.T) {
	if NewPool(&stubConverter{}, 0).Workers() < 1 {
		t.Error("worker count should default to at least one")
	}
	if got := NewPool(&stubConverter{}, 7).Workers(); got != 7 {
		t.Errorf("Workers = %d, want 7", got)
	}
}
