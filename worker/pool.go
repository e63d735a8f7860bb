// Package worker provides a batch conversion pool. Documents are
// independent, so the pool needs no coordination beyond handing out work:
// each conversion owns its registry and parse tree.
package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/gofhir/cdaconvert"
)

// Converter is the conversion dependency of the pool. *engine.Converter
// satisfies it.
type Converter interface {
	Convert(ctx context.Context, document []byte) (*cdaconvert.Result, error)
}

// Job is one document to convert. ID correlates the job with its result.
type Job struct {
	ID       string
	Document []byte
}

// Pool converts batches of independent documents in parallel.
type Pool struct {
	converter Converter
	workers   int
}

// NewPool creates a pool with the given worker count. Counts below one
// default to the number of CPUs.
func NewPool(converter Converter, workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{converter: converter, workers: workers}
}

// Workers returns the pool's worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// ConvertBatch converts all jobs and returns one result per job, in job
// order. A cancelled context stops handing out work; jobs never started
// get a result carrying the cancellation.
func (p *Pool) ConvertBatch(ctx context.Context, jobs []Job) []*cdaconvert.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*cdaconvert.Result, len(jobs))

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				results[idx] = p.convertOne(ctx, jobs[idx])
			}
		}()
	}

feed:
	for idx := range jobs {
		select {
		case indexes <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	for idx := range results {
		if results[idx] == nil {
			results[idx] = cancelledResult(jobs[idx].ID, ctx.Err())
		}
	}
	return results
}

func (p *Pool) convertOne(ctx context.Context, job Job) *cdaconvert.Result {
	res, err := p.converter.Convert(ctx, job.Document)
	if res == nil {
		res = cdaconvert.NewResult()
	}
	if err != nil && !res.Rejected() {
		res.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeProcessing).
			Diagnostics(err.Error()).
			Stage("batch").Build())
	}
	res.JobID = job.ID
	return res
}

func cancelledResult(jobID string, cause error) *cdaconvert.Result {
	res := cdaconvert.NewResult()
	res.JobID = jobID
	diag := "conversion not started: batch cancelled"
	if cause != nil {
		diag = "conversion not started: " + cause.Error()
	}
	res.AddIssue(cdaconvert.Fatal(cdaconvert.IssueTypeProcessing).
		Diagnostics(diag).
		Stage("batch").Build())
	return res
}
