package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ArcadiiFlorean/Consultant-host-version/internal/client"
)

// operationMetrics tallies one endpoint's outcomes by error kind.
type operationMetrics struct {
	mu        sync.Mutex
	total     int
	success   int
	failures  map[client.ErrorKind]int
	latencies []time.Duration
}

func (om *operationMetrics) Record(latency time.Duration, err error) {
	om.mu.Lock()
	defer om.mu.Unlock()

	om.total++
	om.latencies = append(om.latencies, latency)
	if err == nil {
		om.success++
		return
	}
	if om.failures == nil {
		om.failures = make(map[client.ErrorKind]int)
	}
	om.failures[client.KindOf(err)]++
}

func (om *operationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[minInt(len(latencies)*50/100, len(latencies)-1)]
	p95 = latencies[minInt(len(latencies)*95/100, len(latencies)-1)]
	return avg, min, max, p50, p95
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// loadRunner drives concurrent reads against the API: slot listing, slot checks
// on dates it has seen, and the package list.
type loadRunner struct {
	client   *client.Client
	workers  int
	duration time.Duration
	logger   *zap.Logger

	mu    sync.RWMutex
	seen  []client.Slot
	slots operationMetrics
	check operationMetrics
	pkgs  operationMetrics
}

func (p *loadRunner) Run(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, p.duration)
	defer cancel()

	p.logger.Info("starting load run", zap.Duration("duration", p.duration), zap.Int("workers", p.workers))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	p.logger.Info("load run complete")
}

func (p *loadRunner) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for ctx.Err() == nil {
		switch r := rng.Float64(); {
		case r < 0.5:
			p.doListSlots(ctx)
		case r < 0.8:
			p.doCheck(ctx, rng)
		default:
			p.doListPackages(ctx)
		}
	}
}

func (p *loadRunner) doListSlots(ctx context.Context) {
	start := time.Now()
	slots, err := p.client.FetchSlots(ctx)
	if ctx.Err() != nil {
		return
	}
	p.slots.Record(time.Since(start), err)

	if err == nil && len(slots) > 0 {
		p.mu.Lock()
		p.seen = slots
		p.mu.Unlock()
	}
}

func (p *loadRunner) doCheck(ctx context.Context, rng *rand.Rand) {
	p.mu.RLock()
	if len(p.seen) == 0 {
		p.mu.RUnlock()
		p.doListSlots(ctx)
		return
	}
	s := p.seen[rng.Intn(len(p.seen))]
	p.mu.RUnlock()

	start := time.Now()
	_, err := p.client.CheckAvailability(ctx, s.SlotDate, s.SlotTime)
	if ctx.Err() != nil {
		return
	}
	p.check.Record(time.Since(start), err)
}

func (p *loadRunner) doListPackages(ctx context.Context) {
	start := time.Now()
	_, err := p.client.FetchServices(ctx)
	if ctx.Err() != nil {
		return
	}
	p.pkgs.Record(time.Since(start), err)
}

func (p *loadRunner) PrintReport(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 80))
	fmt.Fprintln(w, "LOAD REPORT")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Duration: %s\n", p.duration)
	fmt.Fprintf(w, "Workers: %d\n\n", p.workers)

	printOperationReport(w, "List slots", &p.slots)
	printOperationReport(w, "Check slot", &p.check)
	printOperationReport(w, "List packages", &p.pkgs)
}

func printOperationReport(w io.Writer, name string, om *operationMetrics) {
	om.mu.Lock()
	total, success := om.total, om.success
	failures := make(map[client.ErrorKind]int, len(om.failures))
	for k, v := range om.failures {
		failures[k] = v
	}
	om.mu.Unlock()

	if total == 0 {
		return
	}

	avg, min, max, p50, p95 := om.Stats()

	fmt.Fprintf(w, "%s:\n", name)
	fmt.Fprintf(w, "  Total: %d\n", total)
	fmt.Fprintf(w, "  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)

	kinds := make([]client.ErrorKind, 0, len(failures))
	for k := range failures {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(w, "  %s: %d (%.1f%%)\n", k, failures[k], float64(failures[k])/float64(total)*100)
	}

	fmt.Fprintf(w, "  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
}
