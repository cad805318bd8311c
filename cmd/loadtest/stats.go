package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
)

// scenarioKey: серия, в которую пишутся целые сценарии.
const scenarioKey = "scenario"

type latencyMs struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	Max  float64 `json:"max"`
}

type seriesSummary struct {
	Requests    int64            `json:"requests"`
	Errors      int64            `json:"errors"`
	ErrorRatio  float64          `json:"error_ratio"`
	StatusCodes map[string]int64 `json:"status_codes"`
	Latency     latencyMs        `json:"latency_ms"`
}

type summary struct {
	Mode       loadMode                 `json:"mode"`
	Target     string                   `json:"target"`
	Started    time.Time                `json:"started"`
	Elapsed    float64                  `json:"elapsed_seconds"`
	Throughput float64                  `json:"scenarios_per_second"`
	Scenarios  seriesSummary            `json:"scenarios"`
	Methods    map[string]seriesSummary `json:"methods"`
}

type series struct {
	codes     map[codes.Code]int64
	latencies []time.Duration
}

func (s *series) summarize() seriesSummary {
	out := seriesSummary{
		Requests:    int64(len(s.latencies)),
		StatusCodes: make(map[string]int64, len(s.codes)),
		Latency:     summarizeLatency(s.latencies),
	}
	for code, n := range s.codes {
		out.StatusCodes[code.String()] = n
		if code != codes.OK {
			out.Errors += n
		}
	}
	if out.Requests > 0 {
		out.ErrorRatio = float64(out.Errors) / float64(out.Requests)
	}
	return out
}

// recorder собирает задержки и коды ответов по сериям; безопасен для
// параллельной записи.
type recorder struct {
	mu     sync.Mutex
	series map[string]*series
}

func newRecorder() *recorder {
	return &recorder{series: make(map[string]*series)}
}

func (r *recorder) observe(name string, took time.Duration, code codes.Code) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.series[name]
	if s == nil {
		s = &series{codes: make(map[codes.Code]int64)}
		r.series[name] = s
	}
	s.codes[code]++
	s.latencies = append(s.latencies, took)
}

func (r *recorder) summarize(opts options, started time.Time, elapsed time.Duration) summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := summary{
		Mode:    opts.mode,
		Target:  opts.target,
		Started: started.UTC(),
		Elapsed: elapsed.Seconds(),
		Methods: make(map[string]seriesSummary, len(r.series)),
	}
	for name, s := range r.series {
		if name == scenarioKey {
			out.Scenarios = s.summarize()
			continue
		}
		out.Methods[name] = s.summarize()
	}
	if elapsed > 0 {
		out.Throughput = float64(out.Scenarios.Requests) / elapsed.Seconds()
	}
	return out
}

func summarizeLatency(samples []time.Duration) latencyMs {
	if len(samples) == 0 {
		return latencyMs{}
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	return latencyMs{
		Min:  ms(sorted[0]),
		Mean: ms(total / time.Duration(len(sorted))),
		P50:  ms(nearestRank(sorted, 50)),
		P90:  ms(nearestRank(sorted, 90)),
		P95:  ms(nearestRank(sorted, 95)),
		P99:  ms(nearestRank(sorted, 99)),
		Max:  ms(sorted[len(sorted)-1]),
	}
}

// nearestRank: перцентиль по методу ближайшего ранга; sorted не пуст.
func nearestRank(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func printSummary(w io.Writer, s summary, budget string) {
	fmt.Fprintf(w, "report load test: mode=%s target=%s budget=%s\n", s.Mode, s.Target, budget)
	fmt.Fprintf(w, "scenarios: %d ok=%d errors=%d (%.2f%%) in %.2fs, %.1f/s\n",
		s.Scenarios.Requests, s.Scenarios.Requests-s.Scenarios.Errors, s.Scenarios.Errors,
		s.Scenarios.ErrorRatio*100, s.Elapsed, s.Throughput)
	l := s.Scenarios.Latency
	fmt.Fprintf(w, "scenario ms: min=%.2f mean=%.2f p50=%.2f p90=%.2f p99=%.2f max=%.2f\n",
		l.Min, l.Mean, l.P50, l.P90, l.P99, l.Max)

	for _, name := range slices.Sorted(maps.Keys(s.Methods)) {
		m := s.Methods[name]
		fmt.Fprintf(w, "  %-18s n=%-6d err=%-4d p50=%.2fms p95=%.2fms\n",
			name, m.Requests, m.Errors, m.Latency.P50, m.Latency.P95)
	}
}

// writeSummary пишет JSON-сводку. Относительный путь не может выходить за
// пределы рабочего каталога.
func writeSummary(path string, s summary) error {
	if !filepath.IsAbs(path) && !filepath.IsLocal(path) {
		return fmt.Errorf("output %q escapes the working directory", path)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return os.WriteFile(filepath.Clean(path), append(data, '\n'), 0o644)
}
