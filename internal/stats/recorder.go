// Package stats aggregates latencies of repeated requests.
package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range in microseconds: 1µs to 1 hour, 3 significant figures
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder collects request outcomes. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	hist     *hdrhistogram.Histogram
	statuses map[int]int64
	failures int64
	bytes    int64
	start    time.Time
	last     time.Time
}

// Summary is a point-in-time view of a Recorder
type Summary struct {
	Requests int64         `json:"requests" yaml:"requests"`
	Failures int64         `json:"failures" yaml:"failures"`
	Statuses map[int]int64 `json:"statuses" yaml:"statuses"`
	Bytes    int64         `json:"bytes" yaml:"bytes"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
	RPS      float64       `json:"rps" yaml:"rps"`

	Min    time.Duration `json:"min" yaml:"min"`
	Max    time.Duration `json:"max" yaml:"max"`
	Mean   time.Duration `json:"mean" yaml:"mean"`
	StdDev time.Duration `json:"stddev" yaml:"stddev"`
	P50    time.Duration `json:"p50" yaml:"p50"`
	P90    time.Duration `json:"p90" yaml:"p90"`
	P95    time.Duration `json:"p95" yaml:"p95"`
	P99    time.Duration `json:"p99" yaml:"p99"`
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{
		hist:     hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		statuses: make(map[int]int64),
	}
}

// Record adds one request. status is 0 for requests that got no response;
// those count as failures and are left out of the latency histogram.
func (r *Recorder) Record(d time.Duration, status int, size int) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = now.Add(-d)
	}
	r.last = now

	if status == 0 {
		r.failures++
		return
	}

	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}
	// RecordValue only fails outside the range clamped above
	_ = r.hist.RecordValue(micros)

	r.statuses[status]++
	r.bytes += int64(size)
}

// Summary returns the aggregated view
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Requests: r.hist.TotalCount() + r.failures,
		Failures: r.failures,
		Statuses: make(map[int]int64, len(r.statuses)),
		Bytes:    r.bytes,
	}
	for code, n := range r.statuses {
		s.Statuses[code] = n
	}
	if !r.start.IsZero() {
		s.Elapsed = r.last.Sub(r.start)
		if s.Elapsed > 0 {
			s.RPS = float64(s.Requests) / s.Elapsed.Seconds()
		}
	}
	if r.hist.TotalCount() == 0 {
		return s
	}

	s.Min = micros(r.hist.Min())
	s.Max = micros(r.hist.Max())
	s.Mean = micros(int64(r.hist.Mean()))
	s.StdDev = micros(int64(r.hist.StdDev()))
	s.P50 = micros(r.hist.ValueAtQuantile(50))
	s.P90 = micros(r.hist.ValueAtQuantile(90))
	s.P95 = micros(r.hist.ValueAtQuantile(95))
	s.P99 = micros(r.hist.ValueAtQuantile(99))
	return s
}

// Reset clears all recorded values
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hist.Reset()
	r.statuses = make(map[int]int64)
	r.failures, r.bytes = 0, 0
	r.start, r.last = time.Time{}, time.Time{}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
