package transport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDebugLimit caps the number of records a DebugLog keeps
const DefaultDebugLimit = 100

// Record describes one exchange as seen by a driver
type Record struct {
	ID           string
	Time         time.Time
	Driver       string
	Address      string
	Request      []byte
	ResponseSize int
	Duration     time.Duration
	Reused       bool
	Err          string
}

// DebugLog keeps the most recent exchange records in memory and mirrors
// them to a logger at debug level. A nil *DebugLog discards everything.
type DebugLog struct {
	mu      sync.Mutex
	records []Record
	limit   int
	logger  logrus.FieldLogger
	enabled atomic.Bool
}

// NewDebugLog creates a log holding up to limit records
func NewDebugLog(limit int, logger logrus.FieldLogger) *DebugLog {
	if limit <= 0 {
		limit = DefaultDebugLimit
	}
	d := &DebugLog{limit: limit, logger: logger}
	d.enabled.Store(true)
	return d
}

// Enable switches recording on or off
func (d *DebugLog) Enable(on bool) {
	if d != nil {
		d.enabled.Store(on)
	}
}

// Enabled reports whether records are kept
func (d *DebugLog) Enabled() bool {
	return d != nil && d.enabled.Load()
}

// Add stores r, assigning it an ID
func (d *DebugLog) Add(r Record) {
	if !d.Enabled() {
		return
	}
	r.ID = uuid.NewString()

	d.mu.Lock()
	d.records = append(d.records, r)
	if len(d.records) > d.limit {
		d.records = d.records[len(d.records)-d.limit:]
	}
	d.mu.Unlock()

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"id":        r.ID,
			"driver":    r.Driver,
			"address":   r.Address,
			"bytes_in":  r.ResponseSize,
			"bytes_out": len(r.Request),
			"duration":  r.Duration,
			"reused":    r.Reused,
			"error":     r.Err,
		}).Debug("exchange")
	}
}

// Records returns a copy of the stored records, oldest first
func (d *DebugLog) Records() []Record {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Reset drops all records
func (d *DebugLog) Reset() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.records = nil
	d.mu.Unlock()
}

// record builds and stores the record for a finished exchange
func record(d *DebugLog, driver string, ex *Exchange, res *Result, start time.Time, err error) {
	if !d.Enabled() {
		return
	}
	r := Record{
		Time:     start,
		Driver:   driver,
		Address:  ex.Endpoint.Address(),
		Request:  append([]byte(nil), ex.Raw...),
		Duration: time.Since(start),
	}
	if res != nil {
		r.ResponseSize = len(res.Raw)
		r.Reused = res.Reused
	}
	if err != nil {
		r.Err = err.Error()
	}
	d.Add(r)
}
