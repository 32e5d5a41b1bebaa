package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// EventKind names a metric event emitted during simulation.
type EventKind string

const (
	// EventSalesSatisfied is demand (or a backorder) served from stock.
	EventSalesSatisfied EventKind = "sales-satisfied"
	// EventSalesBackordered is demand that could not be served this period.
	EventSalesBackordered EventKind = "sales-backordered"
	// EventReceipt is a matured shipment arriving into stock.
	EventReceipt EventKind = "receipt"
	// EventRelease is a shipment leaving a supplier for a downstream node.
	EventRelease EventKind = "release"
	// EventOrder is a replenishment order placed by a node.
	EventOrder EventKind = "order"
)

// Record is one metric event. Records are emitted in the order they occur;
// consumers must not assume any grouping. SKU is set on receipt and release
// events only, and for receipts may differ from the owning node's SKU.
type Record struct {
	Period   int       `json:"period"`
	Node     string    `json:"node"`
	Event    EventKind `json:"event"`
	Quantity int       `json:"quantity"`
	SKU      string    `json:"sku,omitempty"`
}

// Recorder is the sink for metric records. Implementations may buffer but
// must preserve emission order. A Record error terminates the run.
type Recorder interface {
	Record(rec Record) error
}

// Discard is a Recorder that drops every record.
type Discard struct{}

func (Discard) Record(Record) error { return nil }

// MemoryRecorder accumulates records in memory, for tests and programmatic
// consumers.
type MemoryRecorder struct {
	Records []Record
}

// Record appends rec to the in-memory list.
func (m *MemoryRecorder) Record(rec Record) error {
	m.Records = append(m.Records, rec)
	return nil
}

// ByEvent returns the collected records of the given kind, preserving order.
func (m *MemoryRecorder) ByEvent(kind EventKind) []Record {
	var out []Record
	for _, rec := range m.Records {
		if rec.Event == kind {
			out = append(out, rec)
		}
	}
	return out
}

// FileRecorder writes records as JSON, one object per line, through a
// buffered writer. Close flushes and closes the underlying file; callers
// must Close on every exit path or buffered records are lost.
type FileRecorder struct {
	file *os.File
	w    *bufio.Writer
	enc  *json.Encoder
}

// NewFileRecorder creates (or truncates) the metrics file at path.
func NewFileRecorder(path string) (*FileRecorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating metrics file: %w", err)
	}
	w := bufio.NewWriter(file)
	return &FileRecorder{file: file, w: w, enc: json.NewEncoder(w)}, nil
}

// Record writes one JSON line.
func (f *FileRecorder) Record(rec Record) error {
	if err := f.enc.Encode(rec); err != nil {
		return fmt.Errorf("writing metric record: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the file.
func (f *FileRecorder) Close() error {
	if err := f.w.Flush(); err != nil {
		f.file.Close()
		return fmt.Errorf("flushing metrics file: %w", err)
	}
	if err := f.file.Close(); err != nil {
		return fmt.Errorf("closing metrics file: %w", err)
	}
	return nil
}
