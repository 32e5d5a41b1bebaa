package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NodeSnapshot is the persisted state of one node at the end of a period.
type NodeSnapshot struct {
	RunID      string            `json:"run_id"`
	Period     int               `json:"period"`
	Node       string            `json:"node"`
	Stock      map[string]int    `json:"stock"`
	Backorders int               `json:"backorders"`
	Orders     map[string]int    `json:"orders"`
	Pipeline   []ReceiptSnapshot `json:"pipeline"`
}

// ReceiptSnapshot is the persisted form of an in-transit receipt.
type ReceiptSnapshot struct {
	SKU      string `json:"sku"`
	ETA      int    `json:"eta"`
	Quantity int    `json:"quantity"`
}

// SnapshotWriter persists per-period chain state as JSON lines, one node
// per line. Every writer carries a fresh run identifier so output from
// repeated runs into the same file lineage stays separable.
type SnapshotWriter struct {
	runID string
	file  *os.File
	w     *bufio.Writer
	enc   *json.Encoder
}

// NewSnapshotWriter creates (or truncates) the snapshot file at path.
func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot file: %w", err)
	}
	w := bufio.NewWriter(file)
	return &SnapshotWriter{
		runID: uuid.NewString(),
		file:  file,
		w:     w,
		enc:   json.NewEncoder(w),
	}, nil
}

// RunID returns the identifier stamped on every snapshot line.
func (sw *SnapshotWriter) RunID() string {
	return sw.runID
}

// WritePeriod records the state of every node in the chain, in node
// insertion order.
func (sw *SnapshotWriter) WritePeriod(period int, chain *SupplyChain) error {
	for _, n := range chain.Nodes() {
		snap := NodeSnapshot{
			RunID:      sw.runID,
			Period:     period,
			Node:       n.ID,
			Stock:      n.Stock.AsMap(),
			Backorders: n.Backorders,
			Orders:     n.Orders.AsMap(),
			Pipeline:   make([]ReceiptSnapshot, 0, n.Pipeline.Len()),
		}
		for _, r := range n.Pipeline.Receipts() {
			snap.Pipeline = append(snap.Pipeline, ReceiptSnapshot{SKU: r.SKU, ETA: r.ETA, Quantity: r.Quantity})
		}
		if err := sw.enc.Encode(snap); err != nil {
			return fmt.Errorf("writing snapshot for node %s: %w", n.ID, err)
		}
	}
	return nil
}

// Close flushes buffered snapshots and closes the file.
func (sw *SnapshotWriter) Close() error {
	if err := sw.w.Flush(); err != nil {
		sw.file.Close()
		return fmt.Errorf("flushing snapshot file: %w", err)
	}
	if err := sw.file.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}
	return nil
}
