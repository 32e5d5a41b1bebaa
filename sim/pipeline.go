package sim

// Receipt is an in-transit shipment headed for a node. ETA counts remaining
// periods, not an absolute period; a receipt with ETA 0 is matured and will
// be picked up by the next PopMatured. The SKU may differ from the owning
// node's SKU: component shipments land in the component slot of the node's
// stock when they arrive.
type Receipt struct {
	SKU      string
	ETA      int
	Quantity int
}

// Pipeline holds the in-transit receipts for one node in insertion order.
// Receipts with equal ETA mature in the order they were added.
type Pipeline struct {
	receipts []Receipt
}

// NewPipeline returns a pipeline preloaded with the given receipts.
func NewPipeline(receipts ...Receipt) *Pipeline {
	p := &Pipeline{}
	p.receipts = append(p.receipts, receipts...)
	return p
}

// Add appends a receipt to the pipeline.
func (p *Pipeline) Add(r Receipt) {
	p.receipts = append(p.receipts, r)
}

// Len returns the number of in-transit receipts.
func (p *Pipeline) Len() int {
	return len(p.receipts)
}

// Receipts returns the pipeline contents for iteration.
// The returned slice is the pipeline's internal storage -- callers may
// iterate over it but MUST NOT append to or reslice it.
func (p *Pipeline) Receipts() []Receipt {
	return p.receipts
}

// PopMatured removes and returns all receipts whose ETA has reached zero,
// preserving their insertion order.
func (p *Pipeline) PopMatured() []Receipt {
	var matured []Receipt
	remaining := p.receipts[:0]
	for _, r := range p.receipts {
		if r.ETA <= 0 {
			matured = append(matured, r)
		} else {
			remaining = append(remaining, r)
		}
	}
	p.receipts = remaining
	return matured
}

// Age decrements the ETA of every receipt by one period. Receipts reaching
// ETA 0 stay in the pipeline until the next PopMatured.
func (p *Pipeline) Age() {
	for i := range p.receipts {
		p.receipts[i].ETA--
	}
}

// SumBySKU totals the in-transit quantity per SKU.
func (p *Pipeline) SumBySKU() *Quantities {
	q := NewQuantities()
	for _, r := range p.receipts {
		q.Add(r.SKU, r.Quantity)
	}
	return q
}
