package sim

// Quantities maps SKU codes to integer unit counts. It backs node stock,
// outstanding order books and release plans. A missing key reads as zero,
// and iteration follows insertion order so that allocation tie-breaks and
// emitted records are reproducible across runs.
type Quantities struct {
	keys   []string
	counts map[string]int
}

// NewQuantities returns an empty quantity map.
func NewQuantities() *Quantities {
	return &Quantities{counts: make(map[string]int)}
}

// QuantitiesFrom builds a quantity map from sku/count pairs.
// Pair order becomes the iteration order.
func QuantitiesFrom(pairs ...QuantityItem) *Quantities {
	q := NewQuantities()
	for _, p := range pairs {
		q.Set(p.SKU, p.Quantity)
	}
	return q
}

// QuantityItem is a single sku/count pair.
type QuantityItem struct {
	SKU      string
	Quantity int
}

// Get returns the count for sku, zero if absent.
func (q *Quantities) Get(sku string) int {
	return q.counts[sku]
}

// Set stores the count for sku, creating the key if needed.
func (q *Quantities) Set(sku string, v int) {
	if _, ok := q.counts[sku]; !ok {
		q.keys = append(q.keys, sku)
	}
	q.counts[sku] = v
}

// Add adds delta (which may be negative) to the count for sku.
func (q *Quantities) Add(sku string, delta int) {
	q.Set(sku, q.Get(sku)+delta)
}

// Sum returns the total count across all SKUs.
func (q *Quantities) Sum() int {
	total := 0
	for _, v := range q.counts {
		total += v
	}
	return total
}

// Len returns the number of keys present, including explicit zeros.
func (q *Quantities) Len() int {
	return len(q.keys)
}

// Items returns the sku/count pairs in insertion order.
func (q *Quantities) Items() []QuantityItem {
	items := make([]QuantityItem, 0, len(q.keys))
	for _, sku := range q.keys {
		items = append(items, QuantityItem{SKU: sku, Quantity: q.counts[sku]})
	}
	return items
}

// Plus returns a new map holding the elementwise sum of q and other.
func (q *Quantities) Plus(other *Quantities) *Quantities {
	out := q.Clone()
	for _, it := range other.Items() {
		out.Add(it.SKU, it.Quantity)
	}
	return out
}

// Minus returns a new map holding the elementwise difference q - other.
// Entries may go negative; callers that require non-negative stock clamp
// or reject before applying the result.
func (q *Quantities) Minus(other *Quantities) *Quantities {
	out := q.Clone()
	for _, it := range other.Items() {
		out.Add(it.SKU, -it.Quantity)
	}
	return out
}

// Times returns a new map with every count multiplied by n.
func (q *Quantities) Times(n int) *Quantities {
	out := NewQuantities()
	for _, it := range q.Items() {
		out.Set(it.SKU, it.Quantity*n)
	}
	return out
}

// Clone returns an independent copy preserving iteration order.
func (q *Quantities) Clone() *Quantities {
	out := NewQuantities()
	for _, it := range q.Items() {
		out.Set(it.SKU, it.Quantity)
	}
	return out
}

// AsMap returns a plain map copy, for serialization.
func (q *Quantities) AsMap() map[string]int {
	out := make(map[string]int, len(q.keys))
	for _, it := range q.Items() {
		out[it.SKU] = it.Quantity
	}
	return out
}
