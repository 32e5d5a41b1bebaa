package sim

// ReleaseStrategy decides how a node's on-hand stock is allocated across
// the outstanding orders of its downstream children. The returned map is
// keyed by child SKU. Post-conditions: the total released never exceeds the
// node's own-SKU stock, and no child receives more than it ordered.
type ReleaseStrategy interface {
	GetReleases(node *Node) *Quantities
}

// Fractional allocates a scarce shipment proportionally: each child absorbs
// a share of the shortage relative to its share of the total ordered
// quantity, rounded in the child's favor, with any rounding overshoot taken
// back from the largest allocations.
type Fractional struct{}

// NewFractional returns the proportional-shortage release policy.
func NewFractional() *Fractional {
	return &Fractional{}
}

// GetReleases builds the release plan for node.
func (f *Fractional) GetReleases(node *Node) *Quantities {
	releases := NewQuantities()

	orderTotal := node.Orders.Sum()
	if orderTotal == 0 {
		return releases
	}

	stock := node.Stock.Get(node.ID)
	shortage := max(orderTotal-stock, 0)

	// ceil(order - shortage*order/orderTotal) in integer arithmetic.
	for _, it := range node.Orders.Items() {
		if it.Quantity <= 0 {
			continue
		}
		releases.Set(it.SKU, it.Quantity-shortage*it.Quantity/orderTotal)
	}

	// Rounding in the children's favor can overshoot the available stock;
	// take units back from the largest release until the plan fits. Ties go
	// to the earliest entry in the order book.
	for releases.Sum() > stock {
		var largest string
		largestQty := -1
		for _, it := range releases.Items() {
			if it.Quantity > largestQty {
				largest, largestQty = it.SKU, it.Quantity
			}
		}
		releases.Add(largest, -1)
	}

	return releases
}
