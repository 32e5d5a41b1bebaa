package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Node is a single SKU location in the supply-chain. Stock is keyed by SKU:
// a node holds finished units under its own ID and may hold component units
// under the IDs of its predecessors. Orders is the book of outstanding
// quantities downstream children have placed against this node.
//
// Data carries per-node policy parameters read by the control strategy, for
// RSQ: review_time, reorder_level and order_quantity (safety_stock is
// accepted but unused).
type Node struct {
	ID           string
	Data         map[string]int
	LLC          int
	Stock        *Quantities
	Backorders   int
	Orders       *Quantities
	Pipeline     *Pipeline
	Sales        SalesProvider
	LeadTime     LeadTimeProvider
	Predecessors []Edge
}

// NewNode returns a node with empty stock, orders and pipeline and no
// demand. The zero lead time provider errors on use, so nodes that ship or
// replenish need an explicit provider.
func NewNode(id string) *Node {
	return &Node{
		ID:       id,
		Data:     make(map[string]int),
		Stock:    NewQuantities(),
		Orders:   NewQuantities(),
		Pipeline: NewPipeline(),
		Sales:    NewSales(nil),
		LeadTime: NewLeadTime(nil),
	}
}

// normalize fills nil collection fields so nodes built as struct literals
// behave like NewNode results.
func (n *Node) normalize() {
	if n.Data == nil {
		n.Data = make(map[string]int)
	}
	if n.Stock == nil {
		n.Stock = NewQuantities()
	}
	if n.Orders == nil {
		n.Orders = NewQuantities()
	}
	if n.Pipeline == nil {
		n.Pipeline = NewPipeline()
	}
	if n.Sales == nil {
		n.Sales = NewSales(nil)
	}
	if n.LeadTime == nil {
		n.LeadTime = NewLeadTime(nil)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%s)", n.ID)
}

// IsRoot reports whether this node has no predecessors, meaning it
// replenishes from an external supplier instead of upstream nodes.
func (n *Node) IsRoot() bool {
	return len(n.Predecessors) == 0
}

// GetLeadTime returns this node's lead time for the period.
func (n *Node) GetLeadTime(period int) (int, error) {
	lt, err := n.LeadTime.LeadTime(period)
	if err != nil {
		return 0, fmt.Errorf("node %s: %w", n.ID, err)
	}
	if lt < 0 {
		return 0, fmt.Errorf("node %s: negative lead time %d for period %d", n.ID, lt, period)
	}
	return lt, nil
}

// AcceptReceipts moves all matured pipeline receipts into stock, keyed by
// the receipt's SKU, and emits one receipt record per shipment.
func (n *Node) AcceptReceipts(period int, rec Recorder) error {
	for _, r := range n.Pipeline.PopMatured() {
		n.Stock.Add(r.SKU, r.Quantity)
		logrus.Debugf("period %d: node %s received %d of %s", period, n.ID, r.Quantity, r.SKU)
		if err := rec.Record(Record{Period: period, Node: n.ID, Event: EventReceipt, Quantity: r.Quantity, SKU: r.SKU}); err != nil {
			return err
		}
	}
	return nil
}

// AssembliesFeasible returns how many units of this node could be assembled
// from the given component counts: the minimum over predecessors of the
// available units divided by the BOM multiplicity. Root nodes assemble
// nothing. Never negative.
func (n *Node) AssembliesFeasible(available *Quantities) int {
	if n.IsRoot() {
		return 0
	}
	feasible := -1
	for _, edge := range n.Predecessors {
		can := available.Get(edge.Source) / edge.Number
		if feasible < 0 || can < feasible {
			feasible = can
		}
	}
	return max(feasible, 0)
}

// Assemble converts component stock into finished stock, as many units as
// the on-hand components allow.
func (n *Node) Assemble() {
	feasible := n.AssembliesFeasible(n.Stock)
	if feasible == 0 {
		return
	}
	for _, edge := range n.Predecessors {
		n.Stock.Add(edge.Source, -feasible*edge.Number)
	}
	n.Stock.Add(n.ID, feasible)
}

// SatisfyBackorders serves as much of the cumulative backorder as stock
// allows, before any new demand is looked at.
func (n *Node) SatisfyBackorders(period int, rec Recorder) error {
	if n.Backorders == 0 {
		return nil
	}
	feasible := min(n.Stock.Get(n.ID), n.Backorders)
	if feasible == 0 {
		return nil
	}
	n.Backorders -= feasible
	n.Stock.Add(n.ID, -feasible)
	logrus.Debugf("period %d: node %s served %d backordered units", period, n.ID, feasible)
	return rec.Record(Record{Period: period, Node: n.ID, Event: EventSalesSatisfied, Quantity: feasible})
}

// SatisfySales consumes this period's demand order-lines. Demand is served
// from own-SKU stock; the unserved remainder is added to the cumulative
// backorder.
func (n *Node) SatisfySales(period int, rec Recorder) error {
	lines := n.Sales.PopSales(period)
	demand := 0
	for _, l := range lines {
		demand += l
	}
	if demand == 0 {
		return nil
	}

	satisfied := min(n.Stock.Get(n.ID), demand)
	backordered := demand - satisfied
	if satisfied > 0 {
		n.Stock.Add(n.ID, -satisfied)
		if err := rec.Record(Record{Period: period, Node: n.ID, Event: EventSalesSatisfied, Quantity: satisfied}); err != nil {
			return err
		}
	}
	if backordered > 0 {
		n.Backorders += backordered
		logrus.Debugf("period %d: node %s backordered %d units", period, n.ID, backordered)
		if err := rec.Record(Record{Period: period, Node: n.ID, Event: EventSalesBackordered, Quantity: backordered}); err != nil {
			return err
		}
	}
	return nil
}
