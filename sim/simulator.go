package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator advances a supply-chain period by period. Within a period the
// phases run as strict barriers over all nodes:
//
//  1. receive   — matured pipeline receipts move into stock
//  2. assemble  — component stock converts into finished stock
//  3. demand    — cumulative backorders, then this period's sales
//  4. order     — control strategy, leaves first (descending LLC), so a
//     child's fresh shortage lands on its suppliers' books within the
//     same period pass
//  5. release   — release strategy, roots first (ascending LLC), so
//     sibling allocation works from each supplier's pre-release stock
//  6. age       — every pipeline ETA decrements
//
// Iteration within a phase is deterministic: LLC order where specified,
// node insertion order otherwise and on ties.
type Simulator struct {
	Chain    *SupplyChain
	Control  ControlStrategy
	Release  ReleaseStrategy
	Recorder Recorder

	// Snapshots, when set, receives the full chain state after each period.
	Snapshots *SnapshotWriter

	// CheckInvariants re-validates node state at every phase boundary.
	// Violations indicate a strategy or engine defect and abort the run.
	CheckInvariants bool
}

// NewSimulator wires a simulator. A nil recorder discards all metric
// records.
func NewSimulator(chain *SupplyChain, control ControlStrategy, release ReleaseStrategy, recorder Recorder) *Simulator {
	if recorder == nil {
		recorder = Discard{}
	}
	return &Simulator{
		Chain:           chain,
		Control:         control,
		Release:         release,
		Recorder:        recorder,
		CheckInvariants: true,
	}
}

// Run simulates periods 1..periods inclusive.
func (s *Simulator) Run(periods int) error {
	return s.RunBetween(1, periods)
}

// RunBetween simulates periods start..end inclusive.
func (s *Simulator) RunBetween(start, end int) error {
	for period := start; period <= end; period++ {
		if err := s.SimulatePeriod(period); err != nil {
			return err
		}
		if s.Snapshots != nil {
			if err := s.Snapshots.WritePeriod(period, s.Chain); err != nil {
				return err
			}
		}
	}
	return nil
}

// SimulatePeriod runs the six phases of a single period.
func (s *Simulator) SimulatePeriod(period int) error {
	logrus.Debugf("simulating period %d", period)

	for _, n := range s.Chain.Nodes() {
		if err := n.AcceptReceipts(period, s.Recorder); err != nil {
			return err
		}
	}
	if err := s.checkState("receive"); err != nil {
		return err
	}

	for _, n := range s.Chain.Nodes() {
		n.Assemble()
	}
	if err := s.checkState("assemble"); err != nil {
		return err
	}

	for _, n := range s.Chain.Nodes() {
		if err := n.SatisfyBackorders(period, s.Recorder); err != nil {
			return err
		}
		if err := n.SatisfySales(period, s.Recorder); err != nil {
			return err
		}
	}
	if err := s.checkState("demand"); err != nil {
		return err
	}

	for _, n := range s.Chain.NodesDescendingLLC() {
		if err := s.placeOrders(n, period); err != nil {
			return err
		}
	}
	if err := s.checkState("order"); err != nil {
		return err
	}

	for _, n := range s.Chain.NodesAscendingLLC() {
		if err := s.releaseOrders(n, period); err != nil {
			return err
		}
	}
	if err := s.checkState("release"); err != nil {
		return err
	}

	for _, n := range s.Chain.Nodes() {
		n.Pipeline.Age()
	}
	return nil
}

// placeOrders asks the control strategy for the node's order quantity and
// books it upstream: onto each parent's order book scaled by the BOM
// multiplicity, or, for a root node, straight onto the node's own pipeline
// with its current lead time (an external supplier with unbounded
// capacity).
func (s *Simulator) placeOrders(n *Node, period int) error {
	orders := s.Control.GetOrders(n, period)
	for _, it := range orders.Items() {
		if it.SKU != n.ID {
			return fmt.Errorf("node %s: control strategy ordered foreign sku %s", n.ID, it.SKU)
		}
		if it.Quantity <= 0 {
			continue
		}
		if n.IsRoot() {
			leadTime, err := n.GetLeadTime(period)
			if err != nil {
				return err
			}
			n.Pipeline.Add(Receipt{SKU: n.ID, ETA: leadTime, Quantity: it.Quantity})
		} else {
			for _, e := range n.Predecessors {
				parent, _ := s.Chain.Node(e.Source)
				parent.Orders.Add(n.ID, it.Quantity*e.Number)
			}
		}
		logrus.Debugf("period %d: node %s ordered %d", period, n.ID, it.Quantity)
		if err := s.Recorder.Record(Record{Period: period, Node: n.ID, Event: EventOrder, Quantity: it.Quantity}); err != nil {
			return err
		}
	}
	return nil
}

// releaseOrders asks the release strategy for the node's shipment plan and
// executes it: own stock and the child's book entry decrement, and a
// receipt with the child's lead time lands on the child's pipeline. A plan
// exceeding on-hand stock or a child's outstanding order is a strategy
// defect and aborts the run.
func (s *Simulator) releaseOrders(n *Node, period int) error {
	releases := s.Release.GetReleases(n)
	for _, it := range releases.Items() {
		if it.Quantity <= 0 {
			continue
		}
		if it.Quantity > n.Stock.Get(n.ID) {
			return fmt.Errorf("node %s: release plan ships %d of %s but only %d on hand (release phase)",
				n.ID, it.Quantity, n.ID, n.Stock.Get(n.ID))
		}
		if it.Quantity > n.Orders.Get(it.SKU) {
			return fmt.Errorf("node %s: release plan ships %d to %s which only ordered %d (release phase)",
				n.ID, it.Quantity, it.SKU, n.Orders.Get(it.SKU))
		}
		child, ok := s.Chain.Node(it.SKU)
		if !ok {
			return fmt.Errorf("node %s: release plan targets unknown node %s", n.ID, it.SKU)
		}
		leadTime, err := child.GetLeadTime(period)
		if err != nil {
			return err
		}

		child.Pipeline.Add(Receipt{SKU: n.ID, ETA: leadTime, Quantity: it.Quantity})
		n.Stock.Add(n.ID, -it.Quantity)
		n.Orders.Add(it.SKU, -it.Quantity)

		logrus.Debugf("period %d: node %s released %d to %s", period, n.ID, it.Quantity, it.SKU)
		if err := s.Recorder.Record(Record{Period: period, Node: n.ID, Event: EventRelease, Quantity: it.Quantity, SKU: n.ID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) checkState(phase string) error {
	if !s.CheckInvariants {
		return nil
	}
	return s.Chain.CheckState(phase)
}
