package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDefaultSimulator wires a chain with RSQ + fractional and an in-memory
// recorder.
func newDefaultSimulator(t *testing.T, nodes []*Node, edges []Edge) (*Simulator, *MemoryRecorder) {
	t.Helper()
	c, err := NewSupplyChain(nodes, edges)
	require.NoError(t, err)
	rec := &MemoryRecorder{}
	return NewSimulator(c, NewRSQ(c), NewFractional(), rec), rec
}

func TestSimulator_SingleNodeReplenishmentCycle(t *testing.T) {
	// GIVEN a single root node under RSQ control, no starting stock,
	// lead time 1 and demand of 3 every period
	a := NewNode("A")
	a.Data = map[string]int{"order_quantity": 10, "reorder_level": 5, "review_time": 1}
	a.LeadTime = ConstantLeadTime(1)
	a.Sales = SalesFromLines([]int{3}, []int{3}, []int{3}, []int{3})

	s, rec := newDefaultSimulator(t, []*Node{a}, nil)

	// WHEN period 1 runs
	require.NoError(t, s.SimulatePeriod(1))

	// THEN demand is backordered and a full batch is ordered
	require.Len(t, rec.Records, 2)
	assert.Equal(t, Record{Period: 1, Node: "A", Event: EventSalesBackordered, Quantity: 3}, rec.Records[0])
	assert.Equal(t, Record{Period: 1, Node: "A", Event: EventOrder, Quantity: 10}, rec.Records[1])
	assert.Equal(t, 3, a.Backorders)

	// WHEN period 2 runs
	rec.Records = nil
	require.NoError(t, s.SimulatePeriod(2))

	// THEN the batch arrives, the backorder and new demand are served,
	// and the position triggers another batch
	require.Len(t, rec.Records, 4)
	assert.Equal(t, Record{Period: 2, Node: "A", Event: EventReceipt, Quantity: 10, SKU: "A"}, rec.Records[0])
	assert.Equal(t, Record{Period: 2, Node: "A", Event: EventSalesSatisfied, Quantity: 3}, rec.Records[1])
	assert.Equal(t, Record{Period: 2, Node: "A", Event: EventSalesSatisfied, Quantity: 3}, rec.Records[2])
	assert.Equal(t, Record{Period: 2, Node: "A", Event: EventOrder, Quantity: 10}, rec.Records[3])
	assert.Equal(t, 4, a.Stock.Get("A"))
	assert.Equal(t, 0, a.Backorders)

	// AND the cycle keeps stock non-negative through periods 3 and 4
	require.NoError(t, s.SimulatePeriod(3))
	require.NoError(t, s.SimulatePeriod(4))
	assert.GreaterOrEqual(t, a.Stock.Get("A"), 0)
	assert.Equal(t, 0, a.Backorders)
}

func TestSimulator_TwoEchelonOrderAndShipment(t *testing.T) {
	// GIVEN root R stocked with 100 supplying leaf L under RSQ control
	r := NewNode("R")
	r.Stock.Set("R", 100)
	r.LeadTime = ConstantLeadTime(2)
	l := NewNode("L")
	l.Stock.Set("L", 5)
	l.Data = map[string]int{"reorder_level": 10, "order_quantity": 10, "review_time": 1}
	l.LeadTime = ConstantLeadTime(1)
	l.Sales = SalesFromLines([]int{2}, []int{2}, []int{2}, []int{2})

	s, rec := newDefaultSimulator(t, []*Node{r, l},
		[]Edge{{Source: "R", Destination: "L", Number: 1}})

	// WHEN period 1 runs
	require.NoError(t, s.SimulatePeriod(1))

	// THEN L reviews, orders 10, and R ships it the same period
	orders := rec.ByEvent(EventOrder)
	require.Len(t, orders, 1)
	assert.Equal(t, Record{Period: 1, Node: "L", Event: EventOrder, Quantity: 10}, orders[0])

	releases := rec.ByEvent(EventRelease)
	require.Len(t, releases, 1)
	assert.Equal(t, Record{Period: 1, Node: "R", Event: EventRelease, Quantity: 10, SKU: "R"}, releases[0])
	assert.Equal(t, 90, r.Stock.Get("R"))
	assert.Equal(t, 0, r.Orders.Get("L"))

	// WHEN period 2 runs
	rec.Records = nil
	require.NoError(t, s.SimulatePeriod(2))

	// THEN the shipment matures on L and is assembled into sellable stock
	receipts := rec.ByEvent(EventReceipt)
	require.Len(t, receipts, 1)
	assert.Equal(t, Record{Period: 2, Node: "L", Event: EventReceipt, Quantity: 10, SKU: "R"}, receipts[0])
	assert.Equal(t, 11, l.Stock.Get("L")) // 5 - 2 + 10 - 2
	assert.Equal(t, 0, l.Stock.Get("R"))
	assert.Empty(t, rec.ByEvent(EventOrder), "replenished position is above the reorder level")
}

func TestSimulator_OrderRoundTrip(t *testing.T) {
	// GIVEN a root ordering from its external supplier with lead time 2
	a := NewNode("A")
	a.Data = map[string]int{"order_quantity": 8, "reorder_level": 1, "review_time": 1}
	a.LeadTime = ConstantLeadTime(2)
	a.Sales = SalesFromLines([]int{1})

	s, rec := newDefaultSimulator(t, []*Node{a}, nil)

	// WHEN the order is placed in period 1
	require.NoError(t, s.SimulatePeriod(1))
	require.Len(t, rec.ByEvent(EventOrder), 1)
	require.Equal(t, 1, a.Pipeline.Len())

	// THEN it matures exactly lead-time periods later: absent in period 2,
	// received in period 3
	require.NoError(t, s.SimulatePeriod(2))
	assert.Empty(t, rec.ByEvent(EventReceipt))

	require.NoError(t, s.SimulatePeriod(3))
	receipts := rec.ByEvent(EventReceipt)
	require.Len(t, receipts, 1)
	assert.Equal(t, Record{Period: 3, Node: "A", Event: EventReceipt, Quantity: 8, SKU: "A"}, receipts[0])
}

func TestSimulator_BOMDecomposesOrdersOntoParents(t *testing.T) {
	// GIVEN assembly A needing 2xC and 1xD
	c := NewNode("C")
	c.Stock.Set("C", 50)
	d := NewNode("D")
	d.Stock.Set("D", 50)
	a := NewNode("A")
	a.Data = map[string]int{"order_quantity": 5, "reorder_level": 5, "review_time": 1}
	a.LeadTime = ConstantLeadTime(1)
	a.Sales = SalesFromLines([]int{1})

	s, _ := newDefaultSimulator(t, []*Node{c, d, a}, []Edge{
		{Source: "C", Destination: "A", Number: 2},
		{Source: "D", Destination: "A", Number: 1},
	})

	// WHEN A orders 5 in period 1
	require.NoError(t, s.SimulatePeriod(1))

	// THEN the order lands on both parents scaled by multiplicity, and is
	// shipped in full the same period
	require.Equal(t, 2, a.Pipeline.Len(), "C and D ship one receipt each")
	// the release phase already drained the books
	assert.Equal(t, 0, c.Orders.Get("A"))
	assert.Equal(t, 0, d.Orders.Get("A"))
	assert.Equal(t, 40, c.Stock.Get("C"), "2 units of C per unit of A")
	assert.Equal(t, 45, d.Stock.Get("D"))
}

func TestSimulator_UnitConservationAcrossRelease(t *testing.T) {
	// GIVEN a supplier releasing into two children under shortage
	r := NewNode("R")
	r.Stock.Set("R", 9)
	r.Orders.Set("X", 6)
	r.Orders.Set("Y", 6)
	x := NewNode("X")
	x.LeadTime = ConstantLeadTime(1)
	y := NewNode("Y")
	y.LeadTime = ConstantLeadTime(1)

	s, rec := newDefaultSimulator(t, []*Node{r, x, y}, []Edge{
		{Source: "R", Destination: "X", Number: 1},
		{Source: "R", Destination: "Y", Number: 1},
	})

	require.NoError(t, s.SimulatePeriod(1))

	// THEN released units equal the units that appeared on child pipelines
	released := 0
	for _, rel := range rec.ByEvent(EventRelease) {
		released += rel.Quantity
	}
	inTransit := x.Pipeline.SumBySKU().Get("R") + y.Pipeline.SumBySKU().Get("R")
	assert.Equal(t, released, inTransit)
	assert.Equal(t, 9, released, "scarce stock ships completely")
	assert.Equal(t, 0, r.Stock.Get("R"))

	// AND the leftover order book carries the shortage forward
	assert.Equal(t, 3, r.Orders.Get("X")+r.Orders.Get("Y"))
}

func TestSimulator_SalesConservationPerPeriod(t *testing.T) {
	// GIVEN demand that is partially serveable
	a := NewNode("A")
	a.Stock.Set("A", 4)
	a.Sales = SalesFromLines([]int{3, 3})

	s, rec := newDefaultSimulator(t, []*Node{a}, nil)

	require.NoError(t, s.SimulatePeriod(1))

	// THEN satisfied + backordered equals total demand
	total := 0
	for _, r := range rec.Records {
		if r.Event == EventSalesSatisfied || r.Event == EventSalesBackordered {
			total += r.Quantity
		}
	}
	assert.Equal(t, 6, total)
	assert.Equal(t, 2, a.Backorders)
}

// overshootingRelease deliberately ships more than on-hand stock.
type overshootingRelease struct{}

func (overshootingRelease) GetReleases(node *Node) *Quantities {
	releases := NewQuantities()
	for _, it := range node.Orders.Items() {
		releases.Set(it.SKU, it.Quantity)
	}
	return releases
}

func TestSimulator_ReleaseBeyondStockIsFatal(t *testing.T) {
	// GIVEN a release strategy that ignores the stock constraint
	r := NewNode("R")
	r.Stock.Set("R", 1)
	r.Orders.Set("X", 5)
	x := NewNode("X")
	x.LeadTime = ConstantLeadTime(1)

	c, err := NewSupplyChain([]*Node{r, x}, []Edge{{Source: "R", Destination: "X", Number: 1}})
	require.NoError(t, err)
	s := NewSimulator(c, NewRSQ(c), overshootingRelease{}, nil)

	// WHEN the period runs
	err = s.SimulatePeriod(1)

	// THEN the run aborts naming the offending node
	require.Error(t, err)
	assert.ErrorContains(t, err, "node R")
}

func TestSimulator_RunBetweenCoversInclusiveRange(t *testing.T) {
	a := NewNode("A")
	a.Sales = NewSales(map[int][]int{2: {1}, 3: {1}})
	a.Stock.Set("A", 10)

	s, rec := newDefaultSimulator(t, []*Node{a}, nil)

	require.NoError(t, s.RunBetween(2, 3))

	sold := rec.ByEvent(EventSalesSatisfied)
	require.Len(t, sold, 2)
	assert.Equal(t, 2, sold[0].Period)
	assert.Equal(t, 3, sold[1].Period)
}

func TestSimulator_EchelonRSSmoke(t *testing.T) {
	// GIVEN a two-echelon chain under echelon order-up-to control
	r := NewNode("R")
	r.Data = map[string]int{"review_time": 1, "order_up_to_level": 30}
	r.Stock.Set("R", 10)
	r.LeadTime = ConstantLeadTime(1)
	l := NewNode("L")
	l.Data = map[string]int{"review_time": 1, "order_up_to_level": 15}
	l.Stock.Set("L", 5)
	l.LeadTime = ConstantLeadTime(1)
	l.Sales = SalesFromLines([]int{2}, []int{2})

	c, err := NewSupplyChain([]*Node{r, l}, []Edge{{Source: "R", Destination: "L", Number: 1}})
	require.NoError(t, err)
	rec := &MemoryRecorder{}
	s := NewSimulator(c, NewEchelonRS(c), NewFractional(), rec)

	require.NoError(t, s.Run(2))

	// THEN both echelons order and state stays valid
	assert.NotEmpty(t, rec.ByEvent(EventOrder))
	require.NoError(t, c.CheckState("final"))
}
