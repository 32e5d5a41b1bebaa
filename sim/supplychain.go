package sim

import (
	"fmt"
	"sort"
)

// SupplyChain is the immutable topology of the simulation: nodes indexed by
// SKU plus the bill-of-materials edges between them. Construction validates
// the graph and assigns low-level codes; per-node state (stock, orders,
// backorders, pipelines) stays mutable and is advanced by the Simulator.
type SupplyChain struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string
	children  map[string][]Edge
	maxLLC    int
}

// NewSupplyChain builds and validates a chain from nodes and edges.
//
// Edges may arrive through the edges argument or through Node.Predecessors;
// both are merged, with Node.Predecessors winning on conflict. Construction
// fails on duplicate node IDs, edges referencing unknown nodes,
// non-positive multiplicities, or a cycle in the BOM.
func NewSupplyChain(nodes []*Node, edges []Edge) (*SupplyChain, error) {
	c := &SupplyChain{
		nodes:    make(map[string]*Node, len(nodes)),
		edges:    make(map[string]Edge),
		children: make(map[string][]Edge),
	}

	for _, n := range nodes {
		if _, ok := c.nodes[n.ID]; ok {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		n.normalize()
		c.nodes[n.ID] = n
		c.nodeOrder = append(c.nodeOrder, n.ID)
	}

	for _, e := range edges {
		if err := c.addEdge(e); err != nil {
			return nil, err
		}
	}
	// Node.Predecessors has precedence over the edges list.
	for _, id := range c.nodeOrder {
		for _, e := range c.nodes[id].Predecessors {
			if e.Destination != id {
				return nil, fmt.Errorf("node %s defines predecessor %s with a different destination", id, e.ID())
			}
			if err := c.addEdge(e); err != nil {
				return nil, err
			}
		}
	}

	// Rebuild per-node views from the merged edge set so both entry points
	// observe identical topology.
	for _, id := range c.nodeOrder {
		c.nodes[id].Predecessors = nil
	}
	for _, eid := range c.edgeOrder {
		e := c.edges[eid]
		dst := c.nodes[e.Destination]
		dst.Predecessors = append(dst.Predecessors, e)
		c.children[e.Source] = append(c.children[e.Source], e)
	}

	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}
	c.setLLC()
	return c, nil
}

func (c *SupplyChain) addEdge(e Edge) error {
	if _, ok := c.nodes[e.Source]; !ok {
		return fmt.Errorf("edge %s defines unknown source node %q", e.ID(), e.Source)
	}
	if _, ok := c.nodes[e.Destination]; !ok {
		return fmt.Errorf("edge %s defines unknown destination node %q", e.ID(), e.Destination)
	}
	if e.Number < 1 {
		return fmt.Errorf("edge %s has non-positive multiplicity %d", e.ID(), e.Number)
	}
	if _, ok := c.edges[e.ID()]; !ok {
		c.edgeOrder = append(c.edgeOrder, e.ID())
	}
	c.edges[e.ID()] = e
	return nil
}

// checkAcyclic rejects chains whose BOM graph contains a cycle.
func (c *SupplyChain) checkAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(c.nodeOrder))
	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case inProgress:
			return fmt.Errorf("cycle in supply-chain involving node %s (path %v)", id, append(path, id))
		}
		state[id] = inProgress
		for _, e := range c.children[id] {
			if err := visit(e.Destination, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, id := range c.nodeOrder {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// setLLC assigns low-level codes: roots get 0, every other node the longest
// path from any root. A node reachable on multiple paths takes the maximum.
func (c *SupplyChain) setLLC() {
	indegree := make(map[string]int, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		c.nodes[id].LLC = 0
		indegree[id] = len(c.nodes[id].Predecessors)
	}

	var queue []string
	for _, id := range c.nodeOrder {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := c.nodes[id]
		for _, e := range c.children[id] {
			child := c.nodes[e.Destination]
			if node.LLC+1 > child.LLC {
				child.LLC = node.LLC + 1
			}
			indegree[e.Destination]--
			if indegree[e.Destination] == 0 {
				queue = append(queue, e.Destination)
			}
		}
	}

	c.maxLLC = 0
	for _, id := range c.nodeOrder {
		if c.nodes[id].LLC > c.maxLLC {
			c.maxLLC = c.nodes[id].LLC
		}
	}
}

// Node returns the node with the given SKU.
func (c *SupplyChain) Node(id string) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (c *SupplyChain) Nodes() []*Node {
	out := make([]*Node, 0, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		out = append(out, c.nodes[id])
	}
	return out
}

// Parents returns the edges supplying sku (upstream components).
func (c *SupplyChain) Parents(sku string) []Edge {
	if n, ok := c.nodes[sku]; ok {
		return n.Predecessors
	}
	return nil
}

// Children returns the edges consuming sku (downstream assemblies).
func (c *SupplyChain) Children(sku string) []Edge {
	return c.children[sku]
}

// BOM returns the bill of materials of sku: one edge per component with its
// multiplicity.
func (c *SupplyChain) BOM(sku string) []Edge {
	return c.Parents(sku)
}

// MaxLLC returns the largest low-level code in the chain.
func (c *SupplyChain) MaxLLC() int {
	return c.maxLLC
}

// NodesAscendingLLC returns all nodes ordered roots-first. Ties keep
// insertion order.
func (c *SupplyChain) NodesAscendingLLC() []*Node {
	out := c.Nodes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].LLC < out[j].LLC })
	return out
}

// NodesDescendingLLC returns all nodes ordered leaves-first. Ties keep
// insertion order.
func (c *SupplyChain) NodesDescendingLLC() []*Node {
	out := c.Nodes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].LLC > out[j].LLC })
	return out
}

// Inventory projects the inventory position visible to node: in-transit
// receipts per SKU, component units held locally or on order at each parent,
// and own stock less backorders and the outstanding orders of children.
// The projection is one pass over the node's pipeline, parents and stock;
// parents' own positions are not projected recursively.
func (c *SupplyChain) Inventory(node *Node) *Quantities {
	inv := NewQuantities()

	for _, r := range node.Pipeline.Receipts() {
		inv.Add(r.SKU, r.Quantity)
	}

	for _, e := range node.Predecessors {
		parent := c.nodes[e.Source]
		inv.Add(e.Source, parent.Orders.Get(node.ID))
		inv.Add(e.Source, node.Stock.Get(e.Source))
	}

	inv.Add(node.ID, node.Stock.Get(node.ID))
	inv.Add(node.ID, -node.Backorders)
	inv.Add(node.ID, -node.Orders.Sum())

	return inv
}

// InventoryAssembliesFeasible returns how many units of node the projected
// inventory position supports: the units already on hand or in transit plus
// what the component position can still assemble. Never negative.
func (c *SupplyChain) InventoryAssembliesFeasible(node *Node) int {
	inv := c.Inventory(node)
	return max(node.AssembliesFeasible(inv)+inv.Get(node.ID), 0)
}

// CheckState verifies the per-node state invariants: non-negative stock,
// backorders and order books. phase names the simulation phase for error
// reporting.
func (c *SupplyChain) CheckState(phase string) error {
	for _, id := range c.nodeOrder {
		n := c.nodes[id]
		for _, it := range n.Stock.Items() {
			if it.Quantity < 0 {
				return fmt.Errorf("node %s: negative stock %d of %s after phase %s", id, it.Quantity, it.SKU, phase)
			}
		}
		if n.Backorders < 0 {
			return fmt.Errorf("node %s: negative backorders %d after phase %s", id, n.Backorders, phase)
		}
		for _, it := range n.Orders.Items() {
			if it.Quantity < 0 {
				return fmt.Errorf("node %s: negative order book entry %d for %s after phase %s", id, it.Quantity, it.SKU, phase)
			}
		}
	}
	return nil
}
