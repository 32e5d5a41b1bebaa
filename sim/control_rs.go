package sim

// EchelonRS is a multi-echelon order-up-to control policy. On every review
// period it raises the echelon inventory position — the node's own
// projected position plus that of every downstream node it ultimately
// supplies — back to order_up_to_level. Per-node parameters come from
// Node.Data: review_time and order_up_to_level.
type EchelonRS struct {
	Chain *SupplyChain
}

// NewEchelonRS returns an echelon order-up-to policy over chain.
func NewEchelonRS(chain *SupplyChain) *EchelonRS {
	return &EchelonRS{Chain: chain}
}

// GetOrders orders the gap between order_up_to_level and the echelon
// inventory position, floored at zero.
func (rs *EchelonRS) GetOrders(node *Node, period int) *Quantities {
	orders := NewQuantities()
	orders.Set(node.ID, 0)

	review := node.Data["review_time"]
	level := node.Data["order_up_to_level"]
	if review <= 0 || period%review != 0 {
		return orders
	}

	echelonInventory := 0
	seen := map[string]bool{node.ID: true}
	frontier := []*Node{node}
	for len(frontier) > 0 {
		var next []*Node
		for _, n := range frontier {
			echelonInventory += rs.Chain.InventoryAssembliesFeasible(n)
			for _, e := range rs.Chain.Children(n.ID) {
				if seen[e.Destination] {
					continue
				}
				seen[e.Destination] = true
				child, _ := rs.Chain.Node(e.Destination)
				next = append(next, child)
			}
		}
		frontier = next
	}

	orders.Set(node.ID, max(level-echelonInventory, 0))
	return orders
}
