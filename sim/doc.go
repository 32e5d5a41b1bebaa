// Package sim provides the core discrete-period simulation engine for
// multi-echelon supply chains.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - supplychain.go: graph construction, low-level codes, inventory projection
//   - node.go: per-node state and the receive/assemble/demand operations
//   - simulator.go: the period loop and its phase ordering
//
// # Architecture
//
// A SupplyChain is built once from Nodes and BOM Edges and is immutable
// after construction; all per-period mutation happens on the Nodes it owns,
// driven serially by the Simulator. Demand and lead times come from
// per-node providers; replenishment and shipment decisions come from
// chain-wide strategies.
//
// # Key Interfaces
//
// The extension points are single-method interfaces:
//   - ControlStrategy: how much a node orders from its suppliers (default RSQ)
//   - ReleaseStrategy: how on-hand stock is split across competing
//     downstream orders (default Fractional)
//   - SalesProvider: the demand order-lines of a period (consumed once)
//   - LeadTimeProvider: the lead time applied to orders placed in a period
//   - Recorder: the ordered sink for metric records
package sim
