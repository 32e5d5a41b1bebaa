package sim

import "fmt"

// Edge is a bill-of-materials arc: Number units of Source are consumed to
// make one unit of Destination. Source is the upstream supplier/component,
// Destination the downstream consumer/assembly.
type Edge struct {
	Source      string
	Destination string
	Number      int
}

// ID identifies the edge within a chain; one arc per (source, destination)
// pair.
func (e Edge) ID() string {
	return fmt.Sprintf("%s->%s", e.Source, e.Destination)
}
