package sim

// SalesProvider yields the demand order-lines for a period. Each returned
// element is one order quantity. PopSales is destructive: a period's demand
// is consumed exactly once, so re-running a simulation requires a fresh
// provider.
type SalesProvider interface {
	PopSales(period int) []int
}

// Sales is the default map-backed SalesProvider: demand order-lines keyed
// by period. Periods without an entry have no demand.
type Sales struct {
	byPeriod map[int][]int
}

// NewSales builds a Sales provider from per-period order-lines.
// The map is copied; later mutation of the argument has no effect.
func NewSales(byPeriod map[int][]int) *Sales {
	s := &Sales{byPeriod: make(map[int][]int, len(byPeriod))}
	for period, lines := range byPeriod {
		s.byPeriod[period] = append([]int(nil), lines...)
	}
	return s
}

// SalesFromLines builds a Sales provider from consecutive per-period
// lines, starting at period 1.
func SalesFromLines(lines ...[]int) *Sales {
	byPeriod := make(map[int][]int, len(lines))
	for i, l := range lines {
		byPeriod[i+1] = l
	}
	return NewSales(byPeriod)
}

// PopSales removes and returns the order-lines for period.
// Returns nil if the period has no demand.
func (s *Sales) PopSales(period int) []int {
	lines, ok := s.byPeriod[period]
	if !ok {
		return nil
	}
	delete(s.byPeriod, period)
	return lines
}
