package sim

import "fmt"

// LeadTimeProvider yields the lead time to apply to orders placed in a
// period.
type LeadTimeProvider interface {
	LeadTime(period int) (int, error)
}

// LeadTime is the default map-backed LeadTimeProvider with an optional
// fallback for periods not present in the map. A nil Default makes a
// lookup of an unknown period an error, surfacing misconfigured chains
// instead of silently shipping with zero lead time.
type LeadTime struct {
	byPeriod map[int]int
	def      *int
}

// NewLeadTime builds a provider from per-period lead times without a
// default.
func NewLeadTime(byPeriod map[int]int) *LeadTime {
	lt := &LeadTime{byPeriod: make(map[int]int, len(byPeriod))}
	for period, v := range byPeriod {
		lt.byPeriod[period] = v
	}
	return lt
}

// ConstantLeadTime returns a provider that yields the same lead time for
// every period.
func ConstantLeadTime(periods int) *LeadTime {
	lt := NewLeadTime(nil)
	lt.def = &periods
	return lt
}

// WithDefault sets the fallback lead time and returns the provider.
func (lt *LeadTime) WithDefault(periods int) *LeadTime {
	lt.def = &periods
	return lt
}

// LeadTime returns the lead time for period, falling back to the default
// when the period has no explicit entry.
func (lt *LeadTime) LeadTime(period int) (int, error) {
	if v, ok := lt.byPeriod[period]; ok {
		return v, nil
	}
	if lt.def != nil {
		return *lt.def, nil
	}
	return 0, fmt.Errorf("no lead time for period %d and no default set", period)
}
