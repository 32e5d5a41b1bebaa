package cmd

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	sim "github.com/chain-stock/suppy/sim"
)

// ChainConfig is the YAML description of a supply-chain plus the strategy
// selection for a run.
type ChainConfig struct {
	Control string       `yaml:"control"`
	Release string       `yaml:"release"`
	Nodes   []NodeConfig `yaml:"nodes"`
	Edges   []EdgeConfig `yaml:"edges"`
}

// NodeConfig describes one node. Every field except id is optional.
type NodeConfig struct {
	ID         string          `yaml:"id"`
	Data       map[string]int  `yaml:"data"`
	Backorders int             `yaml:"backorders"`
	Stock      map[string]int  `yaml:"stock"`
	Orders     map[string]int  `yaml:"orders"`
	Sales      SalesConfig     `yaml:"sales"`
	LeadTime   LeadTimeConfig  `yaml:"lead_time"`
	Pipeline   []ReceiptConfig `yaml:"pipeline"`
}

// EdgeConfig describes one BOM arc.
type EdgeConfig struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Number      int    `yaml:"number"`
}

// ReceiptConfig describes one pre-existing in-transit receipt.
type ReceiptConfig struct {
	SKU      string `yaml:"sku"`
	ETA      int    `yaml:"eta"`
	Quantity int    `yaml:"quantity"`
}

// SalesConfig holds per-period demand order-lines. It accepts either a
// sequence (consecutive periods starting at 1) or a mapping keyed by
// period:
//
//	sales:
//	  - [3]
//	  - [2, 1]
//
//	sales:
//	  1: [3]
//	  4: [2, 1]
type SalesConfig map[int][]int

// UnmarshalYAML implements the sequence-or-mapping forms.
func (s *SalesConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var lines [][]int
		if err := value.Decode(&lines); err != nil {
			return fmt.Errorf("parsing sales list: %w", err)
		}
		out := make(map[int][]int, len(lines))
		for i, l := range lines {
			out[i+1] = l
		}
		*s = out
		return nil
	case yaml.MappingNode:
		var byPeriod map[int][]int
		if err := value.Decode(&byPeriod); err != nil {
			return fmt.Errorf("parsing sales map: %w", err)
		}
		*s = byPeriod
		return nil
	default:
		return fmt.Errorf("sales must be a list or a period-keyed map")
	}
}

// LeadTimeConfig holds per-period lead times. It accepts a bare scalar
// (constant lead time), a sequence (consecutive periods starting at 1), or
// a mapping with optional default:
//
//	lead_time: 2
//
//	lead_time: [1, 1, 2]
//
//	lead_time:
//	  default: 1
//	  periods:
//	    3: 2
type LeadTimeConfig struct {
	Periods map[int]int
	Default *int
}

// UnmarshalYAML implements the scalar, sequence and mapping forms.
func (lt *LeadTimeConfig) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var constant int
		if err := value.Decode(&constant); err != nil {
			return fmt.Errorf("parsing lead_time: %w", err)
		}
		lt.Default = &constant
		return nil
	case yaml.SequenceNode:
		var values []int
		if err := value.Decode(&values); err != nil {
			return fmt.Errorf("parsing lead_time list: %w", err)
		}
		lt.Periods = make(map[int]int, len(values))
		for i, v := range values {
			lt.Periods[i+1] = v
		}
		return nil
	case yaml.MappingNode:
		var form struct {
			Periods map[int]int `yaml:"periods"`
			Default *int        `yaml:"default"`
		}
		if err := value.Decode(&form); err != nil {
			return fmt.Errorf("parsing lead_time map: %w", err)
		}
		lt.Periods = form.Periods
		lt.Default = form.Default
		return nil
	default:
		return fmt.Errorf("lead_time must be a scalar, list or map")
	}
}

// LoadChainConfig reads and parses a YAML chain description file.
func LoadChainConfig(path string) (*ChainConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chain config: %w", err)
	}
	var cfg ChainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing chain config: %w", err)
	}
	if !sim.ValidControlStrategies[cfg.Control] {
		return nil, fmt.Errorf("unknown control strategy %q", cfg.Control)
	}
	if !sim.ValidReleaseStrategies[cfg.Release] {
		return nil, fmt.Errorf("unknown release strategy %q", cfg.Release)
	}
	return &cfg, nil
}

// Build converts the config into a validated SupplyChain.
func (cfg *ChainConfig) Build() (*sim.SupplyChain, error) {
	nodes := make([]*sim.Node, 0, len(cfg.Nodes))
	for _, nc := range cfg.Nodes {
		if nc.ID == "" {
			return nil, fmt.Errorf("node without id in chain config")
		}
		n := sim.NewNode(nc.ID)
		for k, v := range nc.Data {
			n.Data[k] = v
		}
		n.Backorders = nc.Backorders
		seedQuantities(n.Stock, nc.Stock)
		seedQuantities(n.Orders, nc.Orders)
		if nc.Sales != nil {
			n.Sales = sim.NewSales(nc.Sales)
		}
		leadTime := sim.NewLeadTime(nc.LeadTime.Periods)
		if nc.LeadTime.Default != nil {
			leadTime.WithDefault(*nc.LeadTime.Default)
		}
		n.LeadTime = leadTime
		for _, rc := range nc.Pipeline {
			n.Pipeline.Add(sim.Receipt{SKU: rc.SKU, ETA: rc.ETA, Quantity: rc.Quantity})
		}
		nodes = append(nodes, n)
	}

	edges := make([]sim.Edge, 0, len(cfg.Edges))
	for _, ec := range cfg.Edges {
		edges = append(edges, sim.Edge{Source: ec.Source, Destination: ec.Destination, Number: ec.Number})
	}

	return sim.NewSupplyChain(nodes, edges)
}

// seedQuantities copies a YAML map into a quantity map in sorted key order,
// so runs do not depend on Go map iteration.
func seedQuantities(q *sim.Quantities, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, m[k])
	}
}
