package metric

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultThreshold is the minimum score for a confident canonical match.
const DefaultThreshold = 0.6

// Metric is one canonical financial concept with its alias phrasings.
// Aliases are ordered; enumeration order breaks score ties.
type Metric struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// Catalog holds the canonical-metric table. It is static configuration:
// loaded at startup (and on SIGHUP), never mutated by resolution.
type Catalog struct {
	mu        sync.RWMutex
	metrics   []Metric
	threshold float64
	path      string
}

type catalogFile struct {
	Threshold float64  `yaml:"threshold"`
	Metrics   []Metric `yaml:"metrics"`
}

// NewCatalog creates a catalog backed by an optional YAML file.
// An empty path means the built-in table is used.
func NewCatalog(path string) *Catalog {
	return &Catalog{path: path, threshold: DefaultThreshold}
}

// Load reads the catalog file, or installs the built-in table when no
// file is configured.
func (c *Catalog) Load() error {
	if c.path == "" {
		c.mu.Lock()
		c.metrics = builtinMetrics
		c.threshold = DefaultThreshold
		c.mu.Unlock()
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read metrics file %s: %w", c.path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse metrics file %s: %w", c.path, err)
	}
	for i, m := range f.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metrics file %s: metric %d: missing name", c.path, i)
		}
	}
	if f.Threshold == 0 {
		f.Threshold = DefaultThreshold
	}

	c.mu.Lock()
	c.metrics = f.Metrics
	c.threshold = f.Threshold
	c.mu.Unlock()
	return nil
}

// Reload re-reads the catalog from disk (hot reload).
func (c *Catalog) Reload() error {
	return c.Load()
}

// List returns the catalog contents in declaration order.
func (c *Catalog) List() []Metric {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Metric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

// Count returns the number of canonical metrics loaded.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.metrics)
}

// Threshold returns the active match threshold.
func (c *Catalog) Threshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.threshold
}

// builtinMetrics is the curated default table. Alias lists are tuned against
// the phrasings seen in real databook extracts.
var builtinMetrics = []Metric{
	{Name: "Reported EBITDA", Aliases: []string{
		"reported ebitda", "ebitda (reported)", "ebitda - reported", "ebitda reported",
	}},
	{Name: "Reported EBITDA %", Aliases: []string{
		"reported ebitda %", "ebitda margin", "ebitda %", "ebitda % of sales", "ebitda percentage",
	}},
	{Name: "Net Sales", Aliases: []string{
		"net sales", "sales", "revenue", "net revenues", "total revenue", "net turnover",
	}},
	{Name: "Gross Profit", Aliases: []string{
		"gross profit", "gross income", "gross earnings", "profit (gross)", "gross result",
	}},
	{Name: "Net Profit", Aliases: []string{
		"net profit", "net income", "net earnings", "earnings", "profit after tax", "pat", "profit (net)",
	}},
	{Name: "Gross Margin", Aliases: []string{
		"gross margin", "gross margin %", "gross profit %", "gm%", "gross margin percent", "gross profit margin",
	}},
	{Name: "Operating Expense %", Aliases: []string{
		"operating expense %", "opex %", "operating expenses as % of sales", "opex ratio", "operating expense percentage",
	}},
	{Name: "Adjusted EBITDA", Aliases: []string{
		"adjusted ebitda", "ebitda (adj.)", "ebitda adjusted", "normalized ebitda", "adj. ebitda",
	}},
	{Name: "Adjusted EBITDA %", Aliases: []string{
		"adjusted ebitda %", "adj. ebitda %", "adjusted ebitda margin", "adj. ebitda margin", "adjusted ebitda percentage",
	}},
	{Name: "Total Adjustments", Aliases: []string{
		"total adjustments", "adjustments", "ebitda adjustments", "total adj.", "sum of adjustments",
	}},
	{Name: "Adjusted Working Capital", Aliases: []string{
		"adjusted working capital", "adj. working capital", "working capital (adj.)", "working capital adjusted",
	}},
	{Name: "Reported Working Capital", Aliases: []string{
		"reported working capital", "working capital", "reported wc", "wc reported", "net working capital",
	}},
}
