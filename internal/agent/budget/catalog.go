package budget

import (
	"slices"
	"strings"

	"github.com/marketplace-assistant/server/internal/agent/model"
)

// Catalog is an in-memory service catalog built from BudgetConfig.
type Catalog struct {
	currency       string
	defaultMinimum int64
	services       map[string]model.ServiceContext
}

// NewCatalog builds a catalog. Names are matched case-insensitively.
func NewCatalog(cfg model.BudgetConfig) *Catalog {
	c := &Catalog{
		currency:       strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		defaultMinimum: cfg.DefaultMinimum,
		services:       make(map[string]model.ServiceContext, len(cfg.ServiceMinimums)),
	}
	if c.currency == "" {
		c.currency = "INR"
	}
	for name, minimum := range cfg.ServiceMinimums {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		c.services[catalogKey(name)] = model.ServiceContext{
			Name:          name,
			MinimumBudget: minimum,
			Currency:      c.currency,
		}
	}
	return c
}

// Lookup returns the service context for name. Unknown or empty names get the
// default minimum.
func (c *Catalog) Lookup(name string) model.ServiceContext {
	if svc, ok := c.services[catalogKey(name)]; ok {
		return svc
	}
	return model.ServiceContext{
		Name:          strings.TrimSpace(name),
		MinimumBudget: c.defaultMinimum,
		Currency:      c.currency,
	}
}

// Services lists the configured services ordered by name.
func (c *Catalog) Services() []model.ServiceContext {
	out := make([]model.ServiceContext, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	slices.SortFunc(out, func(a, b model.ServiceContext) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func catalogKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

var _ model.ServiceCatalog = (*Catalog)(nil)
