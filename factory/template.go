/*
Package factory provides JSON to Go role template conversion.

PURPOSE:
  Converts JSON template definitions into generic.RoleTemplate values so
  KPI weights and targets can be tuned without a release. Templates loaded
  here replace the built-ins through workshop.TemplateRegistry.Override.

JSON SCHEMA:
  {
    "role": "mechanic",
    "label": "Mechanic",
    "scope": "individual",
    "kpis": [
      {
        "sequence": 1,
        "name": "Revenue contribution",
        "metric": "revenue",
        "weight": 20,
        "target": 100,
        "revenue_target": 40000000
      },
      {
        "sequence": 2,
        "name": "Own discipline",
        "metric": "discipline",
        "weight": 0,
        "target": 95,
        "scope": "individual",
        "include_in_total": false
      }
    ]
  }

KEY FEATURES:
  - Rejects unknown roles and metrics
  - include_in_total defaults to true
  - Runs RoleTemplate.Validate on every result
  - ToJSON renders a template back in the same schema

USAGE:
  f := factory.NewTemplateFactory()
  templates, err := f.ParseTemplates(jsonString)
  if err != nil {
      return err
  }
  registry.Override(templates...)

SEE ALSO:
  - generic/types.go: RoleTemplate and KpiDefinition
  - workshop/templates.go: Built-in templates and TemplateRegistry
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"github.com/teddinata/odoo-pitcar-sub000/workshop"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// TemplateJSON is the JSON representation of a role template.
type TemplateJSON struct {
	Role  string    `json:"role"`
	Label string    `json:"label,omitempty"`
	Scope string    `json:"scope"`
	KPIs  []KpiJSON `json:"kpis"`
}

// KpiJSON is one template line.
type KpiJSON struct {
	Sequence       int             `json:"sequence"`
	Name           string          `json:"name"`
	Metric         string          `json:"metric"`
	Weight         decimal.Decimal `json:"weight"`
	Target         decimal.Decimal `json:"target"`
	IncludeInTotal *bool           `json:"include_in_total,omitempty"`
	Scope          string          `json:"scope,omitempty"`

	RevenueTarget *decimal.Decimal `json:"revenue_target,omitempty"`
	PerMember     bool             `json:"per_member,omitempty"`
	Components    []string         `json:"components,omitempty"`
	Population    []string         `json:"population,omitempty"`
}

// =============================================================================
// TEMPLATE FACTORY
// =============================================================================

// TemplateFactory converts JSON templates to generic.RoleTemplate.
type TemplateFactory struct {
	calculators *workshop.Calculators
}

// NewTemplateFactory creates a factory that accepts the workshop metric catalog.
func NewTemplateFactory() *TemplateFactory {
	return &TemplateFactory{calculators: workshop.NewCalculators()}
}

// ParseTemplate parses a single JSON template object.
func (f *TemplateFactory) ParseTemplate(jsonStr string) (generic.RoleTemplate, error) {
	var tj TemplateJSON
	if err := json.Unmarshal([]byte(jsonStr), &tj); err != nil {
		return generic.RoleTemplate{}, fmt.Errorf("%w: failed to parse template JSON: %v", generic.ErrInvalidTemplate, err)
	}
	return f.FromJSON(tj)
}

// ParseTemplates parses either a JSON array of templates or a single object.
// Either every template is valid or an error is returned.
func (f *TemplateFactory) ParseTemplates(jsonStr string) ([]generic.RoleTemplate, error) {
	data := bytes.TrimSpace([]byte(jsonStr))
	if len(data) > 0 && data[0] != '[' {
		t, err := f.ParseTemplate(string(data))
		if err != nil {
			return nil, err
		}
		return []generic.RoleTemplate{t}, nil
	}

	var list []TemplateJSON
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: failed to parse templates JSON: %v", generic.ErrInvalidTemplate, err)
	}

	seen := make(map[generic.Role]bool, len(list))
	out := make([]generic.RoleTemplate, 0, len(list))
	for _, tj := range list {
		t, err := f.FromJSON(tj)
		if err != nil {
			return nil, err
		}
		if seen[t.Role] {
			return nil, fmt.Errorf("%w: role %s defined twice", generic.ErrInvalidTemplate, t.Role)
		}
		seen[t.Role] = true
		out = append(out, t)
	}
	return out, nil
}

// FromJSON converts TemplateJSON to a validated generic.RoleTemplate.
func (f *TemplateFactory) FromJSON(tj TemplateJSON) (generic.RoleTemplate, error) {
	role, err := workshop.ParseRole(tj.Role)
	if err != nil {
		return generic.RoleTemplate{}, err
	}
	label := tj.Label
	if label == "" {
		info, _ := workshop.LookupRole(role)
		label = info.Label
	}

	defs := make([]generic.KpiDefinition, 0, len(tj.KPIs))
	for _, kj := range tj.KPIs {
		d, err := f.parseKpi(role, kj)
		if err != nil {
			return generic.RoleTemplate{}, err
		}
		defs = append(defs, d)
	}

	t := generic.NewRoleTemplate(role, label, generic.ScopeLevel(tj.Scope), defs)
	if err := t.Validate(); err != nil {
		return generic.RoleTemplate{}, err
	}
	return t, nil
}

func (f *TemplateFactory) parseKpi(role generic.Role, kj KpiJSON) (generic.KpiDefinition, error) {
	metric := generic.MetricType(kj.Metric)
	if !f.calculators.Has(metric) {
		return generic.KpiDefinition{}, fmt.Errorf("%w: %s #%d: %w %q",
			generic.ErrInvalidTemplate, role, kj.Sequence, generic.ErrUnknownMetric, kj.Metric)
	}

	d := generic.KpiDefinition{
		Sequence:       kj.Sequence,
		Name:           kj.Name,
		Metric:         metric,
		Weight:         kj.Weight,
		Target:         kj.Target,
		IncludeInTotal: kj.IncludeInTotal == nil || *kj.IncludeInTotal,
		Scope:          generic.ScopeLevel(kj.Scope),
		Params: generic.MetricParams{
			PerMember: kj.PerMember,
		},
	}
	if kj.RevenueTarget != nil {
		d.Params.RevenueTarget = *kj.RevenueTarget
	}
	for _, c := range kj.Components {
		cm := generic.MetricType(c)
		if !workshop.IsTimeComponent(cm) {
			return generic.KpiDefinition{}, fmt.Errorf("%w: %s #%d: %w component %q",
				generic.ErrInvalidTemplate, role, kj.Sequence, generic.ErrUnknownMetric, c)
		}
		d.Params.Components = append(d.Params.Components, cm)
	}
	for _, p := range kj.Population {
		pr, err := workshop.ParseRole(p)
		if err != nil {
			return generic.KpiDefinition{}, fmt.Errorf("%w: %s #%d: %w", generic.ErrInvalidTemplate, role, kj.Sequence, err)
		}
		d.Params.Population = append(d.Params.Population, pr)
	}
	return d, nil
}

// ToJSON converts a RoleTemplate to TemplateJSON.
func (f *TemplateFactory) ToJSON(t generic.RoleTemplate) TemplateJSON {
	tj := TemplateJSON{
		Role:  string(t.Role),
		Label: t.Label,
		Scope: string(t.Scope),
	}
	for _, d := range t.Definitions() {
		include := d.IncludeInTotal
		kj := KpiJSON{
			Sequence:       d.Sequence,
			Name:           d.Name,
			Metric:         string(d.Metric),
			Weight:         d.Weight,
			Target:         d.Target,
			IncludeInTotal: &include,
			Scope:          string(d.Scope),
			PerMember:      d.Params.PerMember,
		}
		if !d.Params.RevenueTarget.IsZero() {
			rt := d.Params.RevenueTarget
			kj.RevenueTarget = &rt
		}
		for _, c := range d.Params.Components {
			kj.Components = append(kj.Components, string(c))
		}
		for _, p := range d.Params.Population {
			kj.Population = append(kj.Population, string(p))
		}
		tj.KPIs = append(tj.KPIs, kj)
	}
	return tj
}
