package cp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type dumpTerm struct {
	Var   string `yaml:"var"`
	Coeff int64  `yaml:"coeff"`
}

type dumpVar struct {
	Name   string   `yaml:"name"`
	Bool   bool     `yaml:"bool,omitempty"`
	Domain [2]int64 `yaml:"domain,flow"`
}

type dumpConstraint struct {
	Kind    string     `yaml:"kind"`
	Name    string     `yaml:"name,omitempty"`
	Terms   []dumpTerm `yaml:"terms,flow"`
	Lower   *int64     `yaml:"lower,omitempty"`
	Upper   *int64     `yaml:"upper,omitempty"`
	Enforce []string   `yaml:"enforce,omitempty,flow"`
}

type dumpObjective struct {
	Terms  []dumpTerm `yaml:"terms,flow"`
	Offset int64      `yaml:"offset,omitempty"`
	Lower  *int64     `yaml:"lower_bound,omitempty"`
}

type dumpModel struct {
	Name        string           `yaml:"name"`
	Variables   []dumpVar        `yaml:"variables"`
	Constraints []dumpConstraint `yaml:"constraints"`
	Objective   *dumpObjective   `yaml:"objective,omitempty"`
	Strategy    []string         `yaml:"decision_strategy,omitempty,flow"`
}

func (m *Model) varLabel(v int) string {
	if name := m.vars[v].name; name != "" {
		return name
	}
	return fmt.Sprintf("v%d", v)
}

func (m *Model) literalLabel(l BoolVar) string {
	if l.Negated() {
		return "not " + m.varLabel(l.Index())
	}
	return m.varLabel(l.Index())
}

func (m *Model) dumpTerms(ts []term) []dumpTerm {
	out := make([]dumpTerm, len(ts))
	for i, t := range ts {
		out[i] = dumpTerm{Var: m.varLabel(t.v), Coeff: t.c}
	}
	return out
}

// WriteYAML writes a textual description of the model to w.
func (m *Model) WriteYAML(w io.Writer) error {
	d := dumpModel{Name: m.name}
	for i, v := range m.vars {
		d.Variables = append(d.Variables, dumpVar{Name: m.varLabel(i), Bool: v.boolean, Domain: [2]int64{v.lb, v.ub}})
	}
	for _, c := range m.cons {
		dc := dumpConstraint{Kind: c.kind.String(), Name: c.name, Terms: m.dumpTerms(c.terms)}
		if c.lb > -Inf {
			lb := c.lb
			dc.Lower = &lb
		}
		if c.ub < Inf {
			ub := c.ub
			dc.Upper = &ub
		}
		for _, l := range c.enforce {
			dc.Enforce = append(dc.Enforce, m.literalLabel(l))
		}
		d.Constraints = append(d.Constraints, dc)
	}
	if m.minimize {
		d.Objective = &dumpObjective{Terms: m.dumpTerms(m.objective), Offset: m.objOffset}
		if m.hasObjLb {
			lb := m.objLb
			d.Objective.Lower = &lb
		}
	}
	for _, v := range m.strategy {
		d.Strategy = append(d.Strategy, m.varLabel(v))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return enc.Close()
}

// WriteFile dumps the model as YAML to path, creating parent directories.
func (m *Model) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteYAML(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
