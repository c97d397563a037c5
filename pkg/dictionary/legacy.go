package dictionary

import "slices"

// resolveLegacy builds table models keyed by legacy table names. An
// attribute belongs to a legacy table when its version1Table list names it;
// its column id is the version1Variable at the same position.
func (m *Model) resolveLegacy(parts []*Part, attrs map[string]*AttributeModel) {
	tables := make(map[string]*TableModel)
	owners := make(map[string][]*Part)
	for _, p := range parts {
		if p.Type != PartTable {
			continue
		}
		for _, name := range p.LegacyIDs() {
			if _, ok := tables[name]; !ok {
				t := &TableModel{ID: name, Part: p}
				tables[name] = t
				m.Tables = append(m.Tables, t)
			}
			owners[name] = append(owners[name], p)
		}
	}

	for _, ap := range parts {
		a, ok := attrs[ap.ID]
		if !ok {
			continue
		}
		for _, pair := range zipBroadcast(splitMulti(ap.V1Table), splitMulti(ap.V1Variable)) {
			name, column := pair[0], pair[1]
			t, ok := tables[name]
			if !ok {
				continue
			}
			if _, dup := t.Attribute(column); dup {
				continue
			}
			t.Attributes = append(t.Attributes, a.withID(column, legacyMandatory(ap, owners[name])))
		}
	}

	sets := make(map[string]*CategorySet)
	for _, cp := range parts {
		if cp.Type != PartCategory {
			continue
		}
		for _, triple := range zipBroadcast(splitMulti(cp.V1Table), splitMulti(cp.V1Variable), splitMulti(cp.V1Category)) {
			key := triple[0] + "." + triple[1]
			cs, ok := sets[key]
			if !ok {
				cs = &CategorySet{ID: key}
				sets[key] = cs
			}
			if !slices.Contains(cs.Values, triple[2]) {
				cs.Values = append(cs.Values, triple[2])
				cs.Parts = append(cs.Parts, cp.ID)
			}
		}
	}

	for _, t := range m.Tables {
		sortAttributes(t.Attributes)
		for _, a := range t.Attributes {
			if cs, ok := sets[t.ID+"."+a.ID]; ok && a.Categorical {
				a.Categories = cs
			}
		}
	}
	sortTables(m.Tables)
}

// legacyMandatory reports whether the attribute is mandatory in any current
// table that maps onto the legacy table.
func legacyMandatory(attr *Part, owners []*Part) bool {
	for _, o := range owners {
		if req, ok := attr.Field(o.ID + requiredSuffix); ok && isMandatory(req) {
			return true
		}
	}
	return false
}

// zipBroadcast pairs lists positionally. A single-element list repeats
// against longer ones; positions missing from a longer list are dropped.
func zipBroadcast(lists ...[]string) [][]string {
	n := 0
	for _, l := range lists {
		if len(l) == 0 {
			return nil
		}
		n = max(n, len(l))
	}
	out := make([][]string, 0, n)
rows:
	for i := range n {
		tuple := make([]string, len(lists))
		for j, l := range lists {
			switch {
			case len(l) == 1:
				tuple[j] = l[0]
			case i < len(l):
				tuple[j] = l[i]
			default:
				continue rows
			}
		}
		out = append(out, tuple)
	}
	return out
}
