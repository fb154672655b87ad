package variant

// Combinations returns the Cartesian product of cfg in lexicographic order:
// attributes in configured order, values in configured order within each.
// An empty configuration, or any attribute without values, yields nothing.
func Combinations(cfg AttributeConfig) []Combination {
	attrs := cfg.attrs
	if len(attrs) == 0 {
		return nil
	}
	total := 1
	for _, a := range attrs {
		if len(a.Values) == 0 {
			return nil
		}
		total *= len(a.Values)
	}

	out := make([]Combination, 0, total)
	idx := make([]int, len(attrs))
	for {
		c := make(Combination, len(attrs))
		for i, a := range attrs {
			c[a.Name] = a.Values[idx[i]]
		}
		out = append(out, c)

		// advance the odometer, last attribute fastest
		level := len(attrs) - 1
		for level >= 0 {
			idx[level]++
			if idx[level] < len(attrs[level].Values) {
				break
			}
			idx[level] = 0
			level--
		}
		if level < 0 {
			return out
		}
	}
}
