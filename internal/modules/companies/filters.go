package companies

import "strings"

// FilterByProfessions keeps companies offering at least one of the selected
// professions. An empty selection keeps everything.
func FilterByProfessions(ds Dataset, professions []string) Dataset {
	if len(professions) == 0 {
		return ds
	}

	selected := make(map[string]bool, len(professions))
	for _, p := range professions {
		selected[p] = true
	}

	var out Dataset
	for _, c := range ds {
		for _, p := range c.EffectiveProfessions() {
			if selected[p] {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// FilterByCompanyName keeps companies whose name contains the search term,
// case-insensitively. An empty term keeps everything.
func FilterByCompanyName(ds Dataset, term string) Dataset {
	if term == "" {
		return ds
	}

	needle := strings.ToLower(term)
	var out Dataset
	for _, c := range ds {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByGoodsName keeps companies with at least one good whose name
// contains the search term, case-insensitively.
func FilterByGoodsName(ds Dataset, term string) Dataset {
	if term == "" {
		return ds
	}

	needle := strings.ToLower(term)
	var out Dataset
	for _, c := range ds {
		for _, g := range c.Goods {
			if strings.Contains(strings.ToLower(g.ProducedGood), needle) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ApplyFilters applies profession, company and goods filters in sequence.
func ApplyFilters(ds Dataset, professions []string, companyTerm, goodsTerm string) Dataset {
	filtered := FilterByProfessions(ds, professions)
	filtered = FilterByCompanyName(filtered, companyTerm)
	filtered = FilterByGoodsName(filtered, goodsTerm)
	return filtered
}
