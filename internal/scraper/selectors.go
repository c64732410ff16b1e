package scraper

import "sort"

var siteRules = map[Site]map[Field]Rule{
	SiteAmazon: amazonRules,
	SiteNoon:   noonRules,
}

// Sites returns every site that has a selector table, sorted by name
func Sites() []Site {
	sites := make([]Site, 0, len(siteRules))
	for s := range siteRules {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i] < sites[j] })
	return sites
}

// IsSupported reports whether a selector table exists for site
func IsSupported(site Site) bool {
	_, ok := siteRules[site]
	return ok
}

// Fields returns the table-driven fields of a site in canonical order
func Fields(site Site) []Field {
	table := siteRules[site]
	var fields []Field
	for _, f := range canonicalFields {
		if _, ok := table[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// RuleFor returns the selector rule for a field on a site
func RuleFor(site Site, field Field) (Rule, bool) {
	rule, ok := siteRules[site][field]
	return rule, ok
}
