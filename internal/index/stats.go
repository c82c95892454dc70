package index

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// topDomainCount bounds how many sender domains Stats reports.
const topDomainCount = 5

// DomainCount is one sender domain and how many messages it sent.
type DomainCount struct {
	Domain string
	Count  int
}

// Stats summarizes a table.
type Stats struct {
	Messages int
	Dated    int       // rows with a parseable date
	Earliest time.Time // valid only when Dated > 0
	Latest   time.Time
	Domains  []DomainCount // top sender domains, count descending
}

var domainPattern = regexp.MustCompile(`@([\w.-]+)`)

// Stats computes summary statistics over the current rows.
func (t *Table) Stats() Stats {
	st := Stats{Messages: len(t.rows)}
	counts := make(map[string]int)
	for i := range t.rows {
		r := &t.rows[i]
		if r.HasDate {
			if st.Dated == 0 || r.DateSort.Before(st.Earliest) {
				st.Earliest = r.DateSort
			}
			if st.Dated == 0 || r.DateSort.After(st.Latest) {
				st.Latest = r.DateSort
			}
			st.Dated++
		}
		if m := domainPattern.FindStringSubmatch(r.From); m != nil {
			counts[strings.ToLower(m[1])]++
		}
	}

	domains := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		domains = append(domains, DomainCount{Domain: d, Count: c})
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Count != domains[j].Count {
			return domains[i].Count > domains[j].Count
		}
		return domains[i].Domain < domains[j].Domain
	})
	if len(domains) > topDomainCount {
		domains = domains[:topDomainCount]
	}
	st.Domains = domains
	return st
}
