package sentiment

import (
	"sort"

	"whaleflow/internal/domain"
)

// Rank returns the top-n trades by notional value descending, ties broken
// by earlier timestamp first. The input slice is not modified; the result
// holds copies.
func Rank(trades []*domain.ClassifiedTrade, n int) []*domain.ClassifiedTrade {
	ranked := make([]*domain.ClassifiedTrade, len(trades))
	for i, ct := range trades {
		cp := *ct
		ranked[i] = &cp
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := ranked[i].Notional(), ranked[j].Notional()
		if vi != vj {
			return vi > vj
		}
		return ranked[i].Trade.Timestamp < ranked[j].Trade.Timestamp
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
