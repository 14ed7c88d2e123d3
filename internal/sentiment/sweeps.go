package sentiment

import (
	"sort"

	"whaleflow/internal/domain"
)

// Sweep detection defaults: legs within 60 seconds, at least 3 legs.
const (
	DefaultSweepWindowMs int64 = 60000
	DefaultSweepMinLegs        = 3
)

// Sweep is a burst of whale trades on one symbol in rapid succession. A
// large order worked across venues prints as several legs close together
// rather than one block.
type Sweep struct {
	Symbol string

	// Legs holds the clustered trades, ordered by timestamp ASC.
	Legs []*domain.ClassifiedTrade

	TotalShares   int64
	TotalNotional float64

	// Exchanges lists the distinct venues hit, sorted ASC.
	Exchanges []string

	// Direction is taken from the first leg.
	Direction domain.Direction

	StartTime int64
	EndTime   int64
}

// LegCount returns the number of trades in the sweep.
func (s *Sweep) LegCount() int {
	return len(s.Legs)
}

// DetectSweeps finds clusters of whale trades on the same symbol where at
// least minLegs trades print within windowMs of the cluster's first trade.
// Non-positive parameters fall back to the defaults. Sweeps are returned
// ordered by total notional DESC, ties by earlier start time.
func DetectSweeps(trades []*domain.ClassifiedTrade, windowMs int64, minLegs int) []*Sweep {
	if windowMs <= 0 {
		windowMs = DefaultSweepWindowMs
	}
	if minLegs <= 0 {
		minLegs = DefaultSweepMinLegs
	}

	bySymbol := make(map[string][]*domain.ClassifiedTrade)
	for _, ct := range trades {
		bySymbol[ct.Trade.Symbol] = append(bySymbol[ct.Trade.Symbol], ct)
	}

	var sweeps []*Sweep
	for symbol, group := range bySymbol {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Trade.Timestamp != group[j].Trade.Timestamp {
				return group[i].Trade.Timestamp < group[j].Trade.Timestamp
			}
			return group[i].Trade.ID < group[j].Trade.ID
		})

		i := 0
		for i < len(group) {
			anchor := group[i].Trade.Timestamp
			j := i + 1
			for j < len(group) && group[j].Trade.Timestamp-anchor <= windowMs {
				j++
			}

			cluster := group[i:j]
			if len(cluster) >= minLegs {
				sweeps = append(sweeps, buildSweep(symbol, cluster))
			}

			// A cluster consumes its legs; a lone anchor just advances.
			if j > i+1 {
				i = j
			} else {
				i++
			}
		}
	}

	sort.Slice(sweeps, func(i, j int) bool {
		if sweeps[i].TotalNotional != sweeps[j].TotalNotional {
			return sweeps[i].TotalNotional > sweeps[j].TotalNotional
		}
		return sweeps[i].StartTime < sweeps[j].StartTime
	})
	return sweeps
}

func buildSweep(symbol string, cluster []*domain.ClassifiedTrade) *Sweep {
	s := &Sweep{
		Symbol:    symbol,
		Legs:      cluster,
		Direction: cluster[0].Direction,
		StartTime: cluster[0].Trade.Timestamp,
		EndTime:   cluster[len(cluster)-1].Trade.Timestamp,
	}

	seen := make(map[string]bool)
	for _, ct := range cluster {
		s.TotalShares += ct.Trade.Size
		s.TotalNotional += ct.Notional()
		if ct.Trade.Exchange != "" && !seen[ct.Trade.Exchange] {
			seen[ct.Trade.Exchange] = true
			s.Exchanges = append(s.Exchanges, ct.Trade.Exchange)
		}
	}
	sort.Strings(s.Exchanges)
	return s
}
