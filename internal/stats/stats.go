// Package stats builds and caches the corpus-wide per-token statistics the
// classifier scores against: how often a token appears, how often it leads
// or trails an entry, how often it is the entry's only token, across how
// many distinct phone numbers, and at what average source trust.
package stats

import (
	"sync/atomic"

	"identityresolver/internal/model"
)

// EntryWithPhone pairs a cleaned entry with the phone number it was
// submitted against, the unit buildGlobalTokenStats aggregates over.
type EntryWithPhone struct {
	Phone string
	Entry model.CleanedEntry
}

type accumulator struct {
	occurrences int
	firstCount  int
	lastCount   int
	soloCount   int
	trustSum    float64
	phones      map[string]struct{}
}

// BuildGlobalTokenStats aggregates position counts, trust sums, and
// per-token phone-number sets over entriesWithPhone.
//
// Monoidal over entry concatenation: building stats over two entry slices
// and merging the resulting maps key-by-key yields the same result as
// building stats over their concatenation, because every field here is a
// plain sum or a set union.
func BuildGlobalTokenStats(entriesWithPhone []EntryWithPhone) map[string]model.TokenStats {
	acc := make(map[string]*accumulator)

	getAcc := func(tok string) *accumulator {
		a, ok := acc[tok]
		if !ok {
			a = &accumulator{phones: make(map[string]struct{})}
			acc[tok] = a
		}
		return a
	}

	for _, ep := range entriesWithPhone {
		tokens := ep.Entry.Tokens
		last := len(tokens) - 1
		solo := len(tokens) == 1
		for idx, tok := range tokens {
			a := getAcc(tok)
			a.occurrences++
			if idx == 0 {
				a.firstCount++
			}
			if idx == last {
				a.lastCount++
			}
			if solo {
				a.soloCount++
			}
			a.trustSum += ep.Entry.TrustScore
			a.phones[ep.Phone] = struct{}{}
		}
	}

	out := make(map[string]model.TokenStats, len(acc))
	for tok, a := range acc {
		var firstPct, lastPct, avgTrust float64
		if a.occurrences > 0 {
			firstPct = float64(a.firstCount) / float64(a.occurrences)
			lastPct = float64(a.lastCount) / float64(a.occurrences)
			avgTrust = a.trustSum / float64(a.occurrences)
		}
		out[tok] = model.TokenStats{
			GlobalFrequency:  a.occurrences,
			NumberCount:      len(a.phones),
			PositionFirstPct: firstPct,
			PositionLastPct:  lastPct,
			SoloFrequency:    a.soloCount,
			AvgTrustWeight:   avgTrust,
		}
	}
	return out
}

// Cache publishes a single, atomically-swappable global token stats
// snapshot for the classifier to read without locking.
type Cache struct {
	snap atomic.Pointer[map[string]model.TokenStats]
}

// NewCache returns an empty Cache; Lookup returns the zero TokenStats for
// every token until Refresh is called.
func NewCache() *Cache {
	c := &Cache{}
	empty := map[string]model.TokenStats{}
	c.snap.Store(&empty)
	return c
}

// Refresh rebuilds the snapshot from entriesWithPhone and swaps it in.
func (c *Cache) Refresh(entriesWithPhone []EntryWithPhone) {
	m := BuildGlobalTokenStats(entriesWithPhone)
	c.snap.Store(&m)
}

// Lookup returns the cached stats for token and whether it was present.
func (c *Cache) Lookup(token string) (model.TokenStats, bool) {
	m := c.snap.Load()
	st, ok := (*m)[token]
	return st, ok
}

// Snapshot returns the full map currently published. The returned map must
// not be mutated by the caller.
func (c *Cache) Snapshot() map[string]model.TokenStats {
	return *c.snap.Load()
}
