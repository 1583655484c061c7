// Package cluster implements S4: canonical-key clustering of name
// candidates, followed by subset-merge absorption of single-token
// candidates into multi-token clusters that contain their token.
package cluster

import (
	"sort"
	"strings"

	"identityresolver/internal/model"
)

// canonicalKey is the lowercase, whitespace-split, alphabetically sorted,
// space-joined form of name, used for permutation-invariant grouping.
func canonicalKey(name string) string {
	tokens := strings.Fields(strings.ToLower(name))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

type group struct {
	key              string
	variants         []string // raw, not yet deduplicated
	entries          []model.NameCandidate
	userIDs          map[string]struct{}
	totalTrustWeight float64
}

// Cluster groups candidates by canonical key, then absorbs single-token
// clusters into the first (in descending-token-count order) multi-token
// cluster whose key contains that token.
func Cluster(candidates []model.NameCandidate) []model.NameCluster {
	groups := make(map[string]*group)
	var keyOrder []string // first-seen order of keys

	for _, c := range candidates {
		key := canonicalKey(c.Name)
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, userIDs: make(map[string]struct{})}
			groups[key] = g
			keyOrder = append(keyOrder, key)
		}
		g.variants = append(g.variants, c.Name)
		g.entries = append(g.entries, c)
		g.userIDs[c.SourceUserID] = struct{}{}
		g.totalTrustWeight += c.SourceTrustScore
	}

	// Phase 2: sort keys by descending token count, stable so ties keep
	// first-seen order.
	sorted := make([]string, len(keyOrder))
	copy(sorted, keyOrder)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(strings.Fields(sorted[i])) > len(strings.Fields(sorted[j]))
	})

	merged := make(map[string]bool)

	// Absorption pass: mutate group objects in place. Clusters are only
	// built from groups in a later pass, once every absorption touching
	// a given group has already happened.
	for _, key := range sorted {
		if merged[key] {
			continue
		}
		tokens := strings.Fields(key)
		if len(tokens) != 1 {
			continue
		}
		target := findAbsorber(sorted, groups, merged, key, tokens[0])
		if target != nil {
			absorb(target, groups[key])
			merged[key] = true
		}
	}

	var clusters []model.NameCluster
	for _, key := range sorted {
		if merged[key] {
			continue
		}
		clusters = append(clusters, buildCluster(groups[key]))
	}

	return clusters
}

// findAbsorber scans sorted (already descending by token count) for the
// first not-yet-merged multi-token key whose token set contains tok.
func findAbsorber(sorted []string, groups map[string]*group, merged map[string]bool, skipKey, tok string) *group {
	for _, key := range sorted {
		if key == skipKey || merged[key] {
			continue
		}
		tokens := strings.Fields(key)
		if len(tokens) <= 1 {
			continue
		}
		for _, t := range tokens {
			if t == tok {
				return groups[key]
			}
		}
	}
	return nil
}

func absorb(target, src *group) {
	target.variants = append(target.variants, src.variants...)
	target.entries = append(target.entries, src.entries...)
	target.totalTrustWeight += src.totalTrustWeight
	for id := range src.userIDs {
		target.userIDs[id] = struct{}{}
	}
}

func buildCluster(g *group) model.NameCluster {
	seen := make(map[string]struct{})
	var variants []string
	for _, v := range g.variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	representative := variants[0]
	for _, v := range variants[1:] {
		if len(v) > len(representative) {
			representative = v
		}
	}

	return model.NameCluster{
		Representative:   representative,
		Variants:         variants,
		Entries:          g.entries,
		Frequency:        len(g.userIDs),
		TotalTrustWeight: g.totalTrustWeight,
		UserIDs:          g.userIDs,
	}
}
