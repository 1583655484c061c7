// Package classifier implements S2 of the identity pipeline: assigning
// each unique token a TokenType, a probability, and a continuous
// nameScore, from three independent contribution sources (intrinsic
// structural features, reference-registry membership, and corpus-wide
// statistics).
package classifier

import (
	"identityresolver/internal/model"
	"identityresolver/internal/registry"
)

// declarationOrder is the tie-break order for the arg-max over Scores:
// NAME_LIKELY < RELATIONSHIP < ROLE < ORGANIZATION < DESCRIPTOR < NOISE.
var declarationOrder = [...]model.TokenType{
	model.NameLikely,
	model.Relationship,
	model.Role,
	model.Organization,
	model.Descriptor,
	model.Noise,
}

func alternations(pattern string) int {
	count := 0
	for i := 1; i < len(pattern); i++ {
		if pattern[i] != pattern[i-1] {
			count++
		}
	}
	return count
}

func applyIntrinsic(f model.TokenFeatures, s *model.ScoreVector) {
	if f.NumericRatio > 0.5 {
		s[model.Noise] += 0.6
	}
	if f.NumericRatio > 0.8 {
		s[model.Noise] += 0.3
	}
	if f.Length <= 2 {
		s[model.Noise] += 0.3
		s[model.Descriptor] += 0.15
	}
	if f.Length > 15 {
		s[model.Organization] += 0.1
		s[model.Noise] += 0.1
	}
	if f.AlphabetRatio > 0.9 {
		s[model.NameLikely] += 0.15
		s[model.Role] += 0.05
	}
	if f.IsCapitalized {
		s[model.NameLikely] += 0.05
	}
	if alternations(f.CharPattern) >= 3 && f.Length >= 3 {
		s[model.NameLikely] += 0.1
	}
}

func applyRegistry(reg *registry.Registry, token string, s *model.ScoreVector) {
	if reg == nil {
		return
	}
	if reg.Contains(registry.FirstName, token) {
		s[model.NameLikely] += 0.45
	}
	if reg.Contains(registry.LastName, token) {
		s[model.NameLikely] += 0.35
	}
	if reg.Contains(registry.MiddleName, token) {
		s[model.NameLikely] += 0.20
	}
	if reg.Contains(registry.Prefix, token) {
		s[model.Descriptor] += 0.30
		s[model.Noise] += 0.10
	}
	if reg.Contains(registry.Relationship, token) {
		s[model.Relationship] += 0.55
		s[model.NameLikely] = maxFloat(0, s[model.NameLikely]-0.25)
	}
	if reg.Contains(registry.Descriptor, token) {
		s[model.Descriptor] += 0.55
		s[model.NameLikely] = maxFloat(0, s[model.NameLikely]-0.25)
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func applyStatistical(f model.TokenFeatures, st model.TokenStats, totalNumbers int, s *model.ScoreVector) {
	penetration := float64(st.NumberCount) / float64(totalNumbers)
	var soloRatio float64
	if st.GlobalFrequency > 0 {
		soloRatio = float64(st.SoloFrequency) / float64(st.GlobalFrequency)
	}

	if penetration > 0.001 && penetration < 0.05 {
		s[model.NameLikely] += 0.25
	}
	if penetration >= 0.05 && penetration < 0.10 {
		s[model.NameLikely] += 0.10
	}
	if st.PositionFirstPct > 0.6 {
		s[model.NameLikely] += 0.20
	}
	if st.PositionFirstPct > 0.8 {
		s[model.NameLikely] += 0.10
	}
	if soloRatio < 0.3 {
		s[model.NameLikely] += 0.10
	}
	if st.AvgTrustWeight > 0.7 {
		s[model.NameLikely] += 0.05
	}

	if penetration > 0.05 {
		s[model.Role] += 0.25
	}
	if penetration > 0.10 {
		s[model.Role] += 0.20
	}
	if penetration > 0.20 {
		s[model.Role] += 0.10
	}
	if st.PositionLastPct > 0.5 && penetration > 0.02 {
		s[model.Role] += 0.15
	}

	if st.NumberCount <= 5 && soloRatio > 0.5 {
		s[model.Relationship] += 0.40
	}
	if st.NumberCount <= 3 && soloRatio > 0.3 {
		s[model.Relationship] += 0.20
	}
	if st.NumberCount == 1 && st.SoloFrequency > 0 {
		s[model.Relationship] += 0.10
	}

	if penetration > 0.02 && penetration < 0.15 && st.PositionLastPct > 0.4 {
		s[model.Descriptor] += 0.30
	}
	if soloRatio < 0.1 && st.PositionLastPct > 0.6 {
		s[model.Descriptor] += 0.10
	}

	if f.Length > 6 && penetration > 0.01 && penetration < 0.08 {
		s[model.Organization] += 0.15
	}
	if f.Length > 8 && st.PositionFirstPct < 0.3 && penetration > 0.005 {
		s[model.Organization] += 0.10
	}

	if st.GlobalFrequency <= 2 && f.Length <= 3 {
		s[model.Noise] += 0.30
	}
	if st.GlobalFrequency == 1 && f.AlphabetRatio < 0.5 {
		s[model.Noise] += 0.20
	}
}

func applyFallback(f model.TokenFeatures, s *model.ScoreVector) {
	if f.AlphabetRatio > 0.8 && f.Length >= 3 {
		s[model.NameLikely] += 0.30
	}
	if f.Length <= 2 || f.NumericRatio > 0.5 {
		s[model.Noise] += 0.30
	}
}

// ClassifyToken scores a single token's features against the registry and
// (if present) its corpus-wide stats, and returns the full classification.
// stats and hasStats come as a pair because the zero TokenStats is a valid
// (if uninformative) value; hasStats is what distinguishes "never seen"
// from "seen, all zero".
func ClassifyToken(f model.TokenFeatures, reg *registry.Registry, stats model.TokenStats, hasStats bool, totalNumbers int) model.ClassifiedToken {
	var scores model.ScoreVector

	applyIntrinsic(f, &scores)
	applyRegistry(reg, f.Token, &scores)

	if hasStats && totalNumbers > 0 {
		applyStatistical(f, stats, totalNumbers, &scores)
	} else {
		applyFallback(f, &scores)
	}

	sum := 0.0
	for _, v := range scores {
		sum += v
	}

	best := declarationOrder[0]
	bestScore := scores[best]
	for _, t := range declarationOrder[1:] {
		if scores[t] > bestScore {
			best = t
			bestScore = scores[t]
		}
	}

	probability := 0.5
	nameScore := 0.5
	if sum > 0 {
		probability = bestScore / sum
		nameScore = scores[model.NameLikely] / sum
	}

	ct := model.ClassifiedToken{
		TokenFeatures: f,
		Type:          best,
		Probability:   probability,
		NameScore:     nameScore,
		Scores:        scores,
	}
	if hasStats {
		ct.TokenStats = stats
	}
	return ct
}

// ClassifyEntryTokens classifies every unique token across entries,
// looking up each token's features via extractFeatures and its stats via
// lookupStats, and returns a map keyed by token string. Classification
// runs once per unique token, not once per occurrence.
func ClassifyEntryTokens(
	entries []model.CleanedEntry,
	reg *registry.Registry,
	totalNumbers int,
	extractFeatures func(token string) model.TokenFeatures,
	lookupStats func(token string) (model.TokenStats, bool),
) map[string]model.ClassifiedToken {
	out := make(map[string]model.ClassifiedToken)
	for _, entry := range entries {
		for _, tok := range entry.Tokens {
			if _, done := out[tok]; done {
				continue
			}
			features := extractFeatures(tok)
			stats, hasStats := lookupStats(tok)
			out[tok] = ClassifyToken(features, reg, stats, hasStats, totalNumbers)
		}
	}
	return out
}
