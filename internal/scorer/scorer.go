// Package scorer implements S5: assigning each NameCluster a composite
// score from five independent signals.
package scorer

import (
	"strings"

	"identityresolver/internal/model"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func frequencyWeight(cluster model.NameCluster, totalContributors int) float64 {
	if totalContributors == 0 {
		return 0
	}
	return clamp01(float64(cluster.Frequency) / float64(totalContributors))
}

func trustWeight(cluster model.NameCluster) float64 {
	if len(cluster.Entries) == 0 {
		return 0
	}
	return clamp01(cluster.TotalTrustWeight / float64(len(cluster.Entries)))
}

// structuralScore inspects the representative's own tokens (looked up by
// string in classified) rather than every entry in the cluster, since the
// representative is what gets shown to the caller.
func structuralScore(cluster model.NameCluster, classified map[string]model.ClassifiedToken) float64 {
	repTokens := strings.Fields(strings.ToLower(cluster.Representative))

	var sum float64
	var nameLikelyCount int
	var nonNamePenalty float64
	var matched int

	for _, tok := range repTokens {
		ct, ok := classified[tok]
		if !ok {
			continue
		}
		matched++
		sum += ct.NameScore
		if ct.Type == model.NameLikely {
			nameLikelyCount++
		}
		switch ct.Type {
		case model.Relationship, model.Descriptor:
			nonNamePenalty += 0.15
		case model.Organization:
			nonNamePenalty += 0.10
		}
	}

	avg := 0.5
	if matched > 0 {
		avg = sum / float64(matched)
	}

	var completenessBonus float64
	if nameLikelyCount >= 2 {
		completenessBonus = 0.15
	}

	return clamp01(avg + completenessBonus - nonNamePenalty)
}

func uniquenessScore(cluster model.NameCluster, classified map[string]model.ClassifiedToken) float64 {
	repTokens := strings.Fields(strings.ToLower(cluster.Representative))

	var genericPenalty float64
	for _, tok := range repTokens {
		ct, ok := classified[tok]
		if !ok {
			continue
		}
		switch ct.Type {
		case model.Role:
			genericPenalty += 0.3
		case model.Descriptor:
			genericPenalty += 0.2
		case model.Organization:
			genericPenalty += 0.15
		}
	}

	denom := len(repTokens)
	if denom == 0 {
		denom = 1
	}
	v := 1 - genericPenalty/float64(denom)
	if v < 0 {
		return 0
	}
	return v
}

func noiseScore(cluster model.NameCluster, classified map[string]model.ClassifiedToken) float64 {
	var noiseTokens, totalTokens int
	for _, entry := range cluster.Entries {
		for _, ct := range entry.Tokens {
			totalTokens++
			if ct.Type == model.Noise {
				noiseTokens++
			}
		}
	}
	_ = classified // classification is already embedded in entry.Tokens
	if totalTokens == 0 {
		return 0
	}
	return float64(noiseTokens) / float64(totalTokens)
}

// Score computes a ScoredCluster for cluster. classified is the same
// token-string-keyed map produced by the classifier, used to look up the
// representative's own tokens for the structural and uniqueness signals.
func Score(cluster model.NameCluster, classified map[string]model.ClassifiedToken, totalContributors int) model.ScoredCluster {
	freq := frequencyWeight(cluster, totalContributors)
	trust := trustWeight(cluster)
	structural := structuralScore(cluster, classified)
	uniqueness := uniquenessScore(cluster, classified)
	noise := noiseScore(cluster, classified)

	composite := clamp01(0.30*freq + 0.25*trust + 0.25*structural + 0.15*uniqueness - 0.05*noise)

	return model.ScoredCluster{
		NameCluster:     cluster,
		Score:           composite,
		FrequencyWeight: freq,
		TrustWeight:     trust,
		StructuralScore: structural,
		UniquenessScore: uniqueness,
		NoiseScore:      noise,
	}
}

// ScoreAll scores every cluster, preserving input order.
func ScoreAll(clusters []model.NameCluster, classified map[string]model.ClassifiedToken, totalContributors int) []model.ScoredCluster {
	out := make([]model.ScoredCluster, len(clusters))
	for i, c := range clusters {
		out[i] = Score(c, classified, totalContributors)
	}
	return out
}
