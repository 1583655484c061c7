package scorer

import (
	"testing"

	"identityresolver/internal/model"
)

func ct(token string, typ model.TokenType, nameScore float64) model.ClassifiedToken {
	return model.ClassifiedToken{
		TokenFeatures: model.TokenFeatures{Token: token},
		Type:          typ,
		NameScore:     nameScore,
	}
}

func TestFrequencyWeightZeroTotal(t *testing.T) {
	c := model.NameCluster{Frequency: 3}
	if got := frequencyWeight(c, 0); got != 0 {
		t.Errorf("frequencyWeight with totalContributors=0 = %v, want 0", got)
	}
}

func TestFrequencyWeightClamped(t *testing.T) {
	c := model.NameCluster{Frequency: 10}
	if got := frequencyWeight(c, 5); got != 1 {
		t.Errorf("frequencyWeight = %v, want clamped to 1", got)
	}
}

func TestTrustWeightEmptyEntries(t *testing.T) {
	c := model.NameCluster{TotalTrustWeight: 5}
	if got := trustWeight(c); got != 0 {
		t.Errorf("trustWeight with no entries = %v, want 0", got)
	}
}

func TestStructuralScoreCompletenessBonus(t *testing.T) {
	classified := map[string]model.ClassifiedToken{
		"amit":  ct("amit", model.NameLikely, 0.9),
		"kumar": ct("kumar", model.NameLikely, 0.8),
	}
	c := model.NameCluster{Representative: "amit kumar"}
	got := structuralScore(c, classified)
	want := clamp01((0.9+0.8)/2 + 0.15)
	if got != want {
		t.Errorf("structuralScore = %v, want %v", got, want)
	}
}

func TestStructuralScorePenalizesNonName(t *testing.T) {
	classified := map[string]model.ClassifiedToken{
		"rahul": ct("rahul", model.NameLikely, 0.9),
		"papa":  ct("papa", model.Relationship, 0.1),
	}
	c := model.NameCluster{Representative: "rahul papa"}
	got := structuralScore(c, classified)
	want := clamp01((0.9+0.1)/2 - 0.15)
	if got != want {
		t.Errorf("structuralScore = %v, want %v", got, want)
	}
}

func TestUniquenessScoreNoGenericTokens(t *testing.T) {
	classified := map[string]model.ClassifiedToken{
		"rahul":  ct("rahul", model.NameLikely, 0.9),
		"sharma": ct("sharma", model.NameLikely, 0.8),
	}
	c := model.NameCluster{Representative: "rahul sharma"}
	if got := uniquenessScore(c, classified); got != 1 {
		t.Errorf("uniquenessScore = %v, want 1", got)
	}
}

func TestUniquenessScoreRolePenalty(t *testing.T) {
	classified := map[string]model.ClassifiedToken{
		"plumber": ct("plumber", model.Role, 0.1),
	}
	c := model.NameCluster{Representative: "plumber"}
	got := uniquenessScore(c, classified)
	want := 1 - 0.3
	if got != want {
		t.Errorf("uniquenessScore = %v, want %v", got, want)
	}
}

func TestScoreClampedToUnitInterval(t *testing.T) {
	c := model.NameCluster{
		Frequency:        5,
		TotalTrustWeight: 5,
		Representative:   "rahul sharma",
		Entries: []model.NameCandidate{
			{Tokens: []model.ClassifiedToken{
				ct("rahul", model.NameLikely, 0.9),
				ct("sharma", model.NameLikely, 0.9),
			}},
		},
	}
	classified := map[string]model.ClassifiedToken{
		"rahul":  ct("rahul", model.NameLikely, 0.9),
		"sharma": ct("sharma", model.NameLikely, 0.9),
	}
	sc := Score(c, classified, 5)
	if sc.Score < 0 || sc.Score > 1 {
		t.Errorf("Score = %v, out of [0,1]", sc.Score)
	}
	for _, v := range []float64{sc.FrequencyWeight, sc.TrustWeight, sc.StructuralScore, sc.UniquenessScore, sc.NoiseScore} {
		if v < 0 || v > 1 {
			t.Errorf("signal out of [0,1]: %v", v)
		}
	}
}
