package cluster

import (
	"testing"

	"identityresolver/internal/model"
)

func cand(name, userID string, trust float64) model.NameCandidate {
	return model.NameCandidate{Name: name, SourceUserID: userID, SourceTrustScore: trust}
}

func TestCanonicalKeyPermutationInvariant(t *testing.T) {
	if canonicalKey("Rahul Sharma") != canonicalKey("Sharma Rahul") {
		t.Error("expected permutation-invariant canonical keys")
	}
}

func TestClusterClearMajority(t *testing.T) {
	candidates := []model.NameCandidate{
		cand("rahul sharma", "u1", 0.9),
		cand("rahul k sharma", "u2", 0.8),
		cand("sharma rahul", "u3", 0.7),
		cand("patel", "u4", 0.5),
	}
	clusters := Cluster(candidates)

	var sharmaCluster *model.NameCluster
	for i := range clusters {
		if clusters[i].Representative == "rahul k sharma" {
			sharmaCluster = &clusters[i]
		}
	}
	if sharmaCluster == nil {
		t.Fatalf("expected a cluster represented by 'rahul k sharma', got %+v", clusters)
	}
	if sharmaCluster.Frequency != 1 {
		t.Errorf("Frequency = %d, want 1 (only u2 saved the three-token form; 'rahul sharma' and 'sharma rahul' share a different key)", sharmaCluster.Frequency)
	}

	foundPatel := false
	for _, c := range clusters {
		if c.Representative == "patel" {
			foundPatel = true
		}
	}
	if !foundPatel {
		t.Error("expected 'patel' to remain its own cluster (token not in the sharma cluster key)")
	}
}

func TestClusterSubsetMerge(t *testing.T) {
	candidates := []model.NameCandidate{
		cand("harsh patel", "u1", 1.0),
		cand("harsh patel", "u2", 1.0),
		cand("patel", "u3", 1.0),
	}
	clusters := Cluster(candidates)
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}
	c := clusters[0]
	if c.Representative != "harsh patel" {
		t.Errorf("Representative = %q, want %q", c.Representative, "harsh patel")
	}
	if c.Frequency != 3 {
		t.Errorf("Frequency = %d, want 3", c.Frequency)
	}
	hasPatel := false
	for _, v := range c.Variants {
		if v == "patel" {
			hasPatel = true
		}
	}
	if !hasPatel {
		t.Errorf("Variants = %v, want it to include absorbed 'patel'", c.Variants)
	}
}

func TestClusterTieBreakByLengthThenInsertionOrder(t *testing.T) {
	candidates := []model.NameCandidate{
		cand("Amit Kumar", "u1", 1.0),
		cand("Kumar Amit", "u2", 1.0),
	}
	clusters := Cluster(candidates)
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}
	if clusters[0].Representative != "Amit Kumar" {
		t.Errorf("Representative = %q, want %q (first insertion on equal length)", clusters[0].Representative, "Amit Kumar")
	}
}

func TestClusterFrequencyEqualsDistinctUsers(t *testing.T) {
	candidates := []model.NameCandidate{
		cand("rahul sharma", "u1", 1.0),
		cand("rahul sharma", "u1", 1.0), // same user twice
		cand("rahul sharma", "u2", 1.0),
	}
	clusters := Cluster(candidates)
	if len(clusters) != 1 {
		t.Fatalf("len(clusters) = %d, want 1", len(clusters))
	}
	if clusters[0].Frequency != len(clusters[0].UserIDs) {
		t.Errorf("Frequency = %d, want len(UserIDs) = %d", clusters[0].Frequency, len(clusters[0].UserIDs))
	}
	if clusters[0].Frequency != 2 {
		t.Errorf("Frequency = %d, want 2 distinct users", clusters[0].Frequency)
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Rahul Sharma", "rahul sharma", 1.0},
		{"Harsh Patel", "Patel", 0.85},
	}
	for _, tt := range tests {
		got := NameSimilarity(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("NameSimilarity(%q,%q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
