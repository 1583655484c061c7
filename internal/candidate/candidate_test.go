package candidate

import (
	"testing"

	"identityresolver/internal/model"
)

func classified(typ model.TokenType, token string, nameScore float64) model.ClassifiedToken {
	return model.ClassifiedToken{
		TokenFeatures: model.TokenFeatures{Token: token},
		Type:          typ,
		NameScore:     nameScore,
	}
}

func TestExtractDropsNonNameTypes(t *testing.T) {
	entry := model.CleanedEntry{Tokens: []string{"papa"}, UserID: "u1", TrustScore: 0.9}
	m := map[string]model.ClassifiedToken{
		"papa": classified(model.Relationship, "papa", 0.1),
	}
	_, ok := Extract(entry, m)
	if ok {
		t.Error("expected no candidate for an entry with only a RELATIONSHIP token")
	}
}

func TestExtractKeepsNameLikely(t *testing.T) {
	entry := model.CleanedEntry{Tokens: []string{"rahul", "sharma"}, UserID: "u1", TrustScore: 0.9}
	m := map[string]model.ClassifiedToken{
		"rahul":  classified(model.NameLikely, "rahul", 0.9),
		"sharma": classified(model.NameLikely, "sharma", 0.85),
	}
	c, ok := Extract(entry, m)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Name != "rahul sharma" {
		t.Errorf("Name = %q, want %q", c.Name, "rahul sharma")
	}
	if c.SourceUserID != "u1" || c.SourceTrustScore != 0.9 {
		t.Errorf("source fields not inlined correctly: %+v", c)
	}
}

func TestExtractKeepsWeakNameScoreAboveThreshold(t *testing.T) {
	entry := model.CleanedEntry{Tokens: []string{"mystery"}}
	m := map[string]model.ClassifiedToken{
		"mystery": classified(model.Organization, "mystery", 0.4),
	}
	c, ok := Extract(entry, m)
	if !ok {
		t.Fatal("expected a candidate when nameScore > 0.35 even for a non-NAME_LIKELY type")
	}
	if c.Name != "mystery" {
		t.Errorf("Name = %q, want %q", c.Name, "mystery")
	}
}

func TestExtractOrderPreserved(t *testing.T) {
	entry := model.CleanedEntry{Tokens: []string{"sharma", "rahul"}}
	m := map[string]model.ClassifiedToken{
		"rahul":  classified(model.NameLikely, "rahul", 0.9),
		"sharma": classified(model.NameLikely, "sharma", 0.9),
	}
	c, ok := Extract(entry, m)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Name != "sharma rahul" {
		t.Errorf("Name = %q, want source order preserved %q", c.Name, "sharma rahul")
	}
}

func TestExtractAllSkipsEmptyEntries(t *testing.T) {
	entries := []model.CleanedEntry{
		{Tokens: []string{"papa"}},
		{Tokens: []string{"rahul"}},
	}
	m := map[string]model.ClassifiedToken{
		"papa":  classified(model.Relationship, "papa", 0.1),
		"rahul": classified(model.NameLikely, "rahul", 0.9),
	}
	out := ExtractAll(entries, m)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Name != "rahul" {
		t.Errorf("Name = %q, want %q", out[0].Name, "rahul")
	}
}
