package ctxmine

import (
	"reflect"
	"testing"

	"identityresolver/internal/model"
)

func classifiedToken(tok string, typ model.TokenType) model.ClassifiedToken {
	return model.ClassifiedToken{TokenFeatures: model.TokenFeatures{Token: tok}, Type: typ}
}

func TestMineNoRoleTokensYieldsNilProbableRole(t *testing.T) {
	entries := []model.CleanedEntry{{Tokens: []string{"rahul"}}}
	classified := map[string]model.ClassifiedToken{
		"rahul": classifiedToken("rahul", model.NameLikely),
	}
	ctx := Mine(entries, classified)
	if ctx.ProbableRole != nil {
		t.Errorf("ProbableRole = %v, want nil", *ctx.ProbableRole)
	}
}

func TestMineProbableRoleByOccurrenceCount(t *testing.T) {
	entries := []model.CleanedEntry{
		{Tokens: []string{"plumber"}},
		{Tokens: []string{"plumber"}},
		{Tokens: []string{"driver"}},
	}
	classified := map[string]model.ClassifiedToken{
		"plumber": classifiedToken("plumber", model.Role),
		"driver":  classifiedToken("driver", model.Role),
	}
	ctx := Mine(entries, classified)
	if ctx.ProbableRole == nil || *ctx.ProbableRole != "plumber" {
		t.Errorf("ProbableRole = %v, want 'plumber'", ctx.ProbableRole)
	}
}

func TestMineTagsUnionRolesRelationshipsOrgs(t *testing.T) {
	entries := []model.CleanedEntry{
		{Tokens: []string{"plumber", "papa", "clinic"}},
	}
	classified := map[string]model.ClassifiedToken{
		"plumber": classifiedToken("plumber", model.Role),
		"papa":    classifiedToken("papa", model.Relationship),
		"clinic":  classifiedToken("clinic", model.Organization),
	}
	ctx := Mine(entries, classified)
	want := []string{"plumber", "papa", "clinic"}
	if !reflect.DeepEqual(ctx.Tags, want) {
		t.Errorf("Tags = %v, want %v", ctx.Tags, want)
	}
}

func TestMineDescriptorsNotInTags(t *testing.T) {
	entries := []model.CleanedEntry{{Tokens: []string{"office"}}}
	classified := map[string]model.ClassifiedToken{
		"office": classifiedToken("office", model.Descriptor),
	}
	ctx := Mine(entries, classified)
	if len(ctx.Tags) != 0 {
		t.Errorf("Tags = %v, want empty (descriptors not surfaced as tags)", ctx.Tags)
	}
	if len(ctx.DescriptorTokens) != 1 || ctx.DescriptorTokens[0] != "office" {
		t.Errorf("DescriptorTokens = %v, want [office]", ctx.DescriptorTokens)
	}
}
