// Package learn proposes registry write-backs from a completed resolution:
// a winning cluster confident enough to trust feeds its representative's
// tokens back into the registry so future resolutions recognize them
// directly. Tokens are not filtered by their classified type here.
package learn

import (
	"context"
	"fmt"
	"strings"

	"identityresolver/internal/model"
	"identityresolver/internal/registry"
	"identityresolver/internal/store"
)

const (
	structuralScoreThreshold = 0.6
	confidenceThreshold      = 0.5
)

// Proposal is one candidate registry write-back derived from a resolved
// cluster's representative.
type Proposal struct {
	Token    string
	Category registry.Category
}

// Propose inspects profile's structural and confidence scores and, if both
// clear their thresholds, returns one Proposal per token in representative
// not already in one of reg's FIRST_NAME, LAST_NAME or MIDDLE_NAME sets.
// Category is inferred from token position:
// first token → FIRST_NAME, last → LAST_NAME, interior → MIDDLE_NAME.
func Propose(profile model.IdentityProfile, structuralScore float64, representative string, reg *registry.Registry) []Proposal {
	if structuralScore < structuralScoreThreshold || profile.Confidence < confidenceThreshold {
		return nil
	}

	tokens := strings.Fields(strings.ToLower(representative))
	if len(tokens) == 0 {
		return nil
	}

	var proposals []Proposal
	for i, tok := range tokens {
		category := middleNameCategory(i, len(tokens))
		if alreadyKnown(reg, tok) {
			continue
		}
		proposals = append(proposals, Proposal{Token: tok, Category: category})
	}
	return proposals
}

func middleNameCategory(index, total int) registry.Category {
	switch {
	case index == 0:
		return registry.FirstName
	case index == total-1:
		return registry.LastName
	default:
		return registry.MiddleName
	}
}

func alreadyKnown(reg *registry.Registry, token string) bool {
	for _, cat := range []registry.Category{registry.FirstName, registry.LastName, registry.MiddleName} {
		if reg.Contains(cat, token) {
			return true
		}
	}
	return false
}

// Apply records every proposal via reg.LearnToken and persists the accepted
// ones through st.SaveNameReference. Rejections from LearnToken (token too
// short, category not learnable) are silently skipped, matching reg's own
// invariant enforcement.
func Apply(ctx context.Context, proposals []Proposal, reg *registry.Registry, st *store.Store) error {
	for _, p := range proposals {
		if !reg.LearnToken(p.Token, p.Category) {
			continue
		}
		row := store.NameReferenceRow{
			Token:      p.Token,
			Category:   p.Category,
			Source:     store.SourceLearned,
			Confidence: 1.0,
			Frequency:  1,
		}
		if err := st.SaveNameReference(ctx, row); err != nil {
			return fmt.Errorf("persist learned token %q: %w", p.Token, err)
		}
	}
	return nil
}
