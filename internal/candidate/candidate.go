// Package candidate implements S3: turning a CleanedEntry's classified
// tokens into a NameCandidate by keeping only the name-bearing tokens.
package candidate

import (
	"strings"

	"identityresolver/internal/model"
)

// keep reports whether a classified token should survive into a name
// candidate: RELATIONSHIP, DESCRIPTOR and NOISE tokens never do; anything
// else survives if it was classified NAME_LIKELY outright, or if its
// nameScore clears the weak-signal threshold.
func keep(ct model.ClassifiedToken) bool {
	switch ct.Type {
	case model.Relationship, model.Descriptor, model.Noise:
		return false
	}
	return ct.Type == model.NameLikely || ct.NameScore > 0.35
}

// Extract builds a NameCandidate from entry's tokens, classified via
// classified (by token string). Returns ok=false if no token survives.
func Extract(entry model.CleanedEntry, classified map[string]model.ClassifiedToken) (model.NameCandidate, bool) {
	var kept []model.ClassifiedToken
	for _, tok := range entry.Tokens {
		ct, ok := classified[tok]
		if !ok {
			continue
		}
		if keep(ct) {
			kept = append(kept, ct)
		}
	}
	if len(kept) == 0 {
		return model.NameCandidate{}, false
	}

	names := make([]string, len(kept))
	for i, ct := range kept {
		names[i] = ct.Token
	}

	return model.NameCandidate{
		Name:             strings.Join(names, " "),
		Tokens:           kept,
		SourceUserID:     entry.UserID,
		SourceTrustScore: entry.TrustScore,
	}, true
}

// ExtractAll runs Extract over every entry, in order, skipping entries
// that yield no candidate.
func ExtractAll(entries []model.CleanedEntry, classified map[string]model.ClassifiedToken) []model.NameCandidate {
	out := make([]model.NameCandidate, 0, len(entries))
	for _, entry := range entries {
		if c, ok := Extract(entry, classified); ok {
			out = append(out, c)
		}
	}
	return out
}
