// Package resolver implements S7 (consensus resolution) and orchestrates
// the full S1→S7 pipeline behind a single Resolve entry point.
package resolver

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"identityresolver/internal/candidate"
	"identityresolver/internal/classifier"
	"identityresolver/internal/cluster"
	"identityresolver/internal/ctxmine"
	"identityresolver/internal/model"
	"identityresolver/internal/registry"
	"identityresolver/internal/scorer"
	"identityresolver/internal/tokenizer"
)

const (
	highConfidenceThreshold     = 0.8
	moderateConfidenceThreshold = 0.5
)

// Clock lets callers inject a timestamp source for log records; pipeline
// stages themselves never read the wall clock.
type Clock func() int64

type pipelineLog struct {
	records []model.LogRecord
	clock   Clock
}

func (l *pipelineLog) add(step, detail string) {
	var ts int64
	if l.clock != nil {
		ts = l.clock()
	}
	l.records = append(l.records, model.LogRecord{Step: step, Detail: detail, TimestampMS: ts})
}

func (l *pipelineLog) tail(n int) []model.LogRecord {
	if len(l.records) <= n {
		return l.records
	}
	return l.records[len(l.records)-n:]
}

// sentinelProfile is returned whenever no cluster survives to S7.
func sentinelProfile(ctx model.ExtractedContext, log *pipelineLog) model.IdentityProfile {
	return model.IdentityProfile{
		Name:         "Unknown",
		Confidence:   0,
		Tags:         ctx.Tags,
		ProbableRole: ctx.ProbableRole,
		Description:  "Identified as Unknown",
		Reasoning:    reasoningTail(log),
	}
}

func reasoningTail(log *pipelineLog) string {
	var b strings.Builder
	for _, r := range log.tail(6) {
		fmt.Fprintf(&b, "[%s] %s\n", r.Step, r.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Resolve runs the full pipeline over one phone number's crowdsourced
// entries and produces its IdentityProfile. globalStats and the registry
// snapshot are read-only for the duration of this call.
func Resolve(entries []model.CrowdEntry, totalNumbers int, globalStats map[string]model.TokenStats, reg *registry.Registry, clock Clock) model.IdentityProfile {
	log := &pipelineLog{clock: clock}

	log.add("S1", fmt.Sprintf("normalizing %d entries", len(entries)))
	var cleaned []model.CleanedEntry
	for _, e := range entries {
		if c, ok := tokenizer.NormalizeEntry(e); ok {
			cleaned = append(cleaned, c)
		}
	}
	log.add("S1", fmt.Sprintf("%d entries survived normalization", len(cleaned)))

	if len(cleaned) == 0 {
		log.add("S7", "no entries survived S1, emitting sentinel")
		return sentinelProfile(model.ExtractedContext{}, log)
	}

	log.add("S2", "classifying unique tokens")
	classified := classifier.ClassifyEntryTokens(
		cleaned,
		reg,
		totalNumbers,
		tokenizer.ExtractTokenFeatures,
		func(tok string) (model.TokenStats, bool) {
			st, ok := globalStats[tok]
			return st, ok
		},
	)
	log.add("S2", fmt.Sprintf("classified %d unique tokens", len(classified)))

	log.add("S3", "extracting name candidates")
	candidates := candidate.ExtractAll(cleaned, classified)
	log.add("S3", fmt.Sprintf("%d candidates extracted", len(candidates)))

	log.add("S6", "mining context")
	ctx := ctxmine.Mine(cleaned, classified)
	log.add("S6", fmt.Sprintf("%d tags, probableRole=%v", len(ctx.Tags), ctx.ProbableRole))

	if len(candidates) == 0 {
		log.add("S7", "no candidates survived S3, emitting sentinel")
		return sentinelProfile(ctx, log)
	}

	log.add("S4", "clustering candidates")
	clusters := cluster.Cluster(candidates)
	log.add("S4", fmt.Sprintf("%d clusters formed", len(clusters)))

	log.add("S5", "scoring clusters")
	totalContributors := len(entries)
	scored := scorer.ScoreAll(clusters, classified, totalContributors)
	log.add("S5", fmt.Sprintf("scored %d clusters", len(scored)))

	log.add("S7", "selecting winner and computing confidence")
	profile := consensus(scored, ctx, totalContributors, log)
	return profile
}

func consensus(scored []model.ScoredCluster, ctx model.ExtractedContext, totalEntries int, log *pipelineLog) model.IdentityProfile {
	if len(scored) == 0 {
		return sentinelProfile(ctx, log)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	winner := scored[0]
	var runnerUp *model.ScoredCluster
	if len(scored) > 1 {
		runnerUp = &scored[1]
	}

	var clusterDominance float64
	if runnerUp != nil {
		denom := math.Max(winner.Score, 0.01)
		clusterDominance = math.Min((winner.Score-runnerUp.Score)/denom, 1)
	} else {
		clusterDominance = 0.8
	}

	var datasetAgreement float64
	if totalEntries > 0 {
		datasetAgreement = math.Min(float64(winner.Frequency)/float64(totalEntries), 1)
	}

	tokenReliability := winner.StructuralScore
	sourceTrust := winner.TrustWeight

	confidence := clamp01(0.25*clusterDominance + 0.35*datasetAgreement + 0.20*tokenReliability + 0.20*sourceTrust)
	confidence = math.Round(confidence*100) / 100

	name := tokenizer.CapitalizeName(winner.Representative)
	description := buildDescription(name, ctx.ProbableRole, confidence, winner.Frequency)

	log.add("S7", fmt.Sprintf("winner=%q score=%.3f confidence=%.2f", winner.Representative, winner.Score, confidence))

	return model.IdentityProfile{
		Name:         name,
		Confidence:   confidence,
		Tags:         ctx.Tags,
		ProbableRole: ctx.ProbableRole,
		Description:  description,
		Reasoning:    buildReasoning(scored, winner, runnerUp, ctx, totalEntries, log),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func buildDescription(name string, role *string, confidence float64, frequency int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identified as %s", name)
	if role != nil {
		fmt.Fprintf(&b, ", likely a %s", *role)
	}

	var level string
	switch {
	case confidence >= highConfidenceThreshold:
		level = "high"
	case confidence >= moderateConfidenceThreshold:
		level = "moderate"
	default:
		level = "low"
	}
	fmt.Fprintf(&b, " with %s confidence", level)
	fmt.Fprintf(&b, ", based on %d source(s)", frequency)
	return b.String()
}

func buildReasoning(scored []model.ScoredCluster, winner model.ScoredCluster, runnerUp *model.ScoredCluster, ctx model.ExtractedContext, totalEntries int, log *pipelineLog) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluated %d cluster(s) across %d total source(s).\n", len(scored), totalEntries)
	fmt.Fprintf(&b, "Winner: %q score=%.3f (freq=%.2f trust=%.2f struct=%.2f unique=%.2f noise=%.2f)\n",
		winner.Representative, winner.Score, winner.FrequencyWeight, winner.TrustWeight, winner.StructuralScore, winner.UniquenessScore, winner.NoiseScore)

	top := winner.Variants
	if len(top) > 5 {
		top = top[:5]
	}
	fmt.Fprintf(&b, "Top variants: %s\n", strings.Join(top, ", "))

	if runnerUp != nil {
		fmt.Fprintf(&b, "Runner-up: %q score=%.3f\n", runnerUp.Representative, runnerUp.Score)
	}

	if len(ctx.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(ctx.Tags, ", "))
	}

	for _, r := range log.tail(6) {
		fmt.Fprintf(&b, "[%s] %s\n", r.Step, r.Detail)
	}

	return strings.TrimRight(b.String(), "\n")
}
