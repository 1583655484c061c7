// Package model holds the data types shared across the identity resolution
// pipeline (internal/tokenizer, internal/classifier, internal/candidate,
// internal/cluster, internal/scorer, internal/ctxmine, internal/resolver).
//
// Every stage consumes the previous stage's output by value or by shared
// immutable view and produces a fresh value; nothing here is mutated after
// construction except via explicit, documented builder functions.
package model

// CrowdEntry is one crowdsourced saved-name contribution for a phone number.
// Immutable once constructed.
type CrowdEntry struct {
	SavedName  string
	UserID     string
	Timestamp  int64
	Country    string
	TrustScore float64 // [0,1]
}

// CleanedEntry is the S1 (tokeniser) output for one CrowdEntry.
// Invariant: Tokens is non-empty; every token matches the cleaned-token
// grammar (lowercase, no leading/trailing punctuation).
type CleanedEntry struct {
	Raw        string
	Cleaned    string
	Tokens     []string
	UserID     string
	TrustScore float64
	Timestamp  int64
	Country    string
}

// TokenFeatures are the per-token structural features computed by S1.
// Invariant: AlphabetRatio + NumericRatio <= 1.
type TokenFeatures struct {
	Token          string
	Length         int
	AlphabetRatio  float64
	NumericRatio   float64
	IsCapitalized  bool
	CharPattern    string // up to 8 chars over {C,V,D,X}
}

// TokenStats are corpus-wide, per-token aggregates computed by
// buildGlobalTokenStats and cached between resolutions.
//
// Invariants: SoloFrequency <= GlobalFrequency; NumberCount <= GlobalFrequency.
type TokenStats struct {
	GlobalFrequency  int
	NumberCount      int
	PositionFirstPct float64
	PositionLastPct  float64
	SoloFrequency    int
	AvgTrustWeight   float64
}

// TokenType is the closed set of classifications S2 assigns to a token.
// Declaration order is the tie-break order for arg-max ties.
type TokenType int

const (
	NameLikely TokenType = iota
	Relationship
	Role
	Organization
	Descriptor
	Noise

	numTokenTypes = int(Noise) + 1
)

func (t TokenType) String() string {
	switch t {
	case NameLikely:
		return "NAME_LIKELY"
	case Relationship:
		return "RELATIONSHIP"
	case Role:
		return "ROLE"
	case Organization:
		return "ORGANIZATION"
	case Descriptor:
		return "DESCRIPTOR"
	case Noise:
		return "NOISE"
	default:
		return "UNKNOWN"
	}
}

// ScoreVector holds the additive contribution accumulated for each TokenType
// during classification. Indexed by TokenType.
type ScoreVector [numTokenTypes]float64

// ClassifiedToken is a token after S2 classification: its structural
// features, its corpus-wide stats snapshot (zero value if none was
// available), and the classification result.
//
// Invariant: Type is the arg-max of Scores under TokenType declaration
// order; NameScore = Scores[NameLikely] / sum(Scores) when sum>0 else 0.5.
type ClassifiedToken struct {
	TokenFeatures
	TokenStats

	Type        TokenType
	Probability float64
	NameScore   float64
	Scores      ScoreVector
}

// NameCandidate is the S3 output: the name-bearing tokens of one
// CleanedEntry, in source order.
type NameCandidate struct {
	Name   string
	Tokens []ClassifiedToken

	// SourceEntry fields are inlined (not a pointer into CleanedEntry) to
	// avoid a cyclic ownership chain from NameCluster back into S1 output;
	// see the design note on cyclic ownership risk.
	SourceUserID     string
	SourceTrustScore float64
}

// NameCluster groups NameCandidates that share a canonical (sorted-token)
// key, after subset-merge absorption of single-token candidates.
//
// Invariants: Representative is an element of Variants; Frequency equals
// len(UserIDs); TotalTrustWeight is the sum of every entry's source trust.
type NameCluster struct {
	Representative   string
	Variants         []string // deduplicated, insertion order
	Entries          []NameCandidate
	Frequency        int
	TotalTrustWeight float64
	UserIDs          map[string]struct{}
}

// ScoredCluster extends NameCluster with the five S5 signals and the
// composite score, each in [0,1].
type ScoredCluster struct {
	NameCluster

	Score            float64
	FrequencyWeight  float64
	TrustWeight      float64
	StructuralScore  float64
	UniquenessScore  float64
	NoiseScore       float64
}

// ExtractedContext is the S6 output: tags and role/relationship/descriptor
// token sets aggregated across every cleaned entry for a phone number.
type ExtractedContext struct {
	Tags                []string // unique, insertion order
	ProbableRole        *string
	RoleTokens          []string
	RelationshipTokens  []string
	DescriptorTokens    []string
}

// IdentityProfile is the final S7 output for one phone number.
type IdentityProfile struct {
	Name          string
	Confidence    float64 // [0,1], rounded to 2 decimals
	Tags          []string
	ProbableRole  *string
	Description   string
	Reasoning     string
}

// LogRecord is one pipeline log entry, per the §6 log-record format.
type LogRecord struct {
	Step      string
	Detail    string
	TimestampMS int64
}
