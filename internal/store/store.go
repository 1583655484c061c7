// Package store is the persistence boundary named in the core's external
// interfaces: the corpus of crowdsourced entries (which the stats cache is
// built from), the durable NameReference table the core's registry is
// seeded from, and the TokenStatistic table. TokenStatistic rows are only
// written (SaveTokenStatistics); this package has no read path for them.
//
// None of the core pipeline packages import this package; resolution is
// pure and takes its inputs by value. Store is a caller responsibility.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"identityresolver/internal/model"
	"identityresolver/internal/registry"
	"identityresolver/internal/stats"
	"identityresolver/internal/tokenizer"
)

// Store is a sqlite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a sqlite database at dsn and runs
// pending migrations. Use "file::memory:?cache=shared" for an ephemeral
// in-process store.
func Open(dsn string) (*Store, error) {
	if path := filePath(dsn); path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set foreign_keys: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// filePath extracts a filesystem path from a sqlite DSN, or "" for
// in-memory DSNs.
func filePath(dsn string) string {
	if len(dsn) >= 5 && dsn[:5] == "file:" {
		path := dsn[5:]
		if i := indexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == ":memory:" {
			return ""
		}
		return path
	}
	return ""
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// EntriesForNumber loads every crowdsourced entry submitted for phone.
func (s *Store) EntriesForNumber(ctx context.Context, phone string) ([]model.CrowdEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, saved_name, country, trust_score, submitted_at
		FROM corpus_entries WHERE phone_number = ?`, phone)
	if err != nil {
		return nil, fmt.Errorf("query entries for %q: %w", phone, err)
	}
	defer rows.Close()

	var out []model.CrowdEntry
	for rows.Next() {
		var e model.CrowdEntry
		if err := rows.Scan(&e.UserID, &e.SavedName, &e.Country, &e.TrustScore, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan entry for %q: %w", phone, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllEntriesWithPhone loads and normalizes every crowdsourced entry across
// every phone number, for building the global token statistics cache.
// Entries that normalize to nothing (pure noise) are skipped, matching
// what the resolution pipeline itself would discard at S1.
func (s *Store) AllEntriesWithPhone(ctx context.Context) ([]stats.EntryWithPhone, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone_number, user_id, saved_name, country, trust_score, submitted_at
		FROM corpus_entries`)
	if err != nil {
		return nil, fmt.Errorf("query all entries: %w", err)
	}
	defer rows.Close()

	var out []stats.EntryWithPhone
	for rows.Next() {
		var phone string
		var e model.CrowdEntry
		if err := rows.Scan(&phone, &e.UserID, &e.SavedName, &e.Country, &e.TrustScore, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		cleaned, ok := tokenizer.NormalizeEntry(e)
		if !ok {
			continue
		}
		out = append(out, stats.EntryWithPhone{Phone: phone, Entry: cleaned})
	}
	return out, rows.Err()
}

// SaveEntry upserts a single crowdsourced contribution.
func (s *Store) SaveEntry(ctx context.Context, phone string, e model.CrowdEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corpus_entries (phone_number, user_id, saved_name, country, trust_score, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (phone_number, user_id) DO UPDATE SET
			saved_name = excluded.saved_name,
			country = excluded.country,
			trust_score = excluded.trust_score,
			submitted_at = excluded.submitted_at`,
		phone, e.UserID, e.SavedName, e.Country, e.TrustScore, e.Timestamp)
	if err != nil {
		return fmt.Errorf("save entry for %q: %w", phone, err)
	}
	return nil
}

// NameReferenceSource distinguishes seed-loaded entries from entries the
// auto-learning write-back path has added.
type NameReferenceSource string

const (
	SourceSeed    NameReferenceSource = "SEED"
	SourceLearned NameReferenceSource = "LEARNED"
)

// NameReferenceRow is the persisted form of a single registry entry.
type NameReferenceRow struct {
	Token      string
	Category   registry.Category
	Source     NameReferenceSource
	Confidence float64
	Frequency  int
}

// LoadNameReferences returns every persisted registry entry, for seeding
// the in-process registry at startup.
func (s *Store) LoadNameReferences(ctx context.Context) ([]NameReferenceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, category, source, confidence, frequency FROM name_reference`)
	if err != nil {
		return nil, fmt.Errorf("query name_reference: %w", err)
	}
	defer rows.Close()

	var out []NameReferenceRow
	for rows.Next() {
		var r NameReferenceRow
		var category, src string
		if err := rows.Scan(&r.Token, &category, &src, &r.Confidence, &r.Frequency); err != nil {
			return nil, fmt.Errorf("scan name_reference row: %w", err)
		}
		r.Category = registry.Category(category)
		r.Source = NameReferenceSource(src)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveNameReference upserts one learned or seed registry entry.
func (s *Store) SaveNameReference(ctx context.Context, row NameReferenceRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO name_reference (token, category, source, confidence, frequency)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (token, category) DO UPDATE SET
			source = excluded.source,
			confidence = excluded.confidence,
			frequency = excluded.frequency`,
		row.Token, string(row.Category), string(row.Source), row.Confidence, row.Frequency)
	if err != nil {
		return fmt.Errorf("save name_reference %q/%q: %w", row.Token, row.Category, err)
	}
	return nil
}

// SaveTokenStatistics persists the current global-stats snapshot, the
// durable form of the S2 statistics cache.
func (s *Store) SaveTokenStatistics(ctx context.Context, snapshot map[string]model.TokenStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin token_statistic save: %w", err)
	}

	for token, st := range snapshot {
		nameScore := 0.0 // token-level nameScore is classification-dependent; persisted for inspection only
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO token_statistic
				(token, global_frequency, number_count, position_first_pct, position_last_pct, solo_frequency, avg_trust_weight, name_score)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (token) DO UPDATE SET
				global_frequency = excluded.global_frequency,
				number_count = excluded.number_count,
				position_first_pct = excluded.position_first_pct,
				position_last_pct = excluded.position_last_pct,
				solo_frequency = excluded.solo_frequency,
				avg_trust_weight = excluded.avg_trust_weight,
				name_score = excluded.name_score`,
			token, st.GlobalFrequency, st.NumberCount, st.PositionFirstPct, st.PositionLastPct, st.SoloFrequency, st.AvgTrustWeight, nameScore); err != nil {
			tx.Rollback()
			return fmt.Errorf("save token_statistic %q: %w", token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit token_statistic save: %w", err)
	}
	return nil
}
