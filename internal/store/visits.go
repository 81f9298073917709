package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PageView represents a single page view to be recorded.
type PageView struct {
	Path      string
	IPHash    string // caller computes this, see HashIP
	UserAgent string
	Referrer  string
}

// VisitStats holds aggregate page-view counts.
type VisitStats struct {
	Total   int64
	Unique  int64
	Today   int64
	Last7d  int64
	Last30d int64
}

// VisitStore records privacy-preserving page views.
type VisitStore struct {
	db *sqlx.DB
}

// NewVisitStore creates a new VisitStore.
func NewVisitStore(db *sqlx.DB) *VisitStore {
	return &VisitStore{db: db}
}

func (s *VisitStore) q(query string) string { return s.db.Rebind(query) }

// RecordView inserts a page view row.
func (s *VisitStore) RecordView(ctx context.Context, v PageView) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO page_views (id, path, ip_hash, user_agent, referrer, viewed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), uuid.New().String(), truncate(v.Path, 512), v.IPHash,
		truncate(v.UserAgent, 512), truncate(v.Referrer, 2048), time.Now().UTC())
	return err
}

// GetVisitStats returns total, distinct-visitor and windowed view counts.
func (s *VisitStore) GetVisitStats(ctx context.Context) (VisitStats, error) {
	var stats VisitStats
	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.Total, `SELECT COUNT(*) FROM page_views`, nil},
		{&stats.Unique, `SELECT COUNT(DISTINCT ip_hash) FROM page_views`, nil},
		{&stats.Today, `SELECT COUNT(*) FROM page_views WHERE viewed_at >= ?`, []any{today}},
		{&stats.Last7d, `SELECT COUNT(*) FROM page_views WHERE viewed_at >= ?`, []any{now.AddDate(0, 0, -7)}},
		{&stats.Last30d, `SELECT COUNT(*) FROM page_views WHERE viewed_at >= ?`, []any{now.AddDate(0, 0, -30)}},
	}
	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dst, s.q(c.query), c.args...); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// HashIP computes SHA-256(ip + ":" + YYYYMMDD_UTC) for the current day, so
// a visitor can be counted once per day without storing the address.
func HashIP(ip string) string {
	salt := time.Now().UTC().Format("20060102")
	h := sha256.Sum256([]byte(ip + ":" + salt))
	return fmt.Sprintf("%x", h)
}

// truncate caps s at n bytes without splitting a UTF-8 sequence. Invalid
// bytes are replaced first so the column always receives valid UTF-8.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
