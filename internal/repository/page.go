package repository

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Cursor marks a position in a (created_at desc, id asc) ordering. A page
// "before" a cursor holds the rows that sort strictly after it.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Page bounds a time-ordered query
type Page struct {
	Limit  int
	Before *Cursor
}

// Encode returns an opaque token for HTTP clients
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode. Empty tokens yield nil.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, fmt.Errorf("malformed cursor")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor: %w", err)
	}
	return &Cursor{CreatedAt: t.UTC(), ID: id}, nil
}

// orderedPage applies the feed ordering and cursor to q
func orderedPage(q *gorm.DB, p Page) *gorm.DB {
	if p.Before != nil {
		q = q.Where("(created_at < ? OR (created_at = ? AND id > ?))",
			p.Before.CreatedAt, p.Before.CreatedAt, p.Before.ID)
	}
	q = q.Order("created_at DESC").Order("id ASC")
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}
