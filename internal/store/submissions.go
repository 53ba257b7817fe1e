package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mattlowe/formhall/internal/field"
	"github.com/mattlowe/formhall/internal/lookup"
)

// SaveSubmission persists one submission, assigning its id and satisfying
// render.Sink. Submissions are immutable after this point.
func (s *Store) SaveSubmission(ctx context.Context, sub field.Submission) (field.Submission, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	dataJSON, err := json.Marshal(sub.Data)
	if err != nil {
		return field.Submission{}, fmt.Errorf("encoding submission data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_submissions (id, form_id, data, submitted_at, submitter, integration_result)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.FormID, string(dataJSON),
		sub.SubmittedAt.Format(time.RFC3339Nano), sub.Submitter, sub.IntegrationResult,
	)
	if err != nil {
		return field.Submission{}, fmt.Errorf("saving submission: %w", err)
	}
	return sub, nil
}

// ListSubmissions returns one page of a form's submissions, newest first,
// with the total count across all pages.
func (s *Store) ListSubmissions(ctx context.Context, formID string, skip, limit int) ([]field.Submission, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, data, submitted_at, submitter, integration_result
		FROM form_submissions WHERE form_id = ?
		ORDER BY submitted_at DESC
		LIMIT ? OFFSET ?`, formID, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	subs := []field.Submission{}
	for rows.Next() {
		var sub field.Submission
		var dataJSON, submittedAt string
		if err := rows.Scan(&sub.ID, &sub.FormID, &dataJSON, &submittedAt,
			&sub.Submitter, &sub.IntegrationResult); err != nil {
			return nil, 0, fmt.Errorf("scanning submission: %w", err)
		}
		sub.SubmittedAt, _ = time.Parse(time.RFC3339Nano, submittedAt)
		sub.Data = map[string]string{}
		// Malformed stored data degrades to an empty map; the viewer shows
		// what it can.
		_ = json.Unmarshal([]byte(dataJSON), &sub.Data)
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM form_submissions WHERE form_id = ?`, formID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting submissions: %w", err)
	}
	return subs, total, nil
}

// DeleteSubmission removes one submission. No undo.
func (s *Store) DeleteSubmission(ctx context.Context, formID, subID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM form_submissions WHERE id = ? AND form_id = ?`, subID, formID)
	if err != nil {
		return fmt.Errorf("deleting submission %s: %w", subID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deleting submission %s: %w", subID, ErrNotFound)
	}
	return nil
}

// ── Member directory ────────────────────────────────────────────────────────

// SearchMembers implements lookup.Directory over the members table with a
// case-insensitive substring match on the full name.
func (s *Store) SearchMembers(ctx context.Context, query string, limit int) ([]lookup.Member, error) {
	if limit <= 0 {
		limit = lookup.MaxResults
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, rank FROM members
		WHERE full_name LIKE '%' || ? || '%' COLLATE NOCASE
		ORDER BY full_name
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching members: %w", err)
	}
	defer rows.Close()

	var members []lookup.Member
	for rows.Next() {
		var m lookup.Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.Rank); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountMembers reports how many directory entries exist.
func (s *Store) CountMembers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return n, nil
}

// UpsertMember inserts or replaces a directory entry. The console's member
// administration owns the directory; this is the engine's seam into it.
func (s *Store) UpsertMember(ctx context.Context, m lookup.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, full_name, rank) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET full_name = excluded.full_name, rank = excluded.rank`,
		m.ID, m.FullName, m.Rank)
	if err != nil {
		return fmt.Errorf("upserting member: %w", err)
	}
	return nil
}
