package items

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"lostfound/internal/apperr"
)

// Repository persists lost-and-found reports in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new report.
func (r *Repository) Insert(ctx context.Context, it Item) (Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO items (id, title, description, type, location, date, contact, image_url,
			reported_by, reporter_name, claimed, claimed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at
	`, it.ID, it.Title, it.Description, it.Type, it.Location, it.Date, it.Contact, it.ImageURL,
		it.ReportedBy.ID, it.ReportedBy.Name, it.Claimed, it.ClaimedAt)
	if err := row.Scan(&it.CreatedAt); err != nil {
		return Item{}, err
	}
	return it, nil
}

// Get returns a single report by id.
func (r *Repository) Get(ctx context.Context, id string) (Item, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT i.id, i.title, i.description, i.type, i.location, i.date, i.contact, i.image_url,
			i.reported_by, COALESCE(i.reporter_name, u.name, ''), COALESCE(u.email, ''),
			i.claimed, i.claimed_at, i.created_at
		FROM items i
		LEFT JOIN users u ON u.id = i.reported_by
		WHERE i.id = $1
	`, id)
	it, err := scanItem(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, apperr.ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

// List returns reports ordered newest first, optionally filtered by type.
// Before reading it backfills missing reporter-name snapshots from the users
// table, so legacy rows are healed once and served from the denormalized
// column afterwards.
func (r *Repository) List(ctx context.Context, typ string) ([]Item, error) {
	if err := r.backfillReporterNames(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT i.id, i.title, i.description, i.type, i.location, i.date, i.contact, i.image_url,
			i.reported_by, COALESCE(i.reporter_name, u.name, ''), COALESCE(u.email, ''),
			i.claimed, i.claimed_at, i.created_at
		FROM items i
		LEFT JOIN users u ON u.id = i.reported_by`
	args := []any{}
	if typ != "" {
		query += ` WHERE i.type = $1`
		args = append(args, typ)
	}
	query += ` ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Item
	for rows.Next() {
		it, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

// backfillReporterNames persists reporter names for rows created before the
// snapshot column existed. Touches only rows where the snapshot is missing.
func (r *Repository) backfillReporterNames(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE items SET reporter_name = u.name
		FROM users u
		WHERE items.reporter_name IS NULL AND items.reported_by = u.id
	`)
	return err
}

// SetClaimed marks a report claimed at the given time. Re-marking an
// already-claimed report refreshes claimed_at.
func (r *Repository) SetClaimed(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE items SET claimed = TRUE, claimed_at = $2 WHERE id = $1`, id, at)
}

// ClearClaimed resets a report to unclaimed.
func (r *Repository) ClearClaimed(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE items SET claimed = FALSE, claimed_at = NULL WHERE id = $1`, id)
}

// Delete removes a report permanently.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM items WHERE id = $1`, id)
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanItem(scan func(dest ...any) error) (Item, error) {
	var it Item
	var imageURL sql.NullString
	var claimedAt sql.NullTime
	err := scan(&it.ID, &it.Title, &it.Description, &it.Type, &it.Location, &it.Date, &it.Contact,
		&imageURL, &it.ReportedBy.ID, &it.ReportedBy.Name, &it.ReportedBy.Email,
		&it.Claimed, &claimedAt, &it.CreatedAt)
	if err != nil {
		return Item{}, err
	}
	it.ImageURL = imageURL.String
	if claimedAt.Valid {
		t := claimedAt.Time
		it.ClaimedAt = &t
	}
	return it, nil
}
