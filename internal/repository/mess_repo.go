package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mess_finder/internal/model"

	"github.com/jackc/pgx/v5"
)

// MessRepository defines operations for listing data
type MessRepository interface {
	Create(ctx context.Context, mess *model.Mess) error
	FindByID(ctx context.Context, id int) (*model.Mess, error)
	FindAll(ctx context.Context, filters model.MessFilters) ([]model.Mess, error)
	FindByOwner(ctx context.Context, ownerID int) ([]model.Mess, error)
	Update(ctx context.Context, id, ownerID int, in model.UpdateMessInput) (*model.Mess, *string, error)
	Delete(ctx context.Context, id, ownerID int) (*model.Mess, error)
	FindImagesByOwner(ctx context.Context, ownerID int) ([]string, error)
}

type messRepository struct {
	db DBTX
}

// NewMessRepository creates a new MessRepository
func NewMessRepository(db DBTX) MessRepository {
	return &messRepository{db: db}
}

const messColumns = `id, name, area, price, delivery, menu, image_url, owner_id, created_at, updated_at`

func scanMess(row pgx.Row, m *model.Mess, extra ...any) error {
	dest := []any{
		&m.ID, &m.Name, &m.Area, &m.Price, &m.Delivery, &m.Menu,
		&m.ImageURL, &m.OwnerID, &m.CreatedAt, &m.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

func collectMesses(rows pgx.Rows) ([]model.Mess, error) {
	defer rows.Close()

	messes := []model.Mess{}
	for rows.Next() {
		var m model.Mess
		if err := scanMess(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan mess row: %w", err)
		}
		messes = append(messes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mess rows: %w", err)
	}
	return messes, nil
}

// Create inserts a new listing
func (r *messRepository) Create(ctx context.Context, m *model.Mess) error {
	if m.Menu == nil {
		m.Menu = []string{}
	}
	sql := `INSERT INTO messes (name, area, price, delivery, menu, image_url, owner_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, sql, m.Name, m.Area, m.Price, m.Delivery, m.Menu, m.ImageURL, m.OwnerID).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create mess: %w", err)
	}
	return nil
}

// FindByID retrieves a listing by its ID; nil when absent
func (r *messRepository) FindByID(ctx context.Context, id int) (*model.Mess, error) {
	m := &model.Mess{}
	sql := `SELECT ` + messColumns + ` FROM messes WHERE id = $1`
	if err := scanMess(r.db.QueryRow(ctx, sql, id), m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find mess by ID: %w", err)
	}
	return m, nil
}

// FindAll retrieves listings with optional public filters, newest first
func (r *messRepository) FindAll(ctx context.Context, filters model.MessFilters) ([]model.Mess, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + messColumns + ` FROM messes`)

	args := []interface{}{}
	argCount := 1
	var conditions []string

	if filters.Area != nil && *filters.Area != "" {
		conditions = append(conditions, fmt.Sprintf("area ILIKE '%%' || $%d || '%%'", argCount))
		args = append(args, *filters.Area)
		argCount++
	}
	if filters.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argCount))
		args = append(args, *filters.MaxPrice)
		argCount++
	}
	if filters.Delivery != nil {
		conditions = append(conditions, fmt.Sprintf("delivery = $%d", argCount))
		args = append(args, *filters.Delivery)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messes: %w", err)
	}
	return collectMesses(rows)
}

// FindByOwner retrieves the listings of one owner, newest first
func (r *messRepository) FindByOwner(ctx context.Context, ownerID int) ([]model.Mess, error) {
	sql := `SELECT ` + messColumns + ` FROM messes WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, sql, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messes by owner: %w", err)
	}
	return collectMesses(rows)
}

// Update applies a partial update in one statement scoped to the owner.
// Omitted fields, the image included, keep their stored value, so concurrent
// updates cannot resurrect a stale image path. It returns the updated row and
// the image path it replaced, or nil, nil, nil when no owned row matched.
func (r *messRepository) Update(ctx context.Context, id, ownerID int, in model.UpdateMessInput) (*model.Mess, *string, error) {
	sql := `WITH prev AS (
                SELECT id, image_url FROM messes WHERE id = $7 AND owner_id = $8 FOR UPDATE
            )
            UPDATE messes m SET
                name = COALESCE($1, m.name),
                area = COALESCE($2, m.area),
                price = COALESCE($3, m.price),
                delivery = COALESCE($4, m.delivery),
                menu = COALESCE($5, m.menu),
                image_url = COALESCE($6, m.image_url),
                updated_at = NOW()
            FROM prev
            WHERE m.id = prev.id
            RETURNING m.id, m.name, m.area, m.price, m.delivery, m.menu, m.image_url, m.owner_id, m.created_at, m.updated_at, prev.image_url`

	var menu any
	if in.Menu != nil {
		menu = in.Menu
	}

	m := &model.Mess{}
	var prevImage *string
	row := r.db.QueryRow(ctx, sql,
		valueOrNil(in.Name), valueOrNil(in.Area), valueOrNil(in.Price), valueOrNil(in.Delivery),
		menu, valueOrNil(in.ImageURL), id, ownerID,
	)
	if err := scanMess(row, m, &prevImage); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to update mess: %w", err)
	}
	return m, prevImage, nil
}

// Delete removes a listing and returns it; ownerID 0 skips the ownership scope.
// Returns nil when no row matched.
func (r *messRepository) Delete(ctx context.Context, id, ownerID int) (*model.Mess, error) {
	sql := `DELETE FROM messes WHERE id = $1`
	args := []interface{}{id}
	if ownerID != 0 {
		sql += ` AND owner_id = $2`
		args = append(args, ownerID)
	}
	sql += ` RETURNING ` + messColumns

	m := &model.Mess{}
	if err := scanMess(r.db.QueryRow(ctx, sql, args...), m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete mess: %w", err)
	}
	return m, nil
}

// FindImagesByOwner lists the stored image paths of an owner's listings
func (r *messRepository) FindImagesByOwner(ctx context.Context, ownerID int) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT image_url FROM messes WHERE owner_id = $1 AND image_url IS NOT NULL`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mess images: %w", err)
	}
	defer rows.Close()

	var images []string
	for rows.Next() {
		var img string
		if err := rows.Scan(&img); err != nil {
			return nil, fmt.Errorf("failed to scan mess image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mess images: %w", err)
	}
	return images, nil
}

func valueOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
