package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	OwnerID        *string
	Statuses       []domain.ComplaintStatus
	PublicOnly     bool
	DeletedOnly    bool
	IncludeDeleted bool
	Year           *int
	Month          *int
	SearchTerm     *string
	Limit          int
	Offset         int
}

// ComplaintRepository encapsulates complaint persistence. Listings are
// most-recent-first; the in-memory store keeps strict insertion order so
// vote ties on the leaderboard stay stable.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Delete(ctx context.Context, id string) error
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository returns a Postgres-backed implementation.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, user_id, user_name, location, description, status, created_at, updated_at,
               resolved_at, image_key, image_url, votes, is_public, authenticity_status, deleted_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (id, user_id, user_name, location, description, status, image_key, image_url, votes, is_public, authenticity_status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.ID,
		complaint.UserID,
		complaint.UserName,
		complaint.Location,
		complaint.Description,
		complaint.Status,
		complaint.ImageKey,
		complaint.ImageURL,
		complaint.Votes,
		complaint.IsPublic,
		complaint.AuthenticityStatus,
	).Scan(&complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET location=$1, description=$2, status=$3, resolved_at=$4, image_key=$5,
            image_url=$6, votes=$7, is_public=$8, authenticity_status=$9, deleted_at=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Location,
		complaint.Description,
		complaint.Status,
		complaint.ResolvedAt,
		complaint.ImageKey,
		complaint.ImageURL,
		complaint.Votes,
		complaint.IsPublic,
		complaint.AuthenticityStatus,
		complaint.DeletedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE id=$1`, complaintColumns)
	var c domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.UserName,
		&c.Location,
		&c.Description,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.ResolvedAt,
		&c.ImageKey,
		&c.ImageURL,
		&c.Votes,
		&c.IsPublic,
		&c.AuthenticityStatus,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := fmt.Sprintf(`SELECT %s FROM complaints`, complaintColumns)
	clauses := []string{"1=1"}
	args := []any{}

	switch {
	case filter.DeletedOnly:
		clauses = append(clauses, "deleted_at IS NOT NULL")
	case !filter.IncludeDeleted:
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.PublicOnly {
		clauses = append(clauses, "is_public=TRUE")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(YEAR FROM created_at)=$%d", len(args)))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		clauses = append(clauses, fmt.Sprintf("EXTRACT(MONTH FROM created_at)=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(location) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC`, base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var c domain.Complaint
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.UserName,
			&c.Location,
			&c.Description,
			&c.Status,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.ResolvedAt,
			&c.ImageKey,
			&c.ImageURL,
			&c.Votes,
			&c.IsPublic,
			&c.AuthenticityStatus,
			&c.DeletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
