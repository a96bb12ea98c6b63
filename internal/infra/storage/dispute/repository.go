package dispute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var disputeColumns = []string{
	"id",
	"booking_id",
	"reporter_id",
	"reason",
	"description",
	"photo_urls",
	"status",
	"resolution",
	"resolved_at",
	"created_at",
}

// Repository репозиторий жалоб по бронированиям
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория жалоб
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет жалобу
func (r *Repository) Create(ctx context.Context, d *domain.DisputeReport) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("disputes").
		Columns(disputeColumns...).
		Values(
			d.ID,
			d.BookingID,
			d.ReporterID,
			d.Reason,
			d.Description,
			pq.Array(d.PhotoURLs),
			d.Status,
			d.Resolution,
			d.ResolvedAt,
			d.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает жалобу по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DisputeReport, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(disputeColumns...).
		From("disputes").
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	d, err := scanDispute(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan dispute: %v", ErrScanRow, err)
	}

	return d, nil
}

// GetByBooking получает жалобы по бронированию
func (r *Repository) GetByBooking(ctx context.Context, bookingID uuid.UUID) ([]*domain.DisputeReport, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(disputeColumns...).
		From("disputes").
		Where(squirrel.Eq{"booking_id": bookingID.String()}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBooking - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByBooking - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	disputes := make([]*domain.DisputeReport, 0)
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByBooking - scan row: %v", ErrScanRow, err)
		}
		disputes = append(disputes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByBooking - rows error: %v", ErrScanRow, err)
	}

	return disputes, nil
}

// Update сохраняет статус и решение по жалобе
func (r *Repository) Update(ctx context.Context, d *domain.DisputeReport) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("disputes").
		Set("status", d.Status).
		Set("resolution", d.Resolution).
		Set("resolved_at", d.ResolvedAt).
		Where(squirrel.Eq{"id": d.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrDisputeNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDispute(row rowScanner) (*domain.DisputeReport, error) {
	var (
		d         domain.DisputeReport
		photoURLs pq.StringArray
		createdAt sql.NullTime
	)

	err := row.Scan(
		&d.ID,
		&d.BookingID,
		&d.ReporterID,
		&d.Reason,
		&d.Description,
		&photoURLs,
		&d.Status,
		&d.Resolution,
		&d.ResolvedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	d.PhotoURLs = []string(photoURLs)
	d.CreatedAt = createdAt.Time

	return &d, nil
}
