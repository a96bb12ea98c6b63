package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"kind",
	"facility_id",
	"slot_id",
	"requester_id",
	"host_id",
	"requested_at",
	"scheduled_start",
	"scheduled_end",
	"actual_start",
	"actual_end",
	"duration_type",
	"agreed_rate",
	"estimated_cost",
	"actual_cost",
	"overstay_fee",
	"host_earnings",
	"status",
	"cancelled_at",
	"extension_keys",
	"approval_time",
	"rejection_reason",
	"access_pin",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Частичный уникальный индекс по slot_id для живых статусов не даст привязать
// к месту второе бронирование, в этом случае возвращается ErrSlotNotAvailable
func (r *Repository) Create(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	approvalTime, rejectionReason, accessPIN := privateColumns(b)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(bookingColumns...).
		Values(
			b.ID,
			b.Kind,
			b.FacilityID,
			b.SlotID,
			b.RequesterID,
			b.HostID,
			b.RequestedAt,
			b.ScheduledStart,
			b.ScheduledEnd,
			b.ActualStart,
			b.ActualEnd,
			b.DurationType,
			b.AgreedRate,
			b.EstimatedCost,
			b.ActualCost,
			b.OverstayFee,
			b.HostEarnings,
			b.Status,
			b.CancelledAt,
			pq.Array(b.ExtensionKeys),
			approvalTime,
			rejectionReason,
			accessPIN,
			b.CreatedAt,
			b.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: Create - slot_id=%s: %v", ErrSlotNotAvailable, b.SlotID, err)
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID
// Внутри транзакции блокирует строку (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// FindByAccessPIN ищет живое бронирование площадки по PIN
func (r *Repository) FindByAccessPIN(ctx context.Context, facilityID uuid.UUID, pin string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"facility_id": facilityID.String(),
			"access_pin":  pin,
			"status":      statusStrings(domain.LiveStatuses),
		}).
		OrderBy("created_at DESC").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindByAccessPIN - build select query: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindByAccessPIN - scan booking: %v", ErrScanRow, err)
	}

	return b, nil
}

// GetByRequester получает бронирования водителя
// Опционально фильтрует по статусу
func (r *Repository) GetByRequester(ctx context.Context, userID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"requester_id": userID}).
		OrderBy("scheduled_start DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	return r.query(ctx, "GetByRequester", selectBuilder)
}

// GetByHostWithFilter получает бронирования хоста
// Без статуса и IncludeInactive возвращает только нетерминальные бронирования
func (r *Repository) GetByHostWithFilter(ctx context.Context, filter domain.HostBookingsFilter) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"host_id": filter.HostID}).
		OrderBy("scheduled_start DESC")

	if filter.FacilityID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"facility_id": filter.FacilityID.String()})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.TerminalStatuses)})
	}

	return r.query(ctx, "GetByHostWithFilter", selectBuilder)
}

// GetPendingApprovalStartedBefore заявки без решения хоста, у которых наступило время начала
func (r *Repository) GetPendingApprovalStartedBefore(ctx context.Context, now time.Time) ([]*domain.Booking, error) {
	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"status": string(domain.StatusPendingApproval)}).
		Where(squirrel.LtOrEq{"scheduled_start": now}).
		OrderBy("scheduled_start ASC")

	return r.query(ctx, "GetPendingApprovalStartedBefore", selectBuilder)
}

// Update сохраняет состояние бронирования после перехода
func (r *Repository) Update(ctx context.Context, b *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	approvalTime, rejectionReason, accessPIN := privateColumns(b)

	query, args, err := psqlbuilder.Update("bookings").
		Set("scheduled_end", b.ScheduledEnd).
		Set("actual_start", b.ActualStart).
		Set("actual_end", b.ActualEnd).
		Set("estimated_cost", b.EstimatedCost).
		Set("actual_cost", b.ActualCost).
		Set("overstay_fee", b.OverstayFee).
		Set("host_earnings", b.HostEarnings).
		Set("status", b.Status).
		Set("cancelled_at", b.CancelledAt).
		Set("extension_keys", pq.Array(b.ExtensionKeys)).
		Set("approval_time", approvalTime).
		Set("rejection_reason", rejectionReason).
		Set("access_pin", accessPIN).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: Update - slot_id=%s: %v", ErrSlotNotAvailable, b.SlotID, err)
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *Repository) query(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return bookings, nil
}

func privateColumns(b *domain.Booking) (*time.Time, *string, *string) {
	if b.Private == nil {
		return nil, nil, nil
	}
	return b.Private.ApprovalTime, b.Private.RejectionReason, b.Private.AccessPIN
}

func statusStrings(statuses []domain.BookingStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b               domain.Booking
		approvalTime    sql.NullTime
		rejectionReason sql.NullString
		accessPIN       sql.NullString
		createdAt       sql.NullTime
		updatedAt       sql.NullTime
	)

	err := row.Scan(
		&b.ID,
		&b.Kind,
		&b.FacilityID,
		&b.SlotID,
		&b.RequesterID,
		&b.HostID,
		&b.RequestedAt,
		&b.ScheduledStart,
		&b.ScheduledEnd,
		&b.ActualStart,
		&b.ActualEnd,
		&b.DurationType,
		&b.AgreedRate,
		&b.EstimatedCost,
		&b.ActualCost,
		&b.OverstayFee,
		&b.HostEarnings,
		&b.Status,
		&b.CancelledAt,
		pq.Array(&b.ExtensionKeys),
		&approvalTime,
		&rejectionReason,
		&accessPIN,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.Kind == domain.KindPrivate {
		b.Private = &domain.PrivateTerms{}
		if approvalTime.Valid {
			b.Private.ApprovalTime = &approvalTime.Time
		}
		if rejectionReason.Valid {
			b.Private.RejectionReason = &rejectionReason.String
		}
		if accessPIN.Valid {
			b.Private.AccessPIN = &accessPIN.String
		}
	}
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}
