package facility

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ParkingService/pkg/pgerrors"
	"github.com/m04kA/SMC-ParkingService/pkg/psqlbuilder"
)

var facilityColumns = []string{
	"id",
	"owner_id",
	"kind",
	"name",
	"address",
	"lat",
	"lon",
	"facility_type",
	"hourly_rate",
	"daily_rate",
	"monthly_rate",
	"flat_day_rate",
	"amenities",
	"auto_accept_bookings",
	"rating",
	"review_count",
	"is_deleted",
	"created_at",
	"updated_at",
}

var slotColumns = []string{
	"id",
	"facility_id",
	"floor",
	"number",
	"type",
	"occupied",
	"disabled",
	"current_booking_id",
	"booking_end_time",
}

// Repository репозиторий площадок и их мест
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет площадку вместе с местами
// Вызывать внутри транзакции, иначе при ошибке вставки мест площадка останется без них
func (r *Repository) Create(ctx context.Context, f *domain.Facility) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	amenities, err := marshalAmenities(f.Amenities)
	if err != nil {
		return fmt.Errorf("%w: Create - marshal amenities: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("facilities").
		Columns(facilityColumns...).
		Values(
			f.ID,
			f.OwnerID,
			f.Kind,
			f.Name,
			f.Address,
			f.Location.Lat,
			f.Location.Lon,
			f.FacilityType,
			f.Pricing.HourlyRate,
			f.Pricing.DailyRate,
			f.Pricing.MonthlyRate,
			f.Pricing.FlatDayRate,
			amenities,
			f.AutoAcceptBookings,
			f.Rating,
			f.ReviewCount,
			f.IsDeleted,
			f.CreatedAt,
			f.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if len(f.Slots) > 0 {
		return r.AddSlots(ctx, f.Slots)
	}
	return nil
}

// GetByID получает площадку с местами
// Внутри транзакции блокирует строку площадки (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(facilityColumns...).
		From("facilities").
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	f, err := scanFacility(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan facility: %v", ErrScanRow, err)
	}

	slots, err := r.slotsByFacility(ctx, []uuid.UUID{f.ID})
	if err != nil {
		return nil, err
	}
	f.Slots = slots[f.ID]

	return f, nil
}

// List получает площадки с местами
func (r *Repository) List(ctx context.Context, filter domain.FacilityFilter) ([]*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(facilityColumns...).
		From("facilities").
		OrderBy("created_at DESC")

	if filter.Kind != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.OwnerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if !filter.IncludeDeleted {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_deleted": false})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	facilities := make([]*domain.Facility, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan facility: %v", ErrScanRow, err)
		}
		facilities = append(facilities, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	if len(ids) == 0 {
		return facilities, nil
	}

	slots, err := r.slotsByFacility(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, f := range facilities {
		f.Slots = slots[f.ID]
	}

	return facilities, nil
}

// Update обновляет поля площадки (места не трогает)
func (r *Repository) Update(ctx context.Context, f *domain.Facility) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	amenities, err := marshalAmenities(f.Amenities)
	if err != nil {
		return fmt.Errorf("%w: Update - marshal amenities: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update("facilities").
		Set("name", f.Name).
		Set("address", f.Address).
		Set("lat", f.Location.Lat).
		Set("lon", f.Location.Lon).
		Set("facility_type", f.FacilityType).
		Set("hourly_rate", f.Pricing.HourlyRate).
		Set("daily_rate", f.Pricing.DailyRate).
		Set("monthly_rate", f.Pricing.MonthlyRate).
		Set("flat_day_rate", f.Pricing.FlatDayRate).
		Set("amenities", amenities).
		Set("auto_accept_bookings", f.AutoAcceptBookings).
		Set("is_deleted", f.IsDeleted).
		Set("updated_at", f.UpdatedAt).
		Where(squirrel.Eq{"id": f.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Update", query, args, ErrFacilityNotFound)
}

// AddSlots сохраняет новые места одним запросом
func (r *Repository) AddSlots(ctx context.Context, slots []domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("slots").Columns(slotColumns...)
	for _, s := range slots {
		insertBuilder = insertBuilder.Values(
			s.ID,
			s.FacilityID,
			s.Floor,
			s.Number,
			s.Type,
			s.Occupied,
			s.Disabled,
			s.CurrentBookingID,
			s.BookingEndTime,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: AddSlots - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: AddSlots: %v", ErrDuplicateSlot, err)
		}
		return fmt.Errorf("%w: AddSlots - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetSlot получает место по ID
// Внутри транзакции блокирует строку места (FOR UPDATE), это основа эксклюзивности бронирования
func (r *Repository) GetSlot(ctx context.Context, id uuid.UUID) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"id": id.String()})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlot - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlot - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// UpdateSlot сохраняет состояние места
func (r *Repository) UpdateSlot(ctx context.Context, s domain.Slot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("type", s.Type).
		Set("occupied", s.Occupied).
		Set("disabled", s.Disabled).
		Set("current_booking_id", s.CurrentBookingID).
		Set("booking_end_time", s.BookingEndTime).
		Where(squirrel.Eq{"id": s.ID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateSlot", query, args, ErrSlotNotFound)
}

func (r *Repository) slotsByFacility(ctx context.Context, facilityIDs []uuid.UUID) (map[uuid.UUID][]domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots").
		Where(squirrel.Eq{"facility_id": idStrings(facilityIDs)}).
		OrderBy("floor ASC, number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: slotsByFacility - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: slotsByFacility - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]domain.Slot, len(facilityIDs))
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: slotsByFacility - scan slot: %v", ErrScanRow, err)
		}
		result[s.FacilityID] = append(result[s.FacilityID], *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: slotsByFacility - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

func (r *Repository) execAffectingOne(
	ctx context.Context,
	executor DBExecutor,
	op string,
	query string,
	args []interface{},
	notFound error,
) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// idStrings uuid.UUID является массивом, squirrel развернул бы его в IN (...)
func idStrings(ids []uuid.UUID) []string {
	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.String()
	}
	return result
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacility(row rowScanner) (*domain.Facility, error) {
	var (
		f         domain.Facility
		amenities []byte
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Kind,
		&f.Name,
		&f.Address,
		&f.Location.Lat,
		&f.Location.Lon,
		&f.FacilityType,
		&f.Pricing.HourlyRate,
		&f.Pricing.DailyRate,
		&f.Pricing.MonthlyRate,
		&f.Pricing.FlatDayRate,
		&amenities,
		&f.AutoAcceptBookings,
		&f.Rating,
		&f.ReviewCount,
		&f.IsDeleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Amenities, err = unmarshalAmenities(amenities)
	if err != nil {
		return nil, err
	}
	f.CreatedAt = createdAt.Time
	f.UpdatedAt = updatedAt.Time

	return &f, nil
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		s         domain.Slot
		bookingID uuid.NullUUID
		endTime   sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.FacilityID,
		&s.Floor,
		&s.Number,
		&s.Type,
		&s.Occupied,
		&s.Disabled,
		&bookingID,
		&endTime,
	)
	if err != nil {
		return nil, err
	}

	if bookingID.Valid {
		s.CurrentBookingID = &bookingID.UUID
	}
	if endTime.Valid {
		s.BookingEndTime = &endTime.Time
	}

	return &s, nil
}
