package domain

// InventoryKind тип площадки: коммерческая парковка или частное место
type InventoryKind string

const (
	KindCommercial InventoryKind = "commercial"
	KindPrivate    InventoryKind = "private"
)

// IsValid reports whether the kind is known
func (k InventoryKind) IsValid() bool {
	return k == KindCommercial || k == KindPrivate
}

// DurationType тарификация бронирования
type DurationType string

const (
	DurationHourly  DurationType = "hourly"
	DurationDaily   DurationType = "daily"
	DurationMonthly DurationType = "monthly"
)

// IsValid reports whether the duration type is known
func (d DurationType) IsValid() bool {
	return d == DurationHourly || d == DurationDaily || d == DurationMonthly
}

// Business validation constants
const (
	MaxNameLength            = 200
	MaxAddressLength         = 500
	MaxRejectionReasonLength = 500
	MaxDisputeTextLength     = 2000
	MaxDisputePhotos         = 10
	MaxSlotsPerRequest       = 500
	MaxExtensionHours        = 72
	MaxFloor                 = 200
	MinFloor                 = -20
)

// LiveStatuses статусы, при которых бронирование удерживает место
var LiveStatuses = []BookingStatus{
	StatusPending,
	StatusApproved,
	StatusActive,
}

// TerminalStatuses статусы, из которых нет переходов
var TerminalStatuses = []BookingStatus{
	StatusCompleted,
	StatusRejected,
	StatusCancelled,
	StatusExpired,
}

// AllStatuses все статусы бронирования
var AllStatuses = []BookingStatus{
	StatusPendingApproval,
	StatusPending,
	StatusApproved,
	StatusActive,
	StatusCompleted,
	StatusRejected,
	StatusCancelled,
	StatusExpired,
}
