package get_host_bookings

import (
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(
	hostID int64,
	userID int64,
	facilityIDStr string,
	statusStr string,
	includeInactiveStr string,
) (*models.GetHostBookingsRequest, error) {
	req := &models.GetHostBookingsRequest{
		UserID:          userID,
		HostID:          hostID,
		IncludeInactive: false, // По умолчанию только живые бронирования
	}

	if facilityIDStr != "" {
		req.FacilityID = &facilityIDStr
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
