package list_facilities

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ParkingService/internal/service/facilities/models"
)

// ToServiceRequest формирует фильтр поиска из query параметров
func ToServiceRequest(query url.Values) (*models.SearchRequest, error) {
	req := &models.SearchRequest{}

	if kind := query.Get("kind"); kind != "" {
		req.Kind = &kind
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"lat", &req.Lat},
		{"lon", &req.Lon},
		{"radius", &req.RadiusMeters},
		{"maxPrice", &req.MaxPrice},
	}
	for _, f := range floats {
		raw := query.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value: %w", f.name, err)
		}
		*f.dst = &v
	}

	if raw := query.Get("availableOnly"); raw != "" {
		availableOnly, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid availableOnly value: %w", err)
		}
		req.AvailableOnly = availableOnly
	}

	// amenities=covered,evCharging
	if raw := query.Get("amenities"); raw != "" {
		for _, a := range strings.Split(raw, ",") {
			if a = strings.TrimSpace(a); a != "" {
				req.Amenities = append(req.Amenities, a)
			}
		}
	}

	return req, nil
}
