package extend_booking

import "net/http"

// IdempotencyKeyHeader заголовок с ключом повтора, если он не передан в теле
const IdempotencyKeyHeader = "Idempotency-Key"

// ExtendBookingRequest HTTP request model
type ExtendBookingRequest struct {
	Hours          int    `json:"hours"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// Key ключ из тела, иначе из заголовка
func (r *ExtendBookingRequest) Key(req *http.Request) string {
	if r.IdempotencyKey != "" {
		return r.IdempotencyKey
	}
	return req.Header.Get(IdempotencyKeyHeader)
}
