// Package accesscode builds and parses booking access tokens: the QR payload and the numeric PIN.
package accesscode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	// DefaultNamespace prefix of the QR payload
	DefaultNamespace = "PARKING"

	// PINLength number of digits in an access PIN
	PINLength = 6

	// MaxPINAttempts draws before UniquePIN gives up
	MaxPINAttempts = 10

	separator = ":"
	pinMin    = 100000
	pinMax    = 999999
)

var (
	// ErrParse возвращается для некорректного кода доступа
	ErrParse = errors.New("accesscode: malformed access code")

	// ErrRender возвращается, если не удалось построить QR изображение
	ErrRender = errors.New("accesscode: failed to render qr code")

	// ErrPINExhausted возвращается, если все попытки дали занятый PIN
	ErrPINExhausted = errors.New("accesscode: no free pin found")
)

// QRPayload decoded QR token
type QRPayload struct {
	BookingID uuid.UUID
	SlotID    uuid.UUID
}

// BuildQRPayload formats "<namespace>:<bookingID>:<slotID>"
func BuildQRPayload(namespace string, bookingID, slotID uuid.UUID) string {
	return strings.Join([]string{namespace, bookingID.String(), slotID.String()}, separator)
}

// ParseQRPayload requires exactly three parts, the expected namespace and two valid ids
func ParseQRPayload(namespace, raw string) (QRPayload, error) {
	parts := strings.Split(strings.TrimSpace(raw), separator)
	if len(parts) != 3 {
		return QRPayload{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrParse, len(parts))
	}
	if parts[0] != namespace {
		return QRPayload{}, fmt.Errorf("%w: unexpected namespace %q", ErrParse, parts[0])
	}

	bookingID, err := uuid.Parse(parts[1])
	if err != nil {
		return QRPayload{}, fmt.Errorf("%w: booking id: %v", ErrParse, err)
	}
	slotID, err := uuid.Parse(parts[2])
	if err != nil {
		return QRPayload{}, fmt.Errorf("%w: slot id: %v", ErrParse, err)
	}

	return QRPayload{BookingID: bookingID, SlotID: slotID}, nil
}

// GeneratePIN random number in [100000, 999999]
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinMax-pinMin+1))
	if err != nil {
		return "", fmt.Errorf("generate pin: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+pinMin), nil
}

// UniquePIN draws PINs from generate until inUse reports one as free.
// A PIN identifies a booking only within its facility, so inUse is expected
// to look among the live bookings of that facility.
func UniquePIN(generate func() (string, error), inUse func(pin string) (bool, error)) (string, error) {
	for i := 0; i < MaxPINAttempts; i++ {
		pin, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := inUse(pin)
		if err != nil {
			return "", fmt.Errorf("check pin: %w", err)
		}
		if !taken {
			return pin, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrPINExhausted, MaxPINAttempts)
}

// ValidatePIN checks the PIN shape
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return fmt.Errorf("%w: pin must have %d digits", ErrParse, PINLength)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: pin must be numeric", ErrParse)
		}
	}
	return nil
}

// RenderQR encodes the payload as a PNG image of size x size pixels
func RenderQR(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return png, nil
}
