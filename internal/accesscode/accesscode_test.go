package accesscode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRPayload_RoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		bookingID, slotID := uuid.New(), uuid.New()

		payload, err := ParseQRPayload(DefaultNamespace, BuildQRPayload(DefaultNamespace, bookingID, slotID))
		require.NoError(t, err)
		assert.Equal(t, bookingID, payload.BookingID)
		assert.Equal(t, slotID, payload.SlotID)
	}
}

func TestParseQRPayload_Malformed(t *testing.T) {
	b, s := uuid.New().String(), uuid.New().String()

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"wrong namespace", "OTHER:" + b + ":" + s},
		{"two segments", DefaultNamespace + ":" + b},
		{"four segments", DefaultNamespace + ":" + b + ":" + s + ":extra"},
		{"bad booking id", DefaultNamespace + ":not-a-uuid:" + s},
		{"bad slot id", DefaultNamespace + ":" + b + ":42"},
		{"lowercase namespace", "parking:" + b + ":" + s},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQRPayload(DefaultNamespace, tt.raw)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 200; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		require.NoError(t, ValidatePIN(pin))
		assert.GreaterOrEqual(t, pin, "100000")
		assert.LessOrEqual(t, pin, "999999")
	}
}

func sequence(pins ...string) func() (string, error) {
	return func() (string, error) {
		pin := pins[0]
		pins = pins[1:]
		return pin, nil
	}
}

func TestUniquePIN_SkipsTaken(t *testing.T) {
	taken := map[string]bool{"111111": true, "222222": true}

	pin, err := UniquePIN(sequence("111111", "222222", "333333"), func(p string) (bool, error) {
		return taken[p], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "333333", pin)
}

func TestUniquePIN_Errors(t *testing.T) {
	t.Run("all taken", func(t *testing.T) {
		_, err := UniquePIN(GeneratePIN, func(string) (bool, error) { return true, nil })
		assert.ErrorIs(t, err, ErrPINExhausted)
	})

	t.Run("lookup fails", func(t *testing.T) {
		boom := errors.New("db down")
		_, err := UniquePIN(GeneratePIN, func(string) (bool, error) { return false, boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestValidatePIN(t *testing.T) {
	assert.NoError(t, ValidatePIN("012345"))
	assert.ErrorIs(t, ValidatePIN("12345"), ErrParse)
	assert.ErrorIs(t, ValidatePIN("12a456"), ErrParse)
}

func TestRenderQR(t *testing.T) {
	png, err := RenderQR(BuildQRPayload(DefaultNamespace, uuid.New(), uuid.New()), 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
