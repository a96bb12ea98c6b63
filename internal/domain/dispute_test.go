package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispute_Close(t *testing.T) {
	d := DisputeReport{Status: DisputePending, PhotoURLs: []string{"a.jpg"}}

	reviewed, err := d.Review()
	require.NoError(t, err)
	assert.Equal(t, DisputeUnderReview, reviewed.Status)

	closed, err := reviewed.Close(testNow, DisputeResolved, "refund issued")
	require.NoError(t, err)
	assert.Equal(t, DisputeResolved, closed.Status)
	assert.Equal(t, "refund issued", *closed.Resolution)
	assert.False(t, closed.IsOpen())

	_, err = closed.Close(testNow, DisputeRejected, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDispute_CloseRejectsUnknownStatus(t *testing.T) {
	d := DisputeReport{Status: DisputePending}

	_, err := d.Close(testNow, DisputePending, "noop")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
