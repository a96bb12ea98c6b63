package psqlbuilder

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Select("id", "status").
		From("bookings").
		Where(squirrel.Eq{"id": "abc"}).
		Where(squirrel.Eq{"status": []string{"pending", "active"}}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, status FROM bookings WHERE id = $1 AND status IN ($2,$3)", query)
	assert.Equal(t, []interface{}{"abc", "pending", "active"}, args)
}

func TestUpdate_UsesDollarPlaceholders(t *testing.T) {
	query, args, err := Update("parking_slots").
		Set("is_occupied", true).
		Where(squirrel.Eq{"id": 7}).
		ToSql()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE parking_slots SET is_occupied = $1 WHERE id = $2", query)
	assert.Len(t, args, 2)
}
