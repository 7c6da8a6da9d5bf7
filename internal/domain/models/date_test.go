package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("plain date", func(t *testing.T) {
		d, err := ParseDate("2024-02-05")
		require.NoError(t, err)
		assert.Equal(t, NewDate(2024, time.February, 5), d)
	})

	t.Run("iso timestamp is truncated", func(t *testing.T) {
		d, err := ParseDate("2024-02-05T13:45:00.000Z")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-05", d.String())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseDate("  ")
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseDate("05/02/2024")
		require.Error(t, err)
	})
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		When Date `json:"when"`
	}

	out, err := json.Marshal(wrapper{When: NewDate(2023, time.December, 31)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"when":"2023-12-31"}`, string(out))

	var in wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"when":"2024-01-05"}`), &in))
	assert.Equal(t, NewDate(2024, time.January, 5), in.When)

	require.NoError(t, json.Unmarshal([]byte(`{"when":""}`), &in))
	assert.True(t, in.When.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"when":42}`), &in))
}

func TestDateSameMonth(t *testing.T) {
	asOf := time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC)

	assert.True(t, MustParseDate("2024-02-05").SameMonth(asOf))
	assert.False(t, MustParseDate("2024-01-05").SameMonth(asOf))
	assert.False(t, MustParseDate("2023-02-05").SameMonth(asOf))
	assert.False(t, Date{}.SameMonth(asOf))
}

func TestCropDisplayName(t *testing.T) {
	assert.Equal(t, "Maize", CropRecord{Name: "Maize"}.DisplayName())
	assert.Equal(t, "Maize (Obatanpa)", CropRecord{Name: "Maize", Variety: "Obatanpa"}.DisplayName())
}
