package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "ok", input: `"2024-01-15"`, want: NewDate(2024, 1, 15)},
		{name: "null", input: `null`, want: Date{}},
		{name: "trailing garbage", input: `"2024-01-15garbage"`, wantErr: true},
		{name: "timestamp", input: `"2024-01-15T10:00:00Z"`, wantErr: true},
		{name: "bad month", input: `"2024-13-01"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-01-15 00:00:00+00:00"))
	assert.Equal(t, NewDate(2024, 1, 15), d)

	require.NoError(t, d.Scan([]byte("2024-02-01")))
	assert.Equal(t, NewDate(2024, 2, 1), d)

	require.NoError(t, d.Scan(time.Date(2024, 3, 5, 17, 30, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, 3, 5), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	require.Error(t, d.Scan(42))
}
