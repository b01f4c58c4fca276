package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "iso", value: "2026-03-15", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "european dotted", value: "15.03.2026", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "european slashed", value: "15/03/2026", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "padded", value: "  2026-03-15 ", want: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", value: "March 15th", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-15", FormatDate(date, ""))
	assert.Equal(t, "15.03.2026", FormatDate(date, DateLayoutEuropean))
}
