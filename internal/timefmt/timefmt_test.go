package timefmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHMS(t *testing.T) {
	cases := []struct {
		secs float64
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{65.9, "01:05"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{-5, "00:00"},
		{math.NaN(), "00:00"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatHMS(c.secs), "FormatHMS(%v)", c.secs)
	}
}

func TestFormatRange(t *testing.T) {
	assert.Equal(t, "00:05 - 01:05", FormatRange(5, 65))
	assert.Equal(t, "00:00 - 01:00:01", FormatRange(-1, 3601))
}
