package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDirection(t *testing.T) {
	cases := []struct {
		in   string
		want Direction
	}{
		{"LONG", DirectionLong},
		{"bullish", DirectionLong},
		{"做多", DirectionLong},
		{"开多", DirectionLong},
		{"  Buy  ", DirectionLong},
		{"go long", DirectionLong},
		{"open-short", DirectionShort},
		{"做空", DirectionShort},
		{"SELL_SHORT", DirectionShort},
		{"观望", DirectionHold},
		{"wait", DirectionHold},
		{"平仓", DirectionClose},
		{"close_position", DirectionClose},
		{"add_to_long", DirectionAddLong},
		{"加空", DirectionAddShort},
		{"garbage-xyz", DirectionHold},
		{"", DirectionHold},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDirection(tc.in), "input=%q", tc.in)
	}
}

func TestDirectionGroups(t *testing.T) {
	assert.True(t, DirectionLong.Bullish())
	assert.True(t, DirectionAddLong.Bullish())
	assert.True(t, DirectionShort.Bearish())
	assert.True(t, DirectionAddShort.Bearish())
	assert.False(t, DirectionHold.Bullish())
	assert.False(t, DirectionHold.Bearish())
	assert.False(t, DirectionClose.Bullish())
}
