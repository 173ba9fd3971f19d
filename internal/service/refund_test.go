package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefundAmount(t *testing.T) {
	start := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	const price = 1000.0

	cases := []struct {
		name   string
		notice time.Duration
		want   float64
	}{
		{"25h before", 25 * time.Hour, 1000},
		{"exactly 24h", 24 * time.Hour, 1000},
		{"13h before", 13 * time.Hour, 500},
		{"exactly 12h", 12 * time.Hour, 500},
		{"1h before", time.Hour, 0},
		{"just under 12h", 12*time.Hour - time.Second, 0},
		{"after start", -2 * time.Hour, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := start.Add(-tc.notice)
			assert.Equal(t, tc.want, RefundAmount(price, start, now))
		})
	}
}
