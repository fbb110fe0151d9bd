package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		name       string
		scanCount  int
		confidence float64
		want       int
	}{
		{"zero everything clamps to floor", 0, 0, 1},
		{"scan count past cap stops at 20", 25, 100, 25},
		{"cap plus max confidence bonus", 20, 100, 25},
		{"huge scan count, no confidence", 100, 0, 20},
		{"single scan with mid confidence", 1, 50, 3},
		{"bonus truncates, never rounds up", 1, 59, 3},
		{"negative confidence cannot sink below 1", 0, -40, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.scanCount, tt.confidence))
		})
	}
}

func TestLevelBounds(t *testing.T) {
	// The formula tops out at 25; the 50 cap is unreachable through play.
	for scans := 0; scans <= 200; scans += 10 {
		for conf := 0.0; conf <= 100; conf += 25 {
			level := Level(scans, conf)
			assert.GreaterOrEqual(t, level, 1)
			assert.LessOrEqual(t, level, 25)
		}
	}
}
