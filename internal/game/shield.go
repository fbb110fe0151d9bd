package game

import "math"

// shieldSectorCeiling is the number of distinct sectors that earns the
// maximum diversification score.
const shieldSectorCeiling = 5.0

// DiversificationShield scores a user's holdings 0-100 by sector spread:
// distinct sectors divided by five, scaled to 100, capped, rounded to one
// decimal. Zero or one holding always scores 0.
func DiversificationShield(creatures []Creature) float64 {
	if len(creatures) <= 1 {
		return 0
	}
	sectors := make(map[string]struct{}, len(creatures))
	for _, c := range creatures {
		sectors[c.Sector] = struct{}{}
	}
	score := float64(len(sectors)) / shieldSectorCeiling * 100
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}
