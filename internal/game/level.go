package game

const (
	minLevel      = 1
	maxLevel      = 50
	scanLevelCap  = 20
	bonusDivisor  = 20.0
)

// Level computes a creature level from its scan count and confidence:
// floor(min(scanCount, 20) + confidence/20), clamped to [1, 50]. The formula
// tops out at 25 through normal play; the 50 cap is headroom, not a target.
func Level(scanCount int, confidence float64) int {
	base := scanCount
	if base > scanLevelCap {
		base = scanLevelCap
	}
	level := int(float64(base) + confidence/bonusDivisor)
	if level < minLevel {
		return minLevel
	}
	if level > maxLevel {
		return maxLevel
	}
	return level
}
