package gamification

// levelThresholds[i] is the XP needed to reach level i+1.
var levelThresholds = [...]int{
	0, 50, 120, 220, 350,
	520, 730, 980, 1280, 1630,
	2030, 2480, 2980, 3530, 4130,
	4780, 5480, 6230, 7030, 7880,
}

const MaxLevel = len(levelThresholds)

// CalculateLevel returns the highest level whose threshold is <= xp.
func CalculateLevel(xp int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if xp >= threshold {
			level = i + 1
		}
	}
	return level
}

// XPForNextLevel returns the XP still missing to reach the next level, or 0
// at the top level.
func XPForNextLevel(xp int) int {
	level := CalculateLevel(xp)
	if level >= MaxLevel {
		return 0
	}
	return levelThresholds[level] - xp
}
