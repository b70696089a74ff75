package utils

// BlessingLevel is one tier of the fixed points ladder. MaxPoints of -1 marks
// the unbounded top tier.
type BlessingLevel struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	MaxPoints int    `json:"max_points"`
}

var blessingLevels = []BlessingLevel{
	{Level: 1, Name: "初心者", MinPoints: 0, MaxPoints: 99},
	{Level: 2, Name: "虔誠信徒", MinPoints: 100, MaxPoints: 499},
	{Level: 3, Name: "福報滿滿", MinPoints: 500, MaxPoints: 1499},
	{Level: 4, Name: "功德圓滿", MinPoints: 1500, MaxPoints: 4999},
	{Level: 5, Name: "大德高僧", MinPoints: 5000, MaxPoints: 9999},
	{Level: 6, Name: "神通廣大", MinPoints: 10000, MaxPoints: -1},
}

// GetBlessingLevel returns the first tier whose range contains the point total.
func GetBlessingLevel(points int) BlessingLevel {
	for _, level := range blessingLevels {
		if level.MaxPoints == -1 || points <= level.MaxPoints {
			return level
		}
	}
	return blessingLevels[len(blessingLevels)-1]
}

// CalculatePoints applies the temple bonus multiplier to the base points plus
// an optional special bonus (hook for future promotions).
func CalculatePoints(basePoints, bonusMultiplier, specialBonus int) int {
	return basePoints*bonusMultiplier + specialBonus
}
