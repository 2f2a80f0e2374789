package grading

import "math"

type gradeBand struct {
	min    float64
	letter string
}

var gradeBands = []gradeBand{
	{93, "A+"},
	{90, "A"},
	{87, "A-"},
	{83, "B+"},
	{80, "B"},
	{77, "B-"},
	{73, "C+"},
	{70, "C"},
	{67, "C-"},
	{60, "D"},
}

// LetterGrade maps a percentage onto the dashboard's letter bands.
func LetterGrade(percent float64) string {
	for _, band := range gradeBands {
		if percent >= band.min {
			return band.letter
		}
	}
	return "F"
}

// RoundForDisplay rounds a percentage to two decimals.
func RoundForDisplay(percent float64) float64 {
	return math.Round(percent*100) / 100
}
