package grading

// UngradedScore marks an item that has not received a score yet.
const UngradedScore = -1.0

// ScoreItem is one gradable slot within an evaluation group.
type ScoreItem struct {
	label     string
	score     float64
	maxPoints float64
}

// NewScoreItem returns an ungraded item with the given label.
func NewScoreItem(label string) ScoreItem {
	return ScoreItem{label: label, score: UngradedScore, maxPoints: 1}
}

// Label returns the display name assigned at creation.
func (s ScoreItem) Label() string {
	return s.label
}

// Score returns the earned points, or UngradedScore.
func (s ScoreItem) Score() float64 {
	return s.score
}

// MaxPoints returns the denominator used for normalization.
func (s ScoreItem) MaxPoints() float64 {
	return s.maxPoints
}

// SetScore records a score. A negative score or a non-positive max resets the
// item to ungraded instead of failing.
func (s *ScoreItem) SetScore(score, maxPoints float64) {
	if score < 0 || maxPoints <= 0 {
		s.Clear()
		return
	}
	s.score = score
	s.maxPoints = maxPoints
}

// Clear resets the item to ungraded.
func (s *ScoreItem) Clear() {
	s.score = UngradedScore
	s.maxPoints = 1
}

// IsGraded reports whether a real score has been entered.
func (s ScoreItem) IsGraded() bool {
	return s.score >= 0 && s.maxPoints > 0
}

// NormalizedScore returns score/maxPoints for graded items. Ungraded items
// count as full credit (1.0) until a score is entered.
func (s ScoreItem) NormalizedScore() float64 {
	if !s.IsGraded() {
		return 1.0
	}
	return s.score / s.maxPoints
}
