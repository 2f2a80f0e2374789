package grading

import (
	"fmt"
	"sort"
)

// Gradable is anything that contributes a weighted share to a course grade.
type Gradable interface {
	GroupName() string
	Weight() float64
	Contribution() float64
}

// EvaluationGroup is a weighted category of items scored with a best-of-N rule.
type EvaluationGroup struct {
	Name          string
	WeightPercent float64
	TotalItems    int
	ItemsToCount  int
	Items         []ScoreItem
}

var _ Gradable = (*EvaluationGroup)(nil)

// NewEvaluationGroup allocates totalItems ungraded items labelled "<name> 1",
// "<name> 2", and so on. Arguments are not validated here.
func NewEvaluationGroup(name string, weightPercent float64, totalItems, itemsToCount int) *EvaluationGroup {
	if totalItems < 0 {
		totalItems = 0
	}
	items := make([]ScoreItem, 0, totalItems)
	for i := 1; i <= totalItems; i++ {
		items = append(items, NewScoreItem(fmt.Sprintf("%s %d", name, i)))
	}

	return &EvaluationGroup{
		Name:          name,
		WeightPercent: weightPercent,
		TotalItems:    totalItems,
		ItemsToCount:  itemsToCount,
		Items:         items,
	}
}

// GroupName returns the group's display name.
func (g *EvaluationGroup) GroupName() string {
	return g.Name
}

// Weight returns the share of the course grade, in percent.
func (g *EvaluationGroup) Weight() float64 {
	return g.WeightPercent
}

// UpdateScore sets the score of the item at index. Out-of-range indices are ignored.
func (g *EvaluationGroup) UpdateScore(index int, score, maxPoints float64) {
	if index < 0 || index >= len(g.Items) {
		return
	}
	g.Items[index].SetScore(score, maxPoints)
}

// ClearScore resets the item at index to ungraded. Out-of-range indices are ignored.
func (g *EvaluationGroup) ClearScore(index int) {
	if index < 0 || index >= len(g.Items) {
		return
	}
	g.Items[index].Clear()
}

// GradedCount returns how many items hold a real score.
func (g *EvaluationGroup) GradedCount() int {
	count := 0
	for _, item := range g.Items {
		if item.IsGraded() {
			count++
		}
	}
	return count
}

// Contribution returns the group's share of the course grade as a fraction in
// [0, WeightPercent/100]. The best ItemsToCount normalized scores are averaged,
// always dividing by ItemsToCount.
func (g *EvaluationGroup) Contribution() float64 {
	if g.ItemsToCount == 0 || len(g.Items) == 0 {
		return 0.0
	}

	normalized := make([]float64, 0, len(g.Items))
	for _, item := range g.Items {
		normalized = append(normalized, item.NormalizedScore())
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(normalized)))

	take := g.ItemsToCount
	if take > len(normalized) {
		take = len(normalized)
	}

	var sum float64
	for _, value := range normalized[:take] {
		sum += value
	}

	average := sum / float64(g.ItemsToCount)
	return average * (g.WeightPercent / 100.0)
}
