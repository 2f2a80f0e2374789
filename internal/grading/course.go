package grading

// Course owns an ordered list of evaluation groups for one user.
type Course struct {
	ID       string
	Name     string
	OwnerKey string
	Groups   []*EvaluationGroup
}

// NewCourse creates a course without any groups.
func NewCourse(id, name, ownerKey string) *Course {
	return &Course{
		ID:       id,
		Name:     name,
		OwnerKey: ownerKey,
		Groups:   make([]*EvaluationGroup, 0),
	}
}

// AddEvaluationGroup appends a group that counts the best itemsToCount of totalItems.
func (c *Course) AddEvaluationGroup(name string, weightPercent float64, totalItems, itemsToCount int) *EvaluationGroup {
	group := NewEvaluationGroup(name, weightPercent, totalItems, itemsToCount)
	c.Groups = append(c.Groups, group)
	return group
}

// AddEvaluationGroupAllCounted appends a group in which every item counts.
func (c *Course) AddEvaluationGroupAllCounted(name string, weightPercent float64, totalItems int) *EvaluationGroup {
	return c.AddEvaluationGroup(name, weightPercent, totalItems, totalItems)
}

// RemoveEvaluationGroup drops the group at index, keeping the order of the rest.
func (c *Course) RemoveEvaluationGroup(index int) bool {
	if index < 0 || index >= len(c.Groups) {
		return false
	}
	c.Groups = append(c.Groups[:index], c.Groups[index+1:]...)
	return true
}

// Group returns the group at index, or nil when out of range.
func (c *Course) Group(index int) *EvaluationGroup {
	if index < 0 || index >= len(c.Groups) {
		return nil
	}
	return c.Groups[index]
}

// UpdateScore sets one item's score by direct index. Unknown indices are ignored.
func (c *Course) UpdateScore(groupIndex, itemIndex int, score, maxPoints float64) {
	if group := c.Group(groupIndex); group != nil {
		group.UpdateScore(itemIndex, score, maxPoints)
	}
}

// ClearScore resets one item to ungraded. Unknown indices are ignored.
func (c *Course) ClearScore(groupIndex, itemIndex int) {
	if group := c.Group(groupIndex); group != nil {
		group.ClearScore(itemIndex)
	}
}

// TotalWeight sums the weights of all groups.
func (c *Course) TotalWeight() float64 {
	var total float64
	for _, group := range c.Groups {
		total += group.WeightPercent
	}
	return total
}

// CurrentGrade returns the course grade as an unrounded percentage.
func (c *Course) CurrentGrade() float64 {
	var total float64
	for _, group := range c.Groups {
		total += group.Contribution()
	}
	return total * 100
}
