package labels

import (
	"sort"
	"strings"
)

// Confirmation is the end-of-session label review. Inferred never changes;
// Selected starts as a copy of it and is edited by the user.
type Confirmation struct {
	inferred []string
	selected map[string]bool
}

func NewConfirmation(inferred []string) *Confirmation {
	c := &Confirmation{
		inferred: make([]string, 0, len(inferred)),
		selected: make(map[string]bool, len(inferred)),
	}
	for _, label := range inferred {
		label = strings.TrimSpace(label)
		if label == "" || c.selected[label] {
			continue
		}
		c.inferred = append(c.inferred, label)
		c.selected[label] = true
	}
	sort.Strings(c.inferred)
	return c
}

func (c *Confirmation) Inferred() []string {
	inferred := make([]string, len(c.inferred))
	copy(inferred, c.inferred)
	return inferred
}

func (c *Confirmation) Selected() []string {
	selected := make([]string, 0, len(c.selected))
	for label := range c.selected {
		selected = append(selected, label)
	}
	sort.Strings(selected)
	return selected
}

func (c *Confirmation) IsSelected(label string) bool {
	return c.selected[strings.TrimSpace(label)]
}

// Toggle flips the label and reports whether it is selected afterwards.
func (c *Confirmation) Toggle(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if c.selected[label] {
		delete(c.selected, label)
		return false
	}
	c.selected[label] = true
	return true
}

func (c *Confirmation) Add(label string) {
	if label = strings.TrimSpace(label); label != "" {
		c.selected[label] = true
	}
}

func (c *Confirmation) Remove(label string) {
	delete(c.selected, strings.TrimSpace(label))
}

func (c *Confirmation) CanConfirm() bool {
	return len(c.selected) > 0
}
