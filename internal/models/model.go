package models

import (
	"fmt"
	"time"
)

// Model is a catalog item (a product/device model). Code is unique.
type Model struct {
	ID          int64
	Name        string
	Code        string
	Brand       string
	Category    string
	YearFrom    int
	YearTo      int
	Description string
	ImageURL    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// YearRange renders the production years the way the catalog UI shows them:
// "2019", "2019-2022" or "2019+".
func (m *Model) YearRange() string {
	switch {
	case m.YearFrom != 0 && m.YearTo != 0 && m.YearFrom == m.YearTo:
		return fmt.Sprintf("%d", m.YearFrom)
	case m.YearFrom != 0 && m.YearTo != 0:
		return fmt.Sprintf("%d-%d", m.YearFrom, m.YearTo)
	case m.YearFrom != 0:
		return fmt.Sprintf("%d+", m.YearFrom)
	}
	return ""
}
