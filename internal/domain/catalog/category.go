package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// MaxCategoryDepth bounds ancestry walks so a corrupted parent chain cannot loop forever
const MaxCategoryDepth = 16

// Category is a node in the product category tree
type Category struct {
	shared.BaseAggregateRoot
	Title    string
	ParentID *uuid.UUID
	IsActive bool
}

// NewCategory creates an active root category
func NewCategory(title string) (*Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Category title cannot be empty")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		IsActive:          true,
	}, nil
}

// NewChildCategory creates an active category under parent
func NewChildCategory(title string, parent *Category) (*Category, error) {
	if parent == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Parent category is required")
	}
	c, err := NewCategory(title)
	if err != nil {
		return nil, err
	}
	parentID := parent.ID
	c.ParentID = &parentID
	return c, nil
}

// IsRoot reports whether the category has no parent
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Activate marks the category active
func (c *Category) Activate() {
	if c.IsActive {
		return
	}
	c.IsActive = true
	c.IncrementVersion()
}

// Deactivate marks the category inactive. Items under it stop being available.
func (c *Category) Deactivate() {
	if !c.IsActive {
		return
	}
	c.IsActive = false
	c.IncrementVersion()
}

// Ancestry is a category chain ordered from the leaf up to the root
type Ancestry []Category

// FirstInactive returns the first inactive category walking from the leaf
// towards the root, or nil when the whole family is active.
func (a Ancestry) FirstInactive() *Category {
	for i := range a {
		if !a[i].IsActive {
			return &a[i]
		}
	}
	return nil
}
