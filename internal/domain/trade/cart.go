package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// CartLine is one item and quantity in a cart. At most one line per item.
type CartLine struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ItemID    uuid.UUID
	SKU       string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cart is a user's basket of inventory items
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Lines  []CartLine
}

// NewCart creates an empty cart owned by userID
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Lines:             make([]CartLine, 0),
	}, nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// TotalQuantity sums the quantity of every line
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// FindLineBySKU returns the line holding sku
func (c *Cart) FindLineBySKU(sku string) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].SKU == sku {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

func (c *Cart) lineIndexesForItem(itemID uuid.UUID) []int {
	var idx []int
	for i := range c.Lines {
		if c.Lines[i].ItemID == itemID {
			idx = append(idx, i)
		}
	}
	return idx
}

// AddLine merges quantity into the existing line for the item or creates a
// new one. Returns the resulting line.
func (c *Cart) AddLine(itemID uuid.UUID, sku string, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}
	if itemID == uuid.Nil || sku == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Item is required")
	}

	now := time.Now()
	switch idx := c.lineIndexesForItem(itemID); len(idx) {
	case 0:
		c.Lines = append(c.Lines, CartLine{
			ID:        uuid.New(),
			CartID:    c.ID,
			ItemID:    itemID,
			SKU:       sku,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
		c.Touch()
		return &c.Lines[len(c.Lines)-1], nil
	case 1:
		line := &c.Lines[idx[0]]
		line.Quantity += quantity
		line.UpdatedAt = now
		c.Touch()
		return line, nil
	default:
		return nil, shared.ErrDuplicateLine.WithMessage(
			fmt.Sprintf("cart %s holds %d lines for %s", c.ID, len(idx), sku))
	}
}

// RemoveLine deletes the line holding sku and returns it
func (c *Cart) RemoveLine(sku string) (*CartLine, error) {
	for i := range c.Lines {
		if c.Lines[i].SKU == sku {
			removed := c.Lines[i]
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.Touch()
			return &removed, nil
		}
	}
	return nil, shared.ErrLineNotFound.WithMessage(fmt.Sprintf("no line for %s in cart", sku))
}

// AdjustLineQuantity applies increment (+1 or -1) to the line. A decrement
// at quantity 1 removes the line, in which case the returned line is nil and
// removed is true.
func (c *Cart) AdjustLineQuantity(lineID uuid.UUID, increment int) (line *CartLine, removed bool, err error) {
	if increment != 1 && increment != -1 {
		return nil, false, shared.ErrInvalidQuantity.WithMessage("Increment must be +1 or -1")
	}
	for i := range c.Lines {
		if c.Lines[i].ID != lineID {
			continue
		}
		if c.Lines[i].CartID != c.ID {
			break
		}
		if increment < 0 && c.Lines[i].Quantity <= 1 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.Touch()
			return nil, true, nil
		}
		c.Lines[i].Quantity += increment
		c.Lines[i].UpdatedAt = time.Now()
		c.Touch()
		return &c.Lines[i], false, nil
	}
	return nil, false, shared.ErrLineNotFound
}

// SetLineQuantity overwrites the quantity of the line holding sku
func (c *Cart) SetLineQuantity(sku string, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, shared.ErrInvalidQuantity
	}
	line, ok := c.FindLineBySKU(sku)
	if !ok {
		return nil, shared.ErrLineNotFound.WithMessage(fmt.Sprintf("no line for %s in cart", sku))
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	c.Touch()
	return line, nil
}

// Clear removes every line
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
	c.Touch()
}
