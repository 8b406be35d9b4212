package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Address is a user's shipping address
type Address struct {
	shared.BaseEntity
	UserID        uuid.UUID
	ReceiverName  string
	Phone         string
	PostalAddress string
	PostalCode    string
}

// NewAddress creates an address for userID
func NewAddress(userID uuid.UUID, receiverName, phone, postalAddress, postalCode string) (*Address, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("User ID cannot be empty")
	}
	if strings.TrimSpace(receiverName) == "" || strings.TrimSpace(postalAddress) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Receiver name and postal address are required")
	}
	return &Address{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		ReceiverName:  strings.TrimSpace(receiverName),
		Phone:         strings.TrimSpace(phone),
		PostalAddress: strings.TrimSpace(postalAddress),
		PostalCode:    strings.TrimSpace(postalCode),
	}, nil
}

// BelongsTo reports whether the address is owned by userID
func (a *Address) BelongsTo(userID uuid.UUID) bool {
	return a.UserID == userID
}
