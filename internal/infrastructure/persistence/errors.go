package persistence

import (
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto domain errors. Missing rows become
// notFound; unique violations become onDuplicate when it is set.
func translateError(err error, notFound, onDuplicate *shared.DomainError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound == nil {
			notFound = shared.ErrNotFound
		}
		return notFound
	}
	if onDuplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return onDuplicate.Wrap(err)
	}
	return err
}

func staleVersion(entity string) error {
	return shared.ErrConcurrencyConflict.WithMessage(fmt.Sprintf("%s was modified by another transaction", entity))
}
