package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/soiree/internal/auth"
	"github.com/charlesng35/soiree/internal/models"
)

const defaultCodeRetries = 5

var errCodeSpaceExhausted = errors.New("services: could not allocate a unique access code")

// codeIssuer persists guests under freshly drawn access codes, drawing again
// when the store reports a collision on the unique code index.
type codeIssuer struct {
	generate func() (string, error)
	retries  int
}

func newCodeIssuer() codeIssuer {
	return codeIssuer{generate: auth.GenerateCode, retries: defaultCodeRetries}
}

// create inserts guest with a new code. Each attempt runs in its own
// (nested) transaction so a failed insert does not poison an outer one.
func (c codeIssuer) create(ctx context.Context, db *gorm.DB, guest *models.Guest) error {
	attempts := c.retries
	if attempts <= 0 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		code, err := c.generate()
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		guest.Code = code
		guest.ID = ""

		err = db.WithContext(ensureContext(ctx)).Transaction(func(tx *gorm.DB) error {
			return tx.Create(guest).Error
		})
		if err == nil {
			return nil
		}
		if !isDuplicateKey(err) {
			return err
		}
	}
	return errCodeSpaceExhausted
}
