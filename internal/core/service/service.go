package service

import (
	"errors"

	"github.com/funkystitch/storefront/internal/port"
)

func isNotFound(err error) bool {
	return errors.Is(err, port.ErrNotFound)
}
