package option

import (
	"context"
)

// Query returns the record of the option. It has no side effects and
// requires no authorization.
func (c *Contract) Query(ctx context.Context, s Store) (Record, error) {
	return load(ctx, s)
}
