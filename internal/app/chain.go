package app

import (
	"fmt"

	"github.com/jwolf02/Monitor/internal/domain"
	"github.com/jwolf02/Monitor/internal/ports"
)

// Chain offers lines to an ordered list of filters. The list is fixed at
// construction; the first filter to claim a line ends the dispatch and no
// later filter sees it.
type Chain struct {
	filters []ports.LineFilter
}

// NewChain creates a chain over filters in the given order.
func NewChain(filters []ports.LineFilter) *Chain {
	return &Chain{filters: filters}
}

// Dispatch offers line to each filter in order and reports whether any
// filter claimed it. A filter error aborts the dispatch; filters are
// trusted code and their errors are fatal to the session.
func (c *Chain) Dispatch(line string, extra domain.ExtraArgs) (bool, error) {
	for _, f := range c.filters {
		claimed, err := f.TryClaim(line, extra)
		if err != nil {
			return false, fmt.Errorf("filter %q: %w", f.Name(), err)
		}
		if claimed {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int {
	return len(c.filters)
}
