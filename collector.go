package fanout

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Collector records which messages of a batch failed. Wrapped work never
// reports an error to its caller, so waiting on all messages succeeds even
// when some of them failed.
//
// Collector is safe for concurrent use. The zero value is ready to use.
type Collector struct {
	mu       sync.Mutex
	failures []string
	errs     *multierror.Error
}

// Collect wraps run so that an error or panic is recorded under id and the
// wrapped func returns nil.
func (c *Collector) Collect(id string, run func() error) func() error {
	return func() error {
		if err := safely(run); err != nil {
			c.add(id, err)
		}
		return nil
	}
}

func (c *Collector) add(id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, id)
	c.errs = multierror.Append(c.errs, errors.Wrapf(err, "message %s", id))
}

// Failures returns the identifiers of failed messages in no particular
// order. Call it only after all collected work has returned.
func (c *Collector) Failures() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.failures))
	copy(out, c.failures)
	return out
}

// Len returns the number of recorded failures.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures)
}

// Err returns every recorded cause, or nil when nothing failed.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.ErrorOrNil()
}

// safely runs fn and turns a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
