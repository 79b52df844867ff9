package fanout

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoFunctions is returned when no function was registered.
	ErrNoFunctions = errors.New("no functions registered")

	// ErrTooManyFunctions is returned when several functions are registered
	// and none is exported by name.
	ErrTooManyFunctions = errors.New("too many functions, set an export name")

	// ErrExportNotFound is returned when the export name matches no function.
	ErrExportNotFound = errors.New("export does not match a function")

	// ErrDuplicateFunction is returned when a name is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
)

// Registry holds the functions a deployment ships with. Exactly one of them
// serves a process, chosen at startup.
type Registry struct {
	byName map[string]*Function
	order  []*Function
}

// NewRegistry creates a Registry with the given functions.
func NewRegistry(fns ...*Function) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Function)}
	for _, fn := range fns {
		if err := r.Add(fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a function under its name.
func (r *Registry) Add(fn *Function) error {
	if fn == nil {
		return errors.New("nil function")
	}
	if _, ok := r.byName[fn.Name()]; ok {
		return errors.Wrap(ErrDuplicateFunction, fn.Name())
	}
	r.byName[fn.Name()] = fn
	r.order = append(r.order, fn)
	return nil
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.order)
}

// Choose returns the function to serve. A non-empty export selects by name;
// otherwise the registry must hold exactly one function.
func (r *Registry) Choose(export string) (*Function, error) {
	switch {
	case export != "":
		fn, ok := r.byName[export]
		if !ok {
			return nil, errors.Wrap(ErrExportNotFound, export)
		}
		return fn, nil
	case len(r.order) == 0:
		return nil, ErrNoFunctions
	case len(r.order) > 1:
		return nil, ErrTooManyFunctions
	default:
		return r.order[0], nil
	}
}
