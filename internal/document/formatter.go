package document

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownFormat = errors.New("unknown document format")

type Formatter interface {
	Name() string
	ContentType() string
	Extension() string
	Format(doc *Document) ([]byte, error)
}

type Registry struct {
	formatters map[string]Formatter
}

func NewRegistry(formatters ...Formatter) *Registry {
	r := &Registry{formatters: make(map[string]Formatter, len(formatters))}
	for _, f := range formatters {
		r.formatters[f.Name()] = f
	}
	return r
}

func (r *Registry) Get(name string) (Formatter, error) {
	f, ok := r.formatters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
