// Package jobargs resolves the named parameters a conversion job is invoked with.
package jobargs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Names of the parameters every job run needs.
const (
	JobName   = "JOB_NAME"
	InputLoc  = "INPUT_LOC"
	OutputLoc = "OUTPUT_LOC"
)

// Required lists the parameters Resolve is normally called with.
var Required = []string{JobName, InputLoc, OutputLoc}

// ErrMissing is returned when one or more required parameters are absent.
var ErrMissing = errors.New("missing required job arguments")

// Lookup returns the value for a parameter name, or "" if it is not set.
type Lookup func(name string) string

// Args is the resolved, read-only set of job parameters.
type Args map[string]string

// Resolve reads every name through lookup. All names must resolve to a
// non-blank value; otherwise the error names each missing one.
func Resolve(lookup Lookup, names ...string) (Args, error) {
	args := make(Args, len(names))
	var missing []string
	for _, name := range names {
		v := strings.TrimSpace(lookup(name))
		if v == "" {
			missing = append(missing, name)
			continue
		}
		args[name] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return args, nil
}

// FromMap adapts a plain map to a Lookup.
func FromMap(m map[string]string) Lookup {
	return func(name string) string { return m[name] }
}

// Get returns the value of name.
func (a Args) Get(name string) string {
	return a[name]
}

// Names returns the parameter names in sorted order.
func (a Args) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
