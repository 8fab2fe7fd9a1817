package errs

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

// Report collects errors raised while documents are processed in parallel.
type Report struct {
	mu     sync.Mutex
	errors []*BuildError
}

func NewReport() *Report {
	return &Report{}
}

// Add records err; joined errors are recorded one by one. Errors that are
// not BuildErrors are recorded as fatal internal errors.
func (r *Report) Add(err error) {
	all := All(err)
	if len(all) == 0 {
		return
	}
	r.mu.Lock()
	r.errors = append(r.errors, all...)
	r.mu.Unlock()
}

// Errors returns every collected error ordered by path, then message.
func (r *Report) Errors() []*BuildError {
	r.mu.Lock()
	out := slices.Clone(r.errors)
	r.mu.Unlock()

	slices.SortStableFunc(out, func(a, b *BuildError) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Message, b.Message))
	})
	return out
}

func (r *Report) filter(keep func(*BuildError) bool) []*BuildError {
	var out []*BuildError
	for _, e := range r.Errors() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (r *Report) Fatal() []*BuildError {
	return r.filter(func(e *BuildError) bool { return e.Fatal() })
}

func (r *Report) Warnings() []*BuildError {
	return r.filter(func(e *BuildError) bool { return e.Severity == SeverityWarning })
}

func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func (r *Report) HasFatal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.errors {
		if e.Fatal() {
			return true
		}
	}
	return false
}

// Err joins the fatal errors, or returns nil when the build may succeed.
func (r *Report) Err() error {
	fatal := r.Fatal()
	if len(fatal) == 0 {
		return nil
	}
	errs := make([]error, len(fatal))
	for i, e := range fatal {
		errs[i] = e
	}
	return errors.Join(errs...)
}
