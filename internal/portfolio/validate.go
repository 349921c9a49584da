package portfolio

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidData marks a dataset that cannot be served. Callers treat it as
// a fatal startup error.
var ErrInvalidData = errors.New("portfolio: invalid data")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field rule plus the cross-record constraints (unique
// page ids and routes, keyword groups pointing at known pages). All problems
// are reported together.
func (d *Data) Validate() error {
	var problems []string

	if err := validatorInstance().Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	ids := make(map[string]bool, len(d.Pages))
	routes := make(map[string]bool, len(d.Pages))
	for i, p := range d.Pages {
		if p.ID != "" && ids[p.ID] {
			problems = append(problems, fmt.Sprintf("pages[%d].id: duplicate %q", i, p.ID))
		}
		if p.Route != "" && routes[p.Route] {
			problems = append(problems, fmt.Sprintf("pages[%d].route: duplicate %q", i, p.Route))
		}
		ids[p.ID] = true
		routes[p.Route] = true
	}
	for i, g := range d.Keywords {
		if g.Page != "" && !ids[g.Page] {
			problems = append(problems, fmt.Sprintf("keywords[%d].page: unknown page %q", i, g.Page))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidData, strings.Join(problems, "\n  "))
	}
	return nil
}

// describe turns a validator failure into "Projects[1].Technologies: required".
func describe(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s", ns, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", ns, fe.Tag())
}
