package funnel

import (
	"fmt"
	"net/url"
)

// Validate checks the structural shape of a funnel definition.
//
// It is purely syntactic: it guards field presence, closed enums and
// sub-object shapes, and deliberately does NOT check that edges point at
// existing nodes. Referential integrity is the graph constructor's job
// (see pkg/graph), so partial or streaming validation stays possible.
func Validate(f *Funnel) error {
	var errs []error

	fail := func(field, reason string, value any) {
		errs = append(errs, &ValidationError{Field: field, Reason: reason, Value: value})
	}

	if f == nil {
		return &AggregateError{Errors: []error{
			&ValidationError{Field: "", Reason: "funnel is nil"},
		}}
	}

	if f.Version != Version {
		fail("version", fmt.Sprintf("must be the literal %d", Version), f.Version)
	}
	if f.Name == "" {
		fail("name", "required", nil)
	}

	for i, n := range f.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.ID == "" {
			fail(path+".id", "required", nil)
		}
		if !n.Type.Valid() {
			fail(path+".type", "unknown node type", string(n.Type))
		}
		if n.Label == "" {
			fail(path+".label", "required", nil)
		}
		validateNodeData(path+".data", n.Data, fail)
	}

	for i, e := range f.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if e.ID == "" {
			fail(path+".id", "required", nil)
		}
		if e.Source == "" {
			fail(path+".source", "required", nil)
		}
		if e.Target == "" {
			fail(path+".target", "required", nil)
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateNodeData(path string, d NodeData, fail func(field, reason string, value any)) {
	for i, opt := range d.Options {
		p := fmt.Sprintf("%s.options[%d]", path, i)
		if opt.ID == "" {
			fail(p+".id", "required", nil)
		}
		if opt.Label == "" {
			fail(p+".label", "required", nil)
		}
	}

	for i, f := range d.FormFields {
		p := fmt.Sprintf("%s.formFields[%d]", path, i)
		if f.ID == "" {
			fail(p+".id", "required", nil)
		}
		if f.Label == "" {
			fail(p+".label", "required", nil)
		}
		if !f.Type.Valid() {
			fail(p+".type", "unknown input kind", string(f.Type))
		}
	}

	if d.Result != nil {
		if d.Result.Title == "" {
			fail(path+".result.title", "required", nil)
		}
		if d.Result.CTAURL != "" && !isAbsoluteURL(d.Result.CTAURL) {
			fail(path+".result.ctaUrl", "must be a well-formed absolute URL", d.Result.CTAURL)
		}
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
