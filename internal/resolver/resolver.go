// Package resolver implements selector-fallback field resolution: every
// semantic field carries an ordered list of selector candidates, and the
// first candidate that yields a usable element wins. The same primitive is
// used for single fields, actionable controls, and repeated containers.
package resolver

import (
	"log/slog"
	"strings"

	"github.com/maltedev/amazon-reviews-scraper/internal/diag"
	"github.com/maltedev/amazon-reviews-scraper/internal/metrics"
)

// Candidate is an ordered set of selectors for one semantic field.
// Candidate lists are immutable once built; required fields always carry at
// least one selector.
type Candidate struct {
	Field     string
	Selectors []string
}

// Element is the subset of a browser locator the resolver needs. A value
// represents the whole match set for a selector; First narrows it to the
// first match.
type Element interface {
	Count() (int, error)
	First() Element
	IsVisible() (bool, error)
	TextContent() (string, error)
	GetAttribute(name string) (string, error)
	Fill(value string) error
	Click() error
	All() ([]Element, error)
	Locator(selector string) Element
}

// Queryable is anything selectors can be run against: a page or a container
// element.
type Queryable interface {
	Locator(selector string) Element
}

// Resolver tries candidates in declared order and reports degradation to the
// diagnostics recorder. All methods absorb per-candidate query errors; a
// missing field is a (zero value, false) result, never an error.
type Resolver struct {
	logger *slog.Logger
	diag   *diag.Recorder
}

func New(logger *slog.Logger, rec *diag.Recorder) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		logger: logger.With("component", "resolver"),
		diag:   rec,
	}
}

// Text returns the trimmed text of the first present candidate.
func (r *Resolver) Text(q Queryable, c Candidate) (string, bool) {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		text, err := el.First().TextContent()
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		return strings.TrimSpace(text), true
	}
	r.unresolved(c.Field)
	return "", false
}

// Attribute returns the named attribute of the first present candidate.
// An empty attribute value counts as a match, so callers can distinguish
// "attribute absent on every candidate" from "attribute empty".
func (r *Resolver) Attribute(q Queryable, c Candidate, name string) (string, bool) {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		value, err := el.First().GetAttribute(name)
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		return strings.TrimSpace(value), true
	}
	r.unresolved(c.Field)
	return "", false
}

// AttributeOrText prefers the named attribute and falls back to the text of
// the same element when the attribute is empty. Used for ratings, where the
// accessible label usually carries the value.
func (r *Resolver) AttributeOrText(q Queryable, c Candidate, name string) (string, bool) {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		first := el.First()
		if value, err := first.GetAttribute(name); err == nil && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
		text, err := first.TextContent()
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		return strings.TrimSpace(text), true
	}
	r.unresolved(c.Field)
	return "", false
}

// Visible reports whether any candidate has a visible first match.
func (r *Resolver) Visible(q Queryable, c Candidate) bool {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		visible, err := el.First().IsVisible()
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		if visible {
			return true
		}
	}
	return false
}

// Fill types value into the first visible candidate. Resolution and action
// are fused: the first visible control is the one safe to act on, so no
// later candidate is tried after a successful match.
func (r *Resolver) Fill(q Queryable, c Candidate, value string) bool {
	el, ok := r.actionable(q, c)
	if !ok {
		return false
	}
	if err := el.Fill(value); err != nil {
		r.transport(c.Field, "", err)
		return false
	}
	r.logger.Debug("filled field", "field", c.Field)
	return true
}

// Click clicks the first visible candidate.
func (r *Resolver) Click(q Queryable, c Candidate) bool {
	el, ok := r.actionable(q, c)
	if !ok {
		return false
	}
	if err := el.Click(); err != nil {
		r.transport(c.Field, "", err)
		return false
	}
	r.logger.Debug("clicked field", "field", c.Field)
	return true
}

// Containers resolves at container granularity: the first selector with at
// least one match wins for the whole list, and all of its elements are
// returned in DOM order.
func (r *Resolver) Containers(q Queryable, c Candidate) ([]Element, bool) {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		all, err := el.All()
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		r.logger.Debug("resolved containers", "field", c.Field, "selector", sel, "count", len(all))
		return all, true
	}
	r.unresolved(c.Field)
	return nil, false
}

func (r *Resolver) present(q Queryable, selector, field string) (Element, bool) {
	el := q.Locator(selector)
	n, err := el.Count()
	if err != nil {
		r.transport(field, selector, err)
		return nil, false
	}
	if n == 0 {
		return nil, false
	}
	return el, true
}

func (r *Resolver) actionable(q Queryable, c Candidate) (Element, bool) {
	for _, sel := range c.Selectors {
		el, ok := r.present(q, sel, c.Field)
		if !ok {
			continue
		}
		first := el.First()
		visible, err := first.IsVisible()
		if err != nil {
			r.transport(c.Field, sel, err)
			continue
		}
		if !visible {
			continue
		}
		return first, true
	}
	r.unresolved(c.Field)
	return nil, false
}

func (r *Resolver) unresolved(field string) {
	metrics.FieldsUnresolved.Inc()
	r.diag.Record(diag.KindFieldUnresolved, "resolver", field, "all candidates exhausted")
}

func (r *Resolver) transport(field, selector string, err error) {
	r.logger.Warn("query failed", "field", field, "selector", selector, "error", err)
	r.diag.Record(diag.KindTransportTimeout, "resolver", field, err.Error())
}
