package resolver

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDocument implements Queryable against a static HTML snapshot using
// goquery. It backs the package tests across the repo: matched elements are
// treated as visible unless hidden explicitly, and fill/click interactions
// are recorded instead of performed. OnClick lets a test swap in the next
// page snapshot when a control is clicked.
type HTMLDocument struct {
	doc    *goquery.Document
	hidden map[string]bool

	Fills   []FieldInteraction
	Clicks  []string
	OnClick func(selector string)
}

// FieldInteraction records one fill against a selector.
type FieldInteraction struct {
	Selector string
	Value    string
}

func ParseHTMLDocument(html string) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc, hidden: make(map[string]bool)}, nil
}

// SetHTML replaces the document content, keeping recorded interactions.
func (d *HTMLDocument) SetHTML(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	d.doc = doc
	return nil
}

// Hide marks every element matched through the given selector as invisible.
func (d *HTMLDocument) Hide(selector string) {
	d.hidden[selector] = true
}

func (d *HTMLDocument) Locator(selector string) Element {
	return &htmlElement{owner: d, selector: selector, find: func() *goquery.Selection {
		return d.doc.Find(selector)
	}}
}

type htmlElement struct {
	owner    *HTMLDocument
	selector string
	find     func() *goquery.Selection
}

func (e *htmlElement) Count() (int, error) {
	return e.find().Length(), nil
}

func (e *htmlElement) First() Element {
	return &htmlElement{owner: e.owner, selector: e.selector, find: func() *goquery.Selection {
		return e.find().First()
	}}
}

func (e *htmlElement) IsVisible() (bool, error) {
	if e.owner.hidden[e.selector] {
		return false, nil
	}
	return e.find().Length() > 0, nil
}

func (e *htmlElement) TextContent() (string, error) {
	sel := e.find()
	if sel.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", e.selector)
	}
	return sel.First().Text(), nil
}

func (e *htmlElement) GetAttribute(name string) (string, error) {
	sel := e.find()
	if sel.Length() == 0 {
		return "", fmt.Errorf("no element matches %q", e.selector)
	}
	value, _ := sel.First().Attr(name)
	return value, nil
}

func (e *htmlElement) Fill(value string) error {
	if e.find().Length() == 0 {
		return fmt.Errorf("no element matches %q", e.selector)
	}
	e.owner.Fills = append(e.owner.Fills, FieldInteraction{Selector: e.selector, Value: value})
	return nil
}

func (e *htmlElement) Click() error {
	if e.find().Length() == 0 {
		return fmt.Errorf("no element matches %q", e.selector)
	}
	e.owner.Clicks = append(e.owner.Clicks, e.selector)
	if e.owner.OnClick != nil {
		e.owner.OnClick(e.selector)
	}
	return nil
}

func (e *htmlElement) All() ([]Element, error) {
	sel := e.find()
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, node *goquery.Selection) {
		elements = append(elements, &htmlElement{owner: e.owner, selector: e.selector, find: func() *goquery.Selection {
			return node
		}})
	})
	return elements, nil
}

func (e *htmlElement) Locator(selector string) Element {
	return &htmlElement{owner: e.owner, selector: selector, find: func() *goquery.Selection {
		return e.find().Find(selector)
	}}
}
