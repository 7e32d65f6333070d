package resolver

import (
	"github.com/playwright-community/playwright-go"
)

// playwrightElement adapts a playwright.Locator to Element.
type playwrightElement struct {
	locator playwright.Locator
}

// WrapPage exposes a live playwright page as a Queryable.
func WrapPage(page playwright.Page) Queryable {
	return pageQueryable{page: page}
}

// WrapLocator exposes a playwright locator (e.g. a container) as an Element.
func WrapLocator(locator playwright.Locator) Element {
	return playwrightElement{locator: locator}
}

type pageQueryable struct {
	page playwright.Page
}

func (p pageQueryable) Locator(selector string) Element {
	return playwrightElement{locator: p.page.Locator(selector)}
}

func (e playwrightElement) Count() (int, error) {
	return e.locator.Count()
}

func (e playwrightElement) First() Element {
	return playwrightElement{locator: e.locator.First()}
}

func (e playwrightElement) IsVisible() (bool, error) {
	return e.locator.IsVisible()
}

func (e playwrightElement) TextContent() (string, error) {
	return e.locator.TextContent()
}

func (e playwrightElement) GetAttribute(name string) (string, error) {
	return e.locator.GetAttribute(name)
}

func (e playwrightElement) Fill(value string) error {
	return e.locator.Fill(value)
}

func (e playwrightElement) Click() error {
	return e.locator.Click()
}

func (e playwrightElement) All() ([]Element, error) {
	locators, err := e.locator.All()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, playwrightElement{locator: l})
	}
	return elements, nil
}

func (e playwrightElement) Locator(selector string) Element {
	return playwrightElement{locator: e.locator.Locator(selector)}
}
