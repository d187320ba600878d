package testhelpers

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

// TemplateRenderer renders a templ component once and runs chained
// assertions against the resulting HTML.
type TemplateRenderer struct {
	t    *testing.T
	html string
}

// NewTemplateRenderer creates a renderer bound to t
func NewTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	return &TemplateRenderer{t: t}
}

// Render renders the component, failing the test on error
func (r *TemplateRenderer) Render(component templ.Component) *TemplateRenderer {
	r.t.Helper()
	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		r.t.Fatalf("Failed to render component: %v", err)
	}
	r.html = buf.String()
	return r
}

// HTML returns the rendered markup
func (r *TemplateRenderer) HTML() string {
	return r.html
}

// AssertContains checks the markup contains substring
func (r *TemplateRenderer) AssertContains(substring string) *TemplateRenderer {
	r.t.Helper()
	if !strings.Contains(r.html, substring) {
		r.t.Errorf("Expected HTML to contain %q.\nHTML: %s", substring, r.html)
	}
	return r
}

// AssertNotContains checks the markup does not contain substring
func (r *TemplateRenderer) AssertNotContains(substring string) *TemplateRenderer {
	r.t.Helper()
	if strings.Contains(r.html, substring) {
		r.t.Errorf("Expected HTML not to contain %q.\nHTML: %s", substring, r.html)
	}
	return r
}

// AssertHasElementWithID checks an element with the id is present
func (r *TemplateRenderer) AssertHasElementWithID(id string) *TemplateRenderer {
	r.t.Helper()
	if !strings.Contains(r.html, `id="`+id+`"`) {
		r.t.Errorf("Expected element with id=%q.\nHTML: %s", id, r.html)
	}
	return r
}

// AssertElementCount checks how many times an element appears
func (r *TemplateRenderer) AssertElementCount(tagName string, want int) *TemplateRenderer {
	r.t.Helper()
	got := len(regexp.MustCompile(`<`+regexp.QuoteMeta(tagName)+`[\s>]`).FindAllString(r.html, -1))
	if got != want {
		r.t.Errorf("Expected %d <%s> elements, found %d.\nHTML: %s", want, tagName, got, r.html)
	}
	return r
}

// AssertOrder checks the substrings appear in the given order
func (r *TemplateRenderer) AssertOrder(parts ...string) *TemplateRenderer {
	r.t.Helper()
	rest := r.html
	for _, part := range parts {
		i := strings.Index(rest, part)
		if i < 0 {
			r.t.Errorf("Expected %q after the previous parts.\nHTML: %s", part, r.html)
			return r
		}
		rest = rest[i+len(part):]
	}
	return r
}
