package scraper

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Site identifies which marketplace's page layout a document follows
type Site string

// Supported sites
const (
	SiteAmazon Site = "amazon"
	SiteNoon   Site = "noon"
)

// Field is the name of an extractable piece of product data
type Field string

// Recognised fields, in canonical order
const (
	FieldTitle  Field = "title"
	FieldPrice  Field = "price"
	FieldImage  Field = "image"
	FieldBuybox Field = "buybox"
	FieldSeller Field = "seller"
	FieldBrand  Field = "brand"
	FieldLink   Field = "link"
)

var canonicalFields = []Field{FieldTitle, FieldPrice, FieldImage, FieldBuybox, FieldSeller, FieldBrand, FieldLink}

// AllFields returns every recognised field in canonical order
func AllFields() []Field {
	out := make([]Field, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// Lookup describes how a strategy locates its element
type Lookup int

const (
	// ByID matches the element whose id equals Key
	ByID Lookup = iota
	// BySelector matches the first element for the CSS selector in Key
	BySelector
	// ByAttribute matches the first Tag element whose Key attribute equals Value
	ByAttribute
)

func (l Lookup) String() string {
	switch l {
	case ByID:
		return "id"
	case BySelector:
		return "selector"
	case ByAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// CleanerFunc post-processes an extracted value
type CleanerFunc func(string) string

// Strategy is one way of locating and reading a field on a page.
// Build strategies with ID, CSS or Meta so the matcher is compiled.
type Strategy struct {
	Lookup Lookup
	Key    string
	Value  string
	Tag    string
	// Attr selects the attribute accessor; empty reads the element text
	Attr  string
	Clean CleanerFunc

	selector string
	matcher  goquery.Matcher
}

// Rule is an ordered list of fallback strategies for one (site, field) pair
type Rule []Strategy

// Result maps each found field to its non-empty value
type Result map[string]string

// ID returns a strategy matching the element with the given id
func ID(id string) Strategy {
	return compile(Strategy{Lookup: ByID, Key: id})
}

// CSS returns a strategy matching the first element for a CSS selector
func CSS(selector string) Strategy {
	return compile(Strategy{Lookup: BySelector, Key: selector})
}

// Meta returns a strategy matching the first tag element whose attribute key equals value
func Meta(tag, key, value string) Strategy {
	return compile(Strategy{Lookup: ByAttribute, Tag: tag, Key: key, Value: value})
}

// Read switches the strategy to the attribute accessor
func (s Strategy) Read(attr string) Strategy {
	s.Attr = attr
	return s
}

// Cleaned attaches a cleaner applied after whitespace normalization
func (s Strategy) Cleaned(fn CleanerFunc) Strategy {
	s.Clean = fn
	return s
}

// Selector returns the CSS selector the strategy was compiled from
func (s Strategy) Selector() string {
	return s.selector
}

func (s Strategy) String() string {
	if s.Attr != "" {
		return fmt.Sprintf("%s(%s)@%s", s.Lookup, s.selector, s.Attr)
	}
	return fmt.Sprintf("%s(%s)", s.Lookup, s.selector)
}

// compile panics on malformed selectors; tables are built at package init
func compile(s Strategy) Strategy {
	switch s.Lookup {
	case ByID:
		s.selector = fmt.Sprintf("[id=%q]", s.Key)
	case ByAttribute:
		s.selector = fmt.Sprintf("%s[%s=%q]", s.Tag, s.Key, s.Value)
	default:
		s.selector = s.Key
	}
	s.matcher = goquery.SingleMatcher(cascadia.MustCompile(s.selector))
	return s
}
