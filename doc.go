// Package docquery extracts string data from HTML documents using CSS
// selectors or an XPath subset, with a chainable result object that never
// fails on malformed input and always reports whether it matched.
//
// The package is organized around a single pipeline:
//   - pseudo-element translation: ::text and ::attr(name) suffixes are
//     stripped before evaluation and applied as extraction rules after
//   - the CSS front end delegates matching to the native matcher
//   - the XPath front end parses expressions into location steps and
//     evaluates axes and predicates against the shared tree
//   - the Selector wraps the ordered result list with the feedback
//     contract (Ok, Count, Get/GetOr, Result) and chainable projections
//     (Re, JMESPath, Map, First/Last/Eq)
//
// Built on specialized libraries:
//   - golang.org/x/net/html: the document tree
//   - cascadia: CSS selector matching
//   - htmlquery: HTML parsing with charset handling
//   - goquery: markup serialization
//   - go-jmespath + sonic: JSON projections
//   - bluemonday: optional input sanitization
//
// No operation raises: malformed queries yield empty Selectors plus a
// warning on the configured logger, and empty results are reported purely
// through Ok and Count.
//
// Example Usage:
//
//	sel := docquery.Parse(`<ul><li>A</li><li>B</li></ul>`)
//	sel.CSS("li::text").GetAll() // ["A", "B"]
//	sel.XPath("//li[last()]::text").Get() // "B"
package docquery
