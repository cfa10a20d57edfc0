package docquery

import (
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/docquery/docquery/internal/htmlutil"
	"github.com/docquery/docquery/internal/logging"
	"github.com/docquery/docquery/internal/xpath"
)

// Document is the shared tree handle every Selector derived from one Parse
// call points into. Removal through any Selector is visible to all of them.
// Callers must serialize cross-goroutine mutation themselves.
type Document struct {
	root       *html.Node
	log        *logging.Logger
	regexCache sync.Map // pattern -> *regexp.Regexp
}

// Option configures Parse.
type Option func(*options)

type options struct {
	logger   *logging.Logger
	debug    bool
	sanitize bool
	maxSize  int
}

// WithLogger routes diagnostics to the given logger instead of the no-op
// default.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDebug enables the verbose console logger.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithSanitize strips scripts and unwanted markup from the input before
// parsing.
func WithSanitize() Option {
	return func(o *options) { o.sanitize = true }
}

// WithMaxSize overrides the default input size cap.
func WithMaxSize(n int) Option {
	return func(o *options) { o.maxSize = n }
}

// Parse builds a document tree from raw HTML and returns the root Selector
// wrapping the whole document. Invalid or missing input degrades to an
// empty document; Parse never fails.
func Parse(htmlStr string, opts ...Option) *Selector {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		if o.debug {
			log = logging.NewDevelopment()
		} else {
			log = logging.Nop()
		}
	}

	if err := htmlutil.Validate(htmlStr, o.maxSize); err != nil {
		log.Warn("rejecting html input, using empty document", zap.Error(err))
		htmlStr = ""
	}
	if o.sanitize && htmlStr != "" {
		htmlStr = htmlutil.Sanitize(htmlStr)
	}

	root, err := htmlutil.LoadNode(htmlStr)
	if err != nil || root == nil {
		log.Error("html parse failed, using empty document", zap.Error(err))
		root = emptyDocument()
	}

	doc := &Document{root: root, log: log}
	return &Selector{
		doc:   doc,
		items: []xpath.Value{{Node: root}},
	}
}

// Clean sanitizes HTML with the UGC policy without parsing it.
func Clean(htmlStr string) string {
	return htmlutil.Sanitize(htmlStr)
}

func emptyDocument() *html.Node {
	// Parsing the empty string cannot fail with an in-memory reader.
	n, _ := html.Parse(strings.NewReader(""))
	return n
}

// cachedRegex compiles a pattern once per document handle.
func (d *Document) cachedRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := d.regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	d.regexCache.Store(pattern, re)
	return re, nil
}

// attached reports whether a node still hangs off this document's root.
// Removed nodes fail the check, so stale Selectors simply stop matching.
func (d *Document) attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}
