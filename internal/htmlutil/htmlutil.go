// Package htmlutil loads raw HTML into a navigable tree with charset
// detection, and provides optional sanitization of untrusted input.
package htmlutil

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// MaxHTMLSize limits HTML input to 10MB to prevent memory exhaustion.
const MaxHTMLSize = 10 * 1024 * 1024

// Validate checks HTML size bounds. max <= 0 falls back to MaxHTMLSize.
func Validate(htmlStr string, max int) error {
	if len(htmlStr) == 0 {
		return fmt.Errorf("html content required")
	}
	if max <= 0 {
		max = MaxHTMLSize
	}
	if len(htmlStr) > max {
		return fmt.Errorf("html exceeds maximum size of %d bytes", max)
	}
	return nil
}

// DetectCharset detects the charset of raw HTML bytes, defaulting to utf-8.
func DetectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// LoadNode parses HTML into a document node with automatic charset
// conversion, falling back to a direct parse when conversion fails.
func LoadNode(htmlStr string) (*html.Node, error) {
	data := []byte(htmlStr)
	detected := DetectCharset(data)

	utf8Reader, err := charset.NewReader(bytes.NewReader(data), detected)
	if err != nil {
		return htmlquery.Parse(strings.NewReader(htmlStr))
	}
	return htmlquery.Parse(utf8Reader)
}

var (
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

// Sanitize strips scripts and other unwanted markup using the UGC policy.
func Sanitize(htmlStr string) string {
	sanitizerOnce.Do(func() {
		sanitizer = bluemonday.UGCPolicy()
	})
	return sanitizer.Sanitize(htmlStr)
}

// NormalizeWhitespace collapses whitespace runs into single spaces.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
