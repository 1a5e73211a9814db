// scraper/embedded_json.go
package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/utils"
)

// DefaultEmbeddedSelector matches the script blocks search pages commonly
// use to ship their initial state.
const DefaultEmbeddedSelector = `script[type="application/json"], script[type="application/ld+json"]`

// ErrNoEmbeddedJSON means no node matched the selector with valid JSON text.
var ErrNoEmbeddedJSON = errors.New("no embedded JSON found")

// ExtractEmbeddedJSON parses an HTML document and decodes the text of the
// first node matching selector that holds valid JSON. An empty selector
// means DefaultEmbeddedSelector.
func ExtractEmbeddedJSON(r io.Reader, selector string) (any, error) {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultEmbeddedSelector
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var (
		payload any
		found   bool
	)
	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		var v any
		if err := utils.DecodeJSON([]byte(text), &v); err != nil {
			return true
		}
		payload, found = v, true
		return false
	})

	if !found {
		return nil, fmt.Errorf("%w (selector %q)", ErrNoEmbeddedJSON, selector)
	}
	return payload, nil
}

// DecodePayload decodes an upstream body. A JSON body is decoded as is;
// otherwise body is treated as an HTML page whose payload sits in a node
// matched by selector. Numbers are kept as json.Number.
func DecodePayload(body []byte, selector string) (any, error) {
	var payload any
	jsonErr := utils.DecodeJSON(body, &payload)
	if jsonErr == nil {
		return payload, nil
	}

	payload, err := ExtractEmbeddedJSON(bytes.NewReader(body), selector)
	if err != nil {
		return nil, errors.Join(jsonErr, err)
	}
	logging.L().Debug("Scraper: body is not JSON, using JSON embedded in the page")
	return payload, nil
}
