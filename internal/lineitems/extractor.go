// Package lineitems pulls item rows out of loosely formatted PO and invoice text.
package lineitems

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
)

var (
	itemLinePrefix = regexp.MustCompile(`^\d{3}`)
	noiseMarkers   = []string{"Acc. No:", "Payment", "Terms", "Instructions"}
)

// Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	catalog  Catalog
	matchers []Matcher
	logger   *slog.Logger
}

type Option func(*Extractor)

func WithCatalog(c Catalog) Option {
	return func(e *Extractor) {
		if c != nil {
			e.catalog = c
		}
	}
}

func WithMatchers(ms ...Matcher) Option {
	return func(e *Extractor) {
		if len(ms) > 0 {
			e.matchers = ms
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		catalog:  DefaultCatalog(),
		matchers: DefaultMatchers(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns the items found in text in order of appearance. role selects
// which catalog wording replaces recognised descriptions. It never fails; text
// without recognisable rows yields an empty slice.
func (e *Extractor) Extract(text string, role constants.DocType) []entity.LineItem {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	items := make([]entity.LineItem, 0)

	for i := 0; i < len(lines); {
		if skipLine(strings.TrimSpace(lines[i])) {
			i++
			continue
		}
		consumed := 1
		for _, m := range e.matchers {
			item, n, ok := m.Match(lines, i)
			if !ok {
				continue
			}
			if m.UseCatalog {
				if desc, found := e.catalog.Lookup(item.ItemNo, role); found {
					item.Description = desc
				}
			}
			e.logger.Debug("lineitems.match", "matcher", m.Name, "line", i+1, "item_no", item.ItemNo)
			items = append(items, item)
			if n > 0 {
				consumed = n
			}
			break
		}
		i += consumed
	}

	e.logger.Debug("lineitems.extract.done", "role", role, "lines", len(lines), "items", len(items))
	return items
}

func skipLine(line string) bool {
	if len(line) < 3 {
		return true
	}
	for _, m := range noiseMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return !itemLinePrefix.MatchString(line)
}
