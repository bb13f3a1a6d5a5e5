// Package classify decides whether extracted text is a purchase order or an invoice.
package classify

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
)

// HeaderLines is the number of leading lines searched for title-like keywords.
const HeaderLines = 30

var (
	strongPO = []*regexp.Regexp{
		regexp.MustCompile(`^purchase order$`),
		regexp.MustCompile(`^po$`),
		regexp.MustCompile(`purchase order\s*$`),
	}
	strongInvoice = []*regexp.Regexp{
		regexp.MustCompile(`^invoice$`),
		regexp.MustCompile(`^inv$`),
		regexp.MustCompile(`invoice\s*$`),
		regexp.MustCompile(`^bill$`),
		regexp.MustCompile(`bill\s*$`),
		regexp.MustCompile(`^tax invoice$`),
		regexp.MustCompile(`tax invoice\s*$`),
	}

	weakPO      = []string{"po number:", "po-", "purchase order number"}
	weakInvoice = []string{"invoice number:", "inv-", "invoice no:", "bill number:", "bill no:", "tax invoice"}
)

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	detectMixed bool
}

type Option func(*Classifier)

// WithMixedDetection makes a header carrying both a PO and an Invoice title
// classify as Mixed instead of PO.
func WithMixedDetection(enabled bool) Option {
	return func(c *Classifier) {
		c.detectMixed = enabled
	}
}

func New(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, o := range opts {
		o(c)
	}
	return c
}

var defaultClassifier = New()

// Classify runs the default classifier.
func Classify(text string) constants.DocType {
	return defaultClassifier.Classify(text)
}

// Classify inspects the header window for title keywords first; if none is
// present it falls back to marker substrings anywhere in the text. The strong
// tier prefers PO on a tie, the weak tier prefers Invoice.
func (c *Classifier) Classify(text string) constants.DocType {
	header := headerWindow(text)

	po := anyLineMatches(header, strongPO)
	inv := anyLineMatches(header, strongInvoice)
	switch {
	case po && inv && c.detectMixed:
		return constants.DocTypeMixed
	case po:
		return constants.DocTypePO
	case inv:
		return constants.DocTypeInvoice
	}

	lower := strings.ToLower(text)
	po = containsAny(lower, weakPO)
	inv = containsAny(lower, weakInvoice)
	switch {
	case inv:
		return constants.DocTypeInvoice
	case po:
		return constants.DocTypePO
	default:
		return constants.DocTypeUnknown
	}
}

func headerWindow(text string) []string {
	lines := strings.SplitN(text, "\n", HeaderLines+1)
	if len(lines) > HeaderLines {
		lines = lines[:HeaderLines]
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(strings.ToLower(l), " \t\r")
	}
	return out
}

func anyLineMatches(lines []string, patterns []*regexp.Regexp) bool {
	for _, l := range lines {
		for _, re := range patterns {
			if re.MatchString(l) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
