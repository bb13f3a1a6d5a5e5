package lineitems

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/money"
)

// Matcher recognises an item starting at lines[i]. On success it returns the
// item and how many lines it consumed.
type Matcher struct {
	Name string
	// UseCatalog lets the extractor swap the captured description for the
	// catalog wording when the item number is known.
	UseCatalog bool
	Match      func(lines []string, i int) (entity.LineItem, int, bool)
}

const (
	numExpr      = `\d+(?:\.\d+)?`
	priceExpr    = `[₹$€£]?[\d,]+(?:\.\d+)?`
	csvPriceExpr = `[₹$€£]?\d+(?:\.\d+)?`
)

var (
	bareItemNo   = regexp.MustCompile(`^\d{3}$`)
	tripletPrice = regexp.MustCompile(`^(\d+)\$(` + numExpr + `)\$(` + numExpr + `)$`)
)

// DefaultMatchers returns the strategies in priority order: the three-line
// layout first, then single-line layouts. A spaced row is tried with four
// numeric columns before five, so a description ending in a number stays
// part of the description.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Name: "triplet", Match: matchTriplet},
		rowPattern("compact-discount",
			`^(\d{3})(.+?)(\d+)\$(`+numExpr+`)\$(`+numExpr+`)\$(`+numExpr+`)$`),
		rowPattern("compact",
			`^(\d{3})(.+?)(\d+)\$(`+numExpr+`)\$(`+numExpr+`)$`),
		rowPattern("spaced",
			`^(\d{3})\s+(.+?)\s+(`+numExpr+`)\s+(`+priceExpr+`)\s+(`+priceExpr+`)$`),
		rowPattern("spaced-discount",
			`^(\d{3})\s+(.+?)\s+(`+numExpr+`)\s+(`+priceExpr+`)\s+(`+priceExpr+`)\s+(`+priceExpr+`)$`),
		rowPattern("tabbed",
			`^(\d{3})\t(.+?)\t(`+numExpr+`)\t(`+priceExpr+`)\t(`+priceExpr+`)(?:\t(`+priceExpr+`))?$`),
		rowPattern("csv",
			`^(\d{3}),(.+?),(`+numExpr+`),(`+csvPriceExpr+`),(`+csvPriceExpr+`)(?:,(`+csvPriceExpr+`))?$`),
		rowPattern("separated",
			`^(\d{3})[\s,]+(.+?)[\s,]+(`+numExpr+`)[\s,]+(`+priceExpr+`)[\s,]+(`+priceExpr+`)$`),
		rowPattern("loose",
			`^(\d{3})(\D.*?)\s+(`+numExpr+`)\s+(`+priceExpr+`)\s+(`+priceExpr+`)$`),
	}
}

// matchTriplet handles the layout where the item number, the description and
// "qty$unit$total" sit on three consecutive lines.
func matchTriplet(lines []string, i int) (entity.LineItem, int, bool) {
	itemNo := strings.TrimSpace(lines[i])
	if !bareItemNo.MatchString(itemNo) || i+2 >= len(lines) {
		return entity.LineItem{}, 0, false
	}
	desc := strings.TrimSpace(lines[i+1])
	m := tripletPrice.FindStringSubmatch(strings.TrimSpace(lines[i+2]))
	if m == nil || utf8.RuneCountInString(desc) <= 5 {
		return entity.LineItem{}, 0, false
	}
	qty, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return entity.LineItem{}, 0, false
	}
	return entity.LineItem{
		ItemNo:      itemNo,
		Description: desc,
		Qty:         qty,
		UnitPrice:   m[2],
		Total:       m[3],
		Discount:    "0.00",
		Subtotal:    m[3],
	}, 3, true
}

// rowPattern builds a single-line matcher. Capture groups are, in order:
// item number, description, qty, unit price, total and an optional discount.
func rowPattern(name, expr string) Matcher {
	re := regexp.MustCompile(expr)
	return Matcher{
		Name:       name,
		UseCatalog: true,
		Match: func(lines []string, i int) (entity.LineItem, int, bool) {
			m := re.FindStringSubmatch(strings.TrimSpace(lines[i]))
			if m == nil {
				return entity.LineItem{}, 0, false
			}
			qty, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return entity.LineItem{}, 0, false
			}
			discount := "0"
			if len(m) > 6 && m[6] != "" {
				discount = money.NormalizeAmount(m[6])
			}
			total := money.NormalizeAmount(m[5])
			return entity.LineItem{
				ItemNo:      m[1],
				Description: strings.TrimSpace(m[2]),
				Qty:         qty,
				UnitPrice:   money.NormalizeAmount(m[4]),
				Total:       total,
				Discount:    discount,
				Subtotal:    money.AddFixed(total, discount),
			}, 1, true
		},
	}
}
