package fundamental

import (
	"sort"
	"strings"

	"github.com/bobmcallan/tally/internal/models"
)

// Normalize maps a raw statement onto the canonical concept set using the
// supplied keyword table. A raw label matches a concept when it
// case-insensitively contains any of the concept's keywords; the first
// matching label in raw-column order wins and further matches are ignored.
// Concepts with no matching label are absent from the period, never zero.
// The only failure is a statement with no periods at all.
func Normalize(raw *models.RawStatement, keywords map[models.CanonicalConcept][]string) (*models.NormalizedStatement, error) {
	if raw == nil || len(raw.Periods) == 0 {
		var st models.StatementType
		if raw != nil {
			st = raw.Type
		}
		return nil, &models.InputStructureError{Statement: st, Reason: "statement has no periods"}
	}

	out := &models.NormalizedStatement{
		Ticker:  raw.Ticker,
		Type:    raw.Type,
		Periods: make([]models.NormalizedPeriod, 0, len(raw.Periods)),
	}

	for _, p := range raw.Periods {
		np := models.NormalizedPeriod{
			EndDate: p.EndDate,
			Values:  make(map[models.CanonicalConcept]float64),
		}

		labels := orderedLabels(p)
		for concept, kws := range keywords {
			if label, ok := matchLabel(labels, kws); ok {
				if v, present := p.Items[label]; present {
					np.Values[concept] = v
				}
			}
		}

		out.Periods = append(out.Periods, np)
	}

	return out, nil
}

// matchLabel returns the first label (in column order) containing any of the
// keywords, case-insensitively.
func matchLabel(labels []string, keywords []string) (string, bool) {
	for _, label := range labels {
		folded := foldLabel(label)
		for _, kw := range keywords {
			if strings.Contains(folded, kw) {
				return label, true
			}
		}
	}
	return "", false
}

// foldLabel lowercases a label and converts underscore and camelCase word
// boundaries to spaces, so "totalCurrentAssets", "total_current_assets" and
// "Total Current Assets" all fold to the same matchable text. This also
// keeps normalization idempotent over canonical labels.
func foldLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label) + 4)
	var prev rune
	for _, r := range label {
		switch {
		case r == '_':
			b.WriteRune(' ')
			r = ' '
		case r >= 'A' && r <= 'Z':
			if prev != 0 && prev != ' ' && !(prev >= 'A' && prev <= 'Z') {
				b.WriteRune(' ')
			}
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// orderedLabels returns the period's labels in source column order, falling
// back to sorted item keys when the source order was not preserved. Labels
// arrive as text; non-textual indices are coerced by the provider before
// they reach the normalizer.
func orderedLabels(p models.RawPeriod) []string {
	if len(p.Labels) > 0 {
		return p.Labels
	}
	labels := make([]string, 0, len(p.Items))
	for label := range p.Items {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
