package invoice

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

var (
	totalKwhRe       = regexp.MustCompile(`(?i)\btotal\s+(-?\s*` + numberPart + `)\s*kwh\b`)
	totalWordRe      = regexp.MustCompile(`\btotal\b`)
	kwhTokenRe       = regexp.MustCompile(kwhToken)
	trailingNumberRe = regexp.MustCompile(leftEdge + `(` + signPart + numberPart + `)\s*$`)
	noisyKwhRe       = regexp.MustCompile(leftEdge + `(-?\s*` + numberPart + `)\s*` + kwhToken)
	negativeKwhRe    = regexp.MustCompile(leftEdge + `([-−–]\s*` + numberPart + `)\s*` + kwhToken)
)

var (
	reactiveWords  = []string{"reactiva", "kvar"}
	periodLineBad  = []string{"reactiva", "kvar", "cargos", "acceso", "potencia", "exceso"}
	docScanBad     = []string{"reactiva", "kvar", "potencia", "exceso", "m3", "kwh/m", "m^3"}
	docScanGood    = []string{"energia", "consumo", "total", "factura"}
	negativeKwhBad = []string{"reactiva", "kvar", "potencia", "exceso"}
)

// minKwhFigure is the smallest reading accepted by the document-wide scans,
// below which numbers are usually prices or counters.
var minKwhFigure = decimal.NewFromInt(10)

// consumptionStrategies feed the consumption pool when no table total exists.
var consumptionStrategies = []Strategy{
	{Source: "window_consumo", Extract: WindowConsumptionKwh},
	{Source: "total_any", Extract: TotalAnyKwh},
	{Source: "total_multiline", Extract: TotalMultilineKwh},
	{Source: "period_sum", Extract: PeriodSumKwh},
	{Source: "number_before_kwh", Extract: NumberBeforeKwh},
	{Source: "max_in_doc", Extract: MaxKwhInDoc},
	{Source: "negative_kwh", Extract: NegativeKwh},
}

// TableTotalKwh reads a "Total <N> kWh" table row. It is the authoritative
// consumption source; rows near reactive-energy wording are skipped.
func TableTotalKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	for _, m := range totalKwhRe.FindAllStringSubmatchIndex(doc.Text, -1) {
		ctx := ocrtext.Fold(ocrtext.Slice(doc.Text, m[0]-40, m[1]+40))
		if ocrtext.ContainsAny(ctx, reactiveWords...) {
			continue
		}
		if d, ok := kwhQuantity(doc.Text[m[2]:m[3]], th, false); ok {
			return localeformat.FormatQuantity(d), true
		}
	}
	return "", false
}

// WindowConsumptionKwh takes the first "<N> kWh" inside a seven-line window
// that talks about consumption or totals. Without such a window it falls
// back to the largest kWh figure of the document.
func WindowConsumptionKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	for i := range doc.Lines {
		var chunk []string
		for j := i; j < len(doc.Lines) && j <= i+6; j++ {
			if IsEquivalenceLine(doc.Lines[j]) || ocrtext.ContainsAny(doc.Folded[j], reactiveWords...) {
				continue
			}
			chunk = append(chunk, doc.Lines[j])
		}
		if len(chunk) == 0 {
			continue
		}
		window := strings.Join(chunk, " ")
		folded := ocrtext.Fold(window)
		if !strings.Contains(folded, "kwh") || !ocrtext.ContainsAny(folded, "consumo", "total") {
			continue
		}
		if m := numberKwhRe.FindStringSubmatch(window); m != nil {
			if d, ok := kwhQuantity(m[1], th, false); ok {
				return localeformat.FormatQuantity(d), true
			}
		}
	}

	var (
		best  decimal.Decimal
		found bool
	)
	for _, m := range numberKwhRe.FindAllStringSubmatchIndex(doc.Text, -1) {
		span := ocrtext.Slice(doc.Text, m[0]-80, m[1])
		if IsEquivalenceLine(span) || ocrtext.ContainsAny(ocrtext.Fold(span), reactiveWords...) {
			continue
		}
		d, ok := kwhQuantity(doc.Text[m[2]:m[3]], th, false)
		if ok && (!found || d.GreaterThan(best)) {
			best, found = d, true
		}
	}
	if !found {
		return "", false
	}
	return localeformat.FormatQuantity(best), true
}

// TotalAnyKwh is the first "Total <N> kWh" outside reactive lines, without
// the table context check.
func TotalAnyKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	for i, line := range doc.Lines {
		if ocrtext.ContainsAny(doc.Folded[i], reactiveWords...) {
			continue
		}
		for _, m := range totalKwhRe.FindAllStringSubmatch(line, -1) {
			if d, ok := kwhQuantity(m[1], th, false); ok {
				return localeformat.FormatQuantity(d), true
			}
		}
	}
	return "", false
}

// TotalMultilineKwh takes the first "<N> kWh" on a line mentioning "total"
// or on one of the six lines after it.
func TotalMultilineKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	for i, folded := range doc.Folded {
		if !totalWordRe.MatchString(folded) {
			continue
		}
		for j := i; j < len(doc.Lines) && j <= i+6; j++ {
			if ocrtext.ContainsAny(doc.Folded[j], reactiveWords...) {
				continue
			}
			m := numberKwhRe.FindStringSubmatch(doc.Lines[j])
			if m == nil {
				continue
			}
			if d, ok := kwhQuantity(m[1], th, false); ok {
				return localeformat.FormatQuantity(d), true
			}
		}
	}
	return "", false
}

// PeriodSumKwh adds up the kWh of the P1..P6 lines. Each line contributes
// its largest quantity that is neither a unit price nor a money amount.
func PeriodSumKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	total := decimal.Zero
	for i, folded := range doc.Folded {
		if !periodTagRe.MatchString(folded) || !strings.Contains(folded, "kwh") || ocrtext.ContainsAny(folded, periodLineBad...) {
			continue
		}
		line := maskDates(doc.Lines[i])
		best := decimal.Zero
		for _, m := range numberRe.FindAllStringSubmatchIndex(line, -1) {
			raw := line[m[2]:m[3]]
			if gluedToWord(line, m[2], m[3]) || localeformat.LooksLikeUnitPrice(raw) {
				continue
			}
			span := strings.ToLower(ocrtext.Slice(line, m[2]-6, m[3]+6))
			if strings.Contains(span, "/kwh") || strings.Contains(span, "€") || strings.Contains(span, "eur") {
				continue
			}
			if d, ok := kwhQuantity(raw, th, false); ok && d.GreaterThan(best) {
				best = d
			}
		}
		total = total.Add(best)
	}
	if total.LessThanOrEqual(decimal.NewFromFloat(0.5)) {
		return "", false
	}
	return localeformat.FormatQuantity(total), true
}

// NumberBeforeKwh takes, on every line, the number printed right before a
// kWh token (tolerating OCR noise such as "k W h") and keeps the largest.
func NumberBeforeKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	for i, line := range doc.Lines {
		if IsEquivalenceLine(line) || strings.Contains(doc.Folded[i], "reactiva") {
			continue
		}
		for _, tok := range kwhTokenRe.FindAllStringIndex(line, -1) {
			m := trailingNumberRe.FindStringSubmatch(line[:tok[0]])
			if m == nil || localeformat.LooksLikeUnitPrice(m[1]) {
				continue
			}
			d, ok := kwhQuantity(m[1], th, false)
			if !ok || d.LessThan(minKwhFigure) {
				continue
			}
			if !found || d.GreaterThan(best) {
				best, found = d, true
			}
		}
	}
	if !found {
		return "", false
	}
	return localeformat.FormatQuantity(best), true
}

// MaxKwhInDoc keeps the largest "<N> kWh" of the document whose
// surroundings mention energy, consumption, totals or the invoice itself and
// do not mention reactive energy, power or gas volume conversions.
func MaxKwhInDoc(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, m := range noisyKwhRe.FindAllStringSubmatchIndex(doc.Text, -1) {
		ctx := ocrtext.Fold(ocrtext.Slice(doc.Text, m[0]-100, m[1]+100))
		if ocrtext.ContainsAny(ctx, docScanBad...) || !ocrtext.ContainsAny(ctx, docScanGood...) {
			continue
		}
		raw := doc.Text[m[2]:m[3]]
		if localeformat.LooksLikeUnitPrice(raw) {
			continue
		}
		d, ok := kwhQuantity(raw, th, false)
		if !ok || d.LessThan(minKwhFigure) {
			continue
		}
		if !found || d.GreaterThan(best) {
			best, found = d, true
		}
	}
	if !found {
		return "", false
	}
	return localeformat.FormatQuantity(best), true
}

// NegativeKwh finds an explicitly negative kWh figure on credit notes and
// rectifying invoices.
func NegativeKwh(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	if !doc.IsCredit() {
		return "", false
	}
	for _, m := range negativeKwhRe.FindAllStringSubmatchIndex(doc.Text, -1) {
		ctx := ocrtext.Fold(ocrtext.Slice(doc.Text, m[0]-80, m[1]+40))
		if ocrtext.ContainsAny(ctx, negativeKwhBad...) {
			continue
		}
		if d, ok := kwhQuantity(doc.Text[m[2]:m[3]], th, true); ok && d.IsNegative() {
			return localeformat.FormatQuantity(d), true
		}
	}
	return "", false
}

// firstPassConsumption cleans a first-pass consumption guess. Values shaped
// like dates are discarded.
func firstPassConsumption(raw string, th *Thresholds) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || dateRe.MatchString(raw) {
		return "", false
	}
	d, ok := localeformat.ParseCanonical(localeformat.KeepDecimals(raw))
	if !ok {
		return "", false
	}
	d, ok = checkKwh(d, th, true)
	if !ok {
		return "", false
	}
	return localeformat.FormatQuantity(d), true
}

var (
	yearLow  = decimal.NewFromInt(1900)
	yearHigh = decimal.NewFromInt(2100)
)

// chooseConsumption selects the consumption among pool candidates.
//
// With a known energy cost each candidate is ranked by how close its implied
// price is to the reference price, restricted to the preferred price band,
// then to the wide band, then to nothing. Ties go to the larger quantity.
// Without an energy cost the largest quantity wins. Values that look like
// years are never chosen.
func chooseConsumption(cands []Candidate, energyCost decimal.NullDecimal, th *Thresholds) (Candidate, bool) {
	type scored struct {
		c         Candidate
		magnitude decimal.Decimal
		price     decimal.Decimal
	}

	var pool []scored
	for _, c := range cands {
		d, ok := localeformat.ParseCanonical(c.Value)
		if !ok {
			continue
		}
		mag := d.Abs()
		if mag.IsZero() || (mag.GreaterThanOrEqual(yearLow) && mag.LessThanOrEqual(yearHigh)) {
			continue
		}
		pool = append(pool, scored{c: c, magnitude: mag})
	}
	if len(pool) == 0 {
		return Candidate{}, false
	}

	if !energyCost.Valid || energyCost.Decimal.IsZero() {
		best := pool[0]
		for _, s := range pool[1:] {
			if s.magnitude.GreaterThan(best.magnitude) {
				best = s
			}
		}
		return best.c, true
	}

	cost := energyCost.Decimal.Abs()
	var preferred, wide []scored
	for i := range pool {
		pool[i].price = cost.DivRound(pool[i].magnitude, 6)
		pool[i].c.Score = pool[i].price.InexactFloat64()
		if th.inPreferredBand(pool[i].price) {
			preferred = append(preferred, pool[i])
		}
		if th.inPriceBand(pool[i].price) {
			wide = append(wide, pool[i])
		}
	}
	ranked := pool
	switch {
	case len(preferred) > 0:
		ranked = preferred
	case len(wide) > 0:
		ranked = wide
	}

	ref := decimal.NewFromFloat(th.ReferencePricePerKwh)
	best := ranked[0]
	bestDist := best.price.Sub(ref).Abs()
	for _, s := range ranked[1:] {
		dist := s.price.Sub(ref).Abs()
		if dist.LessThan(bestDist) || (dist.Equal(bestDist) && s.magnitude.GreaterThan(best.magnitude)) {
			best, bestDist = s, dist
		}
	}
	return best.c, true
}
