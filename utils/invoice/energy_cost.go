package invoice

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
	"github.com/shopspring/decimal"
)

var (
	flatUnitPriceRe  = regexp.MustCompile(`(?i)kwh\s+(\d+(?:[.,]\d+)?)\s+(` + signPart + moneyPart + `)` + currencyPart)
	multiUnitPriceRe = regexp.MustCompile(`(?i)kwh\W+(\d+(?:[.,]\d+)?)\W+(` + signPart + moneyPart + `)` + currencyPart)
	activeEnergyRe   = regexp.MustCompile(`energia\s+activa\b`)
	activePeriodRe   = regexp.MustCompile(`\bp\s*[1-6]\b`)
	moneyEuroSignRe  = regexp.MustCompile(leftEdge + `(` + signPart + moneyPart + `)\s*€`)
	totalKwhFlatRe   = regexp.MustCompile(`(?i)\btotal\s+\d[\d. ,]*\s*kwh`)
	inlineKwhRe      = regexp.MustCompile(`(?i)kwh\s+\d+[.,]\d+`)
	negativeMoneyRe  = regexp.MustCompile(leftEdge + `([-−–]\s*` + moneyPart + `)\b`)
)

var (
	unitPricePositive = []string{"energia", "termino", "activa", "variable"}
	unitPriceForbid   = []string{"acceso", "reactiva", "servicio", "alquiler", "mantenimiento", "regularizacion", "peaje", "impuesto", "financiacion"}
	activeLineBad     = []string{"cargos", "acceso", "reactiva"}
	consumedLineBad   = []string{"total", "exceso", "cargos", "acceso", "reactiva"}
	genericLineBad    = []string{"cargos", "acceso", "reactiva", "exceso", "potencia"}
	energyLabels      = []string{"termino energia", "importe energia", "energia activa", "consumo energia"}
	blockLabels       = []string{"termino energia", "energia activa", "termino variable", "variable", "energia"}
	blockForbid       = []string{
		"cargo", "peaje", "acceso", "reactiva", "impuesto", "alquiler", "equipos", "potencia", "servicio", "otros",
		"fijo", "cuota", "gestion", "regularizacion", "mantenimiento", "comercializacion", "financiacion",
	}
	negativeEnergyBad = []string{"reactiva", "cargos", "acceso", "potencia", "exceso", "servicio", "alquiler", "mantenimiento"}
)

const (
	tailChars     = 200
	anchoredChars = 240
	inlineChars   = 180
	blockLines    = 6
)

// energyCostStrategies lists the cost extractors in priority order. The
// anchored strategy needs the resolved consumption and is skipped without it.
func energyCostStrategies(consumption string) []Strategy {
	out := []Strategy{
		{Source: "unit_price_sum", Extract: UnitPriceSumCost},
		{Source: "active_energy_periods", Extract: ActiveEnergyPeriodsCost},
		{Source: "consumed_energy_periods", Extract: ConsumedEnergyPeriodsCost},
		{Source: "generic_energy_periods", Extract: GenericEnergyPeriodsCost},
		{Source: "total_kwh_line", Extract: TotalKwhLineCost},
		{Source: "total_kwh_nearby", Extract: TotalKwhNearbyCost},
	}
	if consumption != "" {
		out = append(out, Strategy{Source: "anchored_total_kwh", Extract: AnchoredTotalKwhCost(consumption)})
	}
	return append(out,
		Strategy{Source: "energy_label", Extract: EnergyLabelCost},
		Strategy{Source: "energy_block", Extract: EnergyBlockCost},
		Strategy{Source: "inline_kwh", Extract: InlineKwhCost},
	)
}

// UnitPriceSumCost rebuilds the energy term from "kWh <unit price> <amount> €"
// rows, both on the flattened text and across line breaks. Unit prices must
// sit in the preferred price band, and rows surrounded by access or service
// wording without any energy wording are dropped. Repeated rows count once.
func UnitPriceSumCost(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	seen := make(map[string]bool)
	total := decimal.Zero

	add := func(src string, m []int) {
		unit, ok := localeformat.ParseAmount(src[m[2]:m[3]])
		if !ok || !th.inPreferredBand(unit) {
			return
		}
		amt, _, ok := amount(src[m[4]:m[5]])
		if !ok {
			return
		}
		ctx := ocrtext.Fold(ocrtext.Slice(src, m[0]-80, m[1]+80))
		if !ocrtext.ContainsAny(ctx, unitPricePositive...) && ocrtext.ContainsAny(ctx, unitPriceForbid...) {
			return
		}
		key := amt.StringFixed(2) + "|" + unit.StringFixed(6)
		if seen[key] {
			return
		}
		seen[key] = true
		total = total.Add(amt)
	}

	for _, m := range flatUnitPriceRe.FindAllStringSubmatchIndex(doc.Flat, -1) {
		add(doc.Flat, m)
	}
	for _, m := range multiUnitPriceRe.FindAllStringSubmatchIndex(doc.Text, -1) {
		add(doc.Text, m)
	}
	v := sumString(total, 0)
	return v, v != ""
}

// ActiveEnergyPeriodsCost sums the currency amounts of "Energía activa P<n>"
// lines, looking one line around the label when the amount is not on it.
func ActiveEnergyPeriodsCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	total := decimal.Zero
	for i, folded := range doc.Folded {
		if ocrtext.ContainsAny(folded, activeLineBad...) {
			continue
		}
		if !activeEnergyRe.MatchString(folded) || !activePeriodRe.MatchString(folded) {
			continue
		}
		m := moneyCurrencyRe.FindStringSubmatch(maskDates(doc.Lines[i]))
		if m == nil {
			m = moneyCurrencyRe.FindStringSubmatch(maskDates(doc.Window(i, 1, 1)))
		}
		if m == nil {
			continue
		}
		if d, _, ok := amount(m[1]); ok {
			total = total.Add(d)
		}
	}
	v := sumString(total, 0.01)
	return v, v != ""
}

// ConsumedEnergyPeriodsCost sums "Energía consumida P<n>" amounts.
func ConsumedEnergyPeriodsCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	total := decimal.Zero
	for i, folded := range doc.Folded {
		if !strings.Contains(folded, "energia consumida") || !periodTagRe.MatchString(folded) {
			continue
		}
		if ocrtext.ContainsAny(folded, consumedLineBad...) {
			continue
		}
		if m := moneyCurrencyRe.FindStringSubmatch(maskDates(doc.Lines[i])); m != nil {
			if d, _, ok := amount(m[1]); ok {
				total = total.Add(d)
			}
		}
	}
	v := sumString(total, 0.01)
	return v, v != ""
}

// GenericEnergyPeriodsCost sums the amounts of any energy line tagged with a
// period. On lines that also carry kWh only amounts followed by "€" and not
// glued to the kWh figure count.
func GenericEnergyPeriodsCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	total := decimal.Zero
	for i, folded := range doc.Folded {
		if !strings.Contains(folded, "energia") || !periodTagRe.MatchString(folded) {
			continue
		}
		if ocrtext.ContainsAny(folded, genericLineBad...) {
			continue
		}
		line := maskDates(doc.Lines[i])
		var raw string
		if strings.Contains(folded, "kwh") {
			m := moneyEuroSignRe.FindStringSubmatchIndex(line)
			if m == nil || nearKwh(line, m[2], m[3], 8) {
				continue
			}
			raw = line[m[2]:m[3]]
		} else {
			m := moneyCurrencyRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			raw = m[1]
		}
		if d, _, ok := amount(raw); ok {
			total = total.Add(d)
		}
	}
	v := sumString(total, 0.01)
	return v, v != ""
}

// TotalKwhLineCost reads the amount printed after a "Total <N> kWh" row.
func TotalKwhLineCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	for _, m := range totalKwhRe.FindAllStringIndex(doc.Text, -1) {
		if v, ok := amountInTail(doc.Text, m[1], tailChars, true); ok {
			return v, true
		}
	}
	return "", false
}

// TotalKwhNearbyCost is TotalKwhLineCost on the flattened text, accepting
// currency-marked amounts only.
func TotalKwhNearbyCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	for _, m := range totalKwhFlatRe.FindAllStringIndex(doc.Flat, -1) {
		if v, ok := amountInTail(doc.Flat, m[1], tailChars, false); ok {
			return v, true
		}
	}
	return "", false
}

// AnchoredTotalKwhCost looks for "Total <consumption> kWh", written in any of
// the usual groupings, and reads the amount that follows it.
func AnchoredTotalKwhCost(consumption string) ExtractFunc {
	return func(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
		for _, v := range kwhVariants(consumption) {
			re, err := regexp.Compile(`(?i)\btotal\s+` + regexp.QuoteMeta(v) + `\s*kwh\b`)
			if err != nil {
				continue
			}
			loc := re.FindStringIndex(doc.Flat)
			if loc == nil {
				continue
			}
			if amt, ok := amountInTail(doc.Flat, loc[1], anchoredChars, true); ok {
				return amt, true
			}
		}
		return "", false
	}
}

// EnergyLabelCost reads the amount next to an energy term label.
func EnergyLabelCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	return AmountAfterLabels(doc, energyLabels...)
}

// EnergyBlockCost handles layouts that print "EUR" or nothing instead of
// "€": the largest amount in a seven-line window after an energy label,
// ignoring total lines, amounts next to kWh and anything that is not above
// the minimum energy cost.
func EnergyBlockCost(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	var (
		best    decimal.Decimal
		bestRaw string
	)
	consider := func(raw string) {
		d, kept, ok := amount(raw)
		if ok && d.GreaterThan(th.minEnergyCost()) && (bestRaw == "" || d.GreaterThan(best)) {
			best, bestRaw = d, kept
		}
	}

	for i, folded := range doc.Folded {
		if !ocrtext.ContainsAny(folded, blockLabels...) || ocrtext.ContainsAny(folded, blockForbid...) {
			continue
		}
		window := maskDates(blockWindow(doc, i))
		for _, m := range moneyCurrencyRe.FindAllStringSubmatch(window, -1) {
			consider(m[1])
		}
		for _, m := range moneyRe.FindAllStringSubmatchIndex(window, -1) {
			if nearKwh(window, m[0], m[1], 6) {
				continue
			}
			consider(window[m[2]:m[3]])
		}
	}
	return bestRaw, bestRaw != ""
}

// blockWindow joins the lines of the energy block starting at i, leaving out
// the ones that carry a total.
func blockWindow(doc *ocrtext.Document, i int) string {
	var kept []string
	for j := i; j < len(doc.Lines) && j <= i+blockLines; j++ {
		if j > i && totalWordRe.MatchString(doc.Folded[j]) {
			continue
		}
		kept = append(kept, doc.Lines[j])
	}
	return strings.Join(kept, " ")
}

// InlineKwhCost anchors on "kWh <unit price>" and reads the amount in the
// following characters.
func InlineKwhCost(doc *ocrtext.Document, th *Thresholds) (string, bool) {
	for _, m := range inlineKwhRe.FindAllStringIndex(doc.Flat, -1) {
		seg := maskDates(ocrtext.Slice(doc.Flat, m[1], m[1]+inlineChars))
		if c := moneyCurrencyRe.FindStringSubmatch(seg); c != nil {
			if _, kept, ok := amount(c[1]); ok {
				return kept, true
			}
		}
		if c := moneyRe.FindStringSubmatch(seg); c != nil {
			if d, kept, ok := amount(c[1]); ok && d.GreaterThanOrEqual(th.minEnergyCost()) {
				return kept, true
			}
		}
	}
	return "", false
}

// NegativeEnergyCost finds an explicitly negative amount on an energy line of
// a credit document.
func NegativeEnergyCost(doc *ocrtext.Document, _ *Thresholds) (string, bool) {
	if !doc.IsCredit() {
		return "", false
	}
	for i, folded := range doc.Folded {
		if !strings.Contains(folded, "energia") || ocrtext.ContainsAny(folded, negativeEnergyBad...) {
			continue
		}
		if m := negativeMoneyRe.FindStringSubmatch(maskDates(doc.Lines[i])); m != nil {
			if _, kept, ok := amount(m[1]); ok {
				return kept, true
			}
		}
	}
	return "", false
}

// amountInTail reads the first currency-marked amount in the limit bytes of
// s after from, falling back to the first two-decimal amount when
// allowBare is set.
func amountInTail(s string, from, limit int, allowBare bool) (string, bool) {
	tail := maskDates(ocrtext.Slice(s, from, from+limit))
	if m := moneyCurrencyRe.FindStringSubmatch(tail); m != nil {
		if _, kept, ok := amount(m[1]); ok {
			return kept, true
		}
	}
	if !allowBare {
		return "", false
	}
	if m := moneyRe.FindStringSubmatch(tail); m != nil {
		if _, kept, ok := amount(m[1]); ok {
			return kept, true
		}
	}
	return "", false
}

// kwhVariants spells a consumption figure the ways invoices print it.
func kwhVariants(value string) []string {
	d, ok := localeformat.ParseCanonical(value)
	if !ok {
		return nil
	}
	d = d.Abs()
	intPart := d.Truncate(0).String()
	if d.Equal(d.Truncate(0)) {
		return uniqueStrings(intPart, groupThousands(intPart, "."), groupThousands(intPart, " "))
	}
	frac := strings.TrimPrefix(d.StringFixed(2), intPart+".")
	return uniqueStrings(
		intPart+","+frac,
		intPart+"."+frac,
		groupThousands(intPart, ".")+","+frac,
		groupThousands(intPart, " ")+","+frac,
		groupThousands(intPart, ",")+"."+frac,
	)
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func uniqueStrings(values ...string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
