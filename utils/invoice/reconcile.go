package invoice

import (
	"strings"

	"github.com/Aashish23092/electricity-invoice-ocr/dto"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/localeformat"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/ocrtext"
)

// Trace verdicts.
const (
	VerdictCandidate = "candidate"
	VerdictSelected  = "selected"
	VerdictRejected  = "rejected"
	VerdictFirstPass = "first_pass"
	VerdictCleared   = "cleared"
	VerdictSigned    = "sign_propagated"
)

// Resolution holds the reconciled value of every field before assembly.
type Resolution struct {
	PeriodStart        Value
	PeriodEnd          Value
	SupplyPointCode    Value
	ConsumptionKwh     Value
	EnergyCostEur      Value
	TotalAmountEur     Value
	PowerExcessCostEur Value
}

// Engine extracts invoice records from OCR text. It holds no per-document
// state and is safe for concurrent use.
type Engine struct {
	th Thresholds
}

// NewEngine builds an engine. A nil th selects DefaultThresholds.
func NewEngine(th *Thresholds) *Engine {
	if th == nil {
		return &Engine{th: DefaultThresholds()}
	}
	return &Engine{th: *th}
}

// Thresholds returns a copy of the limits in use.
func (e *Engine) Thresholds() Thresholds { return e.th }

// Extract reconciles text with a first-pass guess, which may be empty.
func (e *Engine) Extract(text string, firstPass dto.InvoiceRecord) dto.InvoiceRecord {
	rec, _ := e.ExtractWithTrace(text, firstPass)
	return rec
}

// ExtractWithTrace is Extract that also reports every candidate considered.
func (e *Engine) ExtractWithTrace(text string, firstPass dto.InvoiceRecord) (dto.InvoiceRecord, []dto.CandidateTrace) {
	res, trace := e.Reconcile(ocrtext.NewDocument(text), firstPass)
	return Assemble(res), trace
}

type tracer struct {
	entries []dto.CandidateTrace
}

func (t *tracer) add(field, source, value, verdict string) {
	t.entries = append(t.entries, dto.CandidateTrace{Field: field, Source: source, Value: value, Verdict: verdict})
}

// Reconcile resolves every field of doc. Fields are decided in dependency
// order: period and supply point, total, consumption, energy cost, power
// excess. Sign propagation and the payable-energy gate run last.
func (e *Engine) Reconcile(doc *ocrtext.Document, firstPass dto.InvoiceRecord) (Resolution, []dto.CandidateTrace) {
	th := &e.th
	t := &tracer{}
	var res Resolution

	res.PeriodStart, res.PeriodEnd = e.resolvePeriod(doc, firstPass, t)
	res.SupplyPointCode = e.resolveSupplyPoint(doc, firstPass, t)
	res.TotalAmountEur = e.resolveTotal(doc, firstPass, t)
	res.ConsumptionKwh = e.resolveConsumption(doc, firstPass, t)
	res.EnergyCostEur = e.resolveEnergyCost(doc, firstPass, res.TotalAmountEur, res.ConsumptionKwh, t)

	if v, ok := PowerExcessCost(doc, th); ok {
		res.PowerExcessCostEur = Resolved(v)
		t.add(dto.FieldPowerExcessCostEur, "power_excess", v, VerdictSelected)
	}

	res.ConsumptionKwh = e.propagateSign(doc, res, t)

	if !res.EnergyCostEur.IsResolved() && res.ConsumptionKwh.IsResolved() && !HasPayableEnergy(doc) {
		t.add(dto.FieldConsumptionKwh, "payable_energy_gate", res.ConsumptionKwh.String(), VerdictCleared)
		res.ConsumptionKwh = Value{}
	}
	return res, t.entries
}

func (e *Engine) resolvePeriod(doc *ocrtext.Document, fp dto.InvoiceRecord, t *tracer) (Value, Value) {
	start := Resolved(localeformat.NormalizeDate(fp.PeriodStart))
	end := Resolved(localeformat.NormalizeDate(fp.PeriodEnd))
	if start.IsResolved() {
		t.add(dto.FieldPeriodStart, "first_pass", start.String(), VerdictFirstPass)
	}
	if end.IsResolved() {
		t.add(dto.FieldPeriodEnd, "first_pass", end.String(), VerdictFirstPass)
	}
	if s, en, ok := BillingPeriod(doc, &e.th); ok {
		start, end = Resolved(s), Resolved(en)
		t.add(dto.FieldPeriodStart, "billing_period", s, VerdictSelected)
		t.add(dto.FieldPeriodEnd, "billing_period", en, VerdictSelected)
	}
	return start, end
}

func (e *Engine) resolveSupplyPoint(doc *ocrtext.Document, fp dto.InvoiceRecord, t *tracer) Value {
	code := CleanSupplyPointCode(fp.SupplyPointCode)
	if IsSupplyPointCode(code) {
		t.add(dto.FieldSupplyPointCode, "first_pass", code, VerdictSelected)
		return Resolved(code)
	}
	if code != "" {
		t.add(dto.FieldSupplyPointCode, "first_pass", code, VerdictRejected)
	}
	if v, ok := SupplyPointCode(doc, &e.th); ok {
		t.add(dto.FieldSupplyPointCode, "document", v, VerdictSelected)
		return Resolved(v)
	}
	return Value{}
}

func (e *Engine) resolveTotal(doc *ocrtext.Document, fp dto.InvoiceRecord, t *tracer) Value {
	if v, ok := TotalInvoiceStrict(doc, &e.th); ok {
		t.add(dto.FieldTotalAmountEur, "total_factura", v, VerdictSelected)
		return Resolved(v)
	}
	if v, ok := TotalByLabel(doc, &e.th); ok {
		t.add(dto.FieldTotalAmountEur, "total_label", v, VerdictSelected)
		return Resolved(v)
	}
	v := localeformat.KeepDecimals(fp.TotalAmountEur)
	if v != "" {
		t.add(dto.FieldTotalAmountEur, "first_pass", v, VerdictFirstPass)
	}
	return Resolved(v)
}

func (e *Engine) resolveConsumption(doc *ocrtext.Document, fp dto.InvoiceRecord, t *tracer) Value {
	th := &e.th
	if v, ok := TableTotalKwh(doc, th); ok {
		t.add(dto.FieldConsumptionKwh, "table_total", v, VerdictSelected)
		return Resolved(v)
	}

	pool := collect(dto.FieldConsumptionKwh, doc, th, consumptionStrategies)
	firstPassCost := parseNull(localeformat.KeepDecimals(fp.EnergyCostEur))
	best, ok := chooseConsumption(pool, firstPassCost, th)
	for _, c := range pool {
		verdict := VerdictCandidate
		if ok && c.Source == best.Source {
			verdict = VerdictSelected
		}
		t.add(c.Field, c.Source, c.Value, verdict)
	}
	if ok {
		return Resolved(best.Value)
	}

	if v, ok := firstPassConsumption(fp.ConsumptionKwh, th); ok {
		t.add(dto.FieldConsumptionKwh, "first_pass", v, VerdictFirstPass)
		return Resolved(v)
	}
	return Value{}
}

func (e *Engine) resolveEnergyCost(doc *ocrtext.Document, fp dto.InvoiceRecord, total, consumption Value, t *tracer) Value {
	th := &e.th
	totalNum := total.Number()
	kwhNum := consumption.Number()

	if doc.IsCredit() {
		if v, ok := NegativeEnergyCost(doc, th); ok {
			if IsPlausibleCost(v, totalNum, doc, th) {
				t.add(dto.FieldEnergyCostEur, "negative_energy", v, VerdictSelected)
				return Resolved(v)
			}
			t.add(dto.FieldEnergyCostEur, "negative_energy", v, VerdictRejected)
		}
	}

	cands := collect(dto.FieldEnergyCostEur, doc, th, energyCostStrategies(consumption.String()))
	if v := localeformat.KeepDecimals(fp.EnergyCostEur); v != "" {
		cands = append(cands, Candidate{Field: dto.FieldEnergyCostEur, Value: v, Source: "first_pass"})
	}

	for _, c := range cands {
		if IsPlausibleCost(c.Value, totalNum, doc, th) && IsPlausiblePricePerUnit(kwhNum, parseNull(c.Value), th) {
			t.add(c.Field, c.Source, c.Value, VerdictSelected)
			return Resolved(c.Value)
		}
		t.add(c.Field, c.Source, c.Value, VerdictRejected)
	}

	// A negative invoice whose energy lines print positive amounts: the first
	// price-consistent candidate is taken with the sign flipped.
	if totalNum.Valid && totalNum.Decimal.IsNegative() {
		for _, c := range cands {
			if c.Source == "first_pass" || !IsPlausiblePricePerUnit(kwhNum, parseNull(c.Value), th) {
				continue
			}
			v := "-" + strings.TrimLeft(c.Value, "-+")
			t.add(c.Field, "neg_fallback", v, VerdictSelected)
			return Resolved(v)
		}
	}
	return Value{}
}

// propagateSign makes consumption negative when the energy cost is negative,
// or when a credit document has a negative total and no energy cost.
func (e *Engine) propagateSign(doc *ocrtext.Document, res Resolution, t *tracer) Value {
	kwh, ok := res.ConsumptionKwh.Get()
	if !ok || strings.HasPrefix(kwh, "-") {
		return res.ConsumptionKwh
	}

	cost := res.EnergyCostEur.Number()
	total := res.TotalAmountEur.Number()
	negate := false
	switch {
	case cost.Valid:
		negate = cost.Decimal.IsNegative()
	case total.Valid && total.Decimal.IsNegative():
		negate = doc.IsCredit()
	}
	if !negate {
		return res.ConsumptionKwh
	}
	v := "-" + strings.TrimPrefix(kwh, "+")
	t.add(dto.FieldConsumptionKwh, "sign", v, VerdictSigned)
	return Resolved(v)
}
