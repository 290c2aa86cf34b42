package dto

// Canonical field names of an InvoiceRecord.
const (
	FieldPeriodStart        = "periodStart"
	FieldPeriodEnd          = "periodEnd"
	FieldSupplyPointCode    = "supplyPointCode"
	FieldConsumptionKwh     = "consumptionKwh"
	FieldEnergyCostEur      = "energyCostEur"
	FieldTotalAmountEur     = "totalAmountEur"
	FieldPowerExcessCostEur = "powerExcessCostEur"
)

// FieldNames lists the seven canonical fields in output order.
var FieldNames = []string{
	FieldPeriodStart,
	FieldPeriodEnd,
	FieldSupplyPointCode,
	FieldConsumptionKwh,
	FieldEnergyCostEur,
	FieldTotalAmountEur,
	FieldPowerExcessCostEur,
}

// InvoiceRecord is the extraction result of one electricity invoice. An
// empty string means the field could not be resolved.
type InvoiceRecord struct {
	PeriodStart        string `json:"periodStart"`
	PeriodEnd          string `json:"periodEnd"`
	SupplyPointCode    string `json:"supplyPointCode"`
	ConsumptionKwh     string `json:"consumptionKwh"`
	EnergyCostEur      string `json:"energyCostEur"`
	TotalAmountEur     string `json:"totalAmountEur"`
	PowerExcessCostEur string `json:"powerExcessCostEur"`
}

// Get returns the value of a canonical field, or "" for unknown names.
func (r InvoiceRecord) Get(field string) string {
	switch field {
	case FieldPeriodStart:
		return r.PeriodStart
	case FieldPeriodEnd:
		return r.PeriodEnd
	case FieldSupplyPointCode:
		return r.SupplyPointCode
	case FieldConsumptionKwh:
		return r.ConsumptionKwh
	case FieldEnergyCostEur:
		return r.EnergyCostEur
	case FieldTotalAmountEur:
		return r.TotalAmountEur
	case FieldPowerExcessCostEur:
		return r.PowerExcessCostEur
	}
	return ""
}

// ToMap returns the record as a map holding exactly the seven canonical keys.
func (r InvoiceRecord) ToMap() map[string]string {
	m := make(map[string]string, len(FieldNames))
	for _, f := range FieldNames {
		m[f] = r.Get(f)
	}
	return m
}

// fieldAliases maps the Spanish label keys used by annotated datasets and
// first-pass models onto canonical field names.
var fieldAliases = map[string]string{
	"fechaDesde":     FieldPeriodStart,
	"fechaHasta":     FieldPeriodEnd,
	"cups":           FieldSupplyPointCode,
	"consumo":        FieldConsumptionKwh,
	"euroConsumo":    FieldEnergyCostEur,
	"total":          FieldTotalAmountEur,
	"excesoPotencia": FieldPowerExcessCostEur,
}

// CanonicalField resolves a canonical or aliased key. ok is false for
// keys outside the field set.
func CanonicalField(key string) (string, bool) {
	for _, f := range FieldNames {
		if f == key {
			return f, true
		}
	}
	f, ok := fieldAliases[key]
	return f, ok
}

// RecordFromMap builds a record from canonical or aliased keys, ignoring
// anything else.
func RecordFromMap(m map[string]string) InvoiceRecord {
	var r InvoiceRecord
	for k, v := range m {
		field, ok := CanonicalField(k)
		if !ok {
			continue
		}
		switch field {
		case FieldPeriodStart:
			r.PeriodStart = v
		case FieldPeriodEnd:
			r.PeriodEnd = v
		case FieldSupplyPointCode:
			r.SupplyPointCode = v
		case FieldConsumptionKwh:
			r.ConsumptionKwh = v
		case FieldEnergyCostEur:
			r.EnergyCostEur = v
		case FieldTotalAmountEur:
			r.TotalAmountEur = v
		case FieldPowerExcessCostEur:
			r.PowerExcessCostEur = v
		}
	}
	return r
}

// CandidateTrace records one candidate value considered during extraction.
type CandidateTrace struct {
	Field   string `json:"field"`
	Source  string `json:"source"`
	Value   string `json:"value"`
	Verdict string `json:"verdict"`
}
