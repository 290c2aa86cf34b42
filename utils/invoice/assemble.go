package invoice

import "github.com/Aashish23092/electricity-invoice-ocr/dto"

// Assemble collapses a Resolution into the canonical record. Unresolved
// fields become "".
func Assemble(res Resolution) dto.InvoiceRecord {
	return dto.InvoiceRecord{
		PeriodStart:        res.PeriodStart.String(),
		PeriodEnd:          res.PeriodEnd.String(),
		SupplyPointCode:    res.SupplyPointCode.String(),
		ConsumptionKwh:     res.ConsumptionKwh.String(),
		EnergyCostEur:      res.EnergyCostEur.String(),
		TotalAmountEur:     res.TotalAmountEur.String(),
		PowerExcessCostEur: res.PowerExcessCostEur.String(),
	}
}
