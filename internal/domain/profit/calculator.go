// Package profit derives revenue, profit and margin figures from batch records.
// Every function here is pure: no I/O, no clock, no mutation of its inputs.
package profit

import "github.com/mamadbah2/fishprofit/internal/domain/models"

// Metrics are the financial figures derived from a single batch.
type Metrics struct {
	Revenue       float64 `json:"revenue"`
	VariableCosts float64 `json:"variableCosts"`
	Profit        float64 `json:"profit"`
	Margin        float64 `json:"margin"`
	SoldGrams     float64 `json:"soldGrams"`

	costBase float64
	outputKg float64
}

// Calculate computes the metrics of a batch. Revenue comes from the recorded
// sales when there are any, otherwise from output, price and discount.
func Calculate(b models.Batch) Metrics {
	var revenue, soldGrams float64
	if len(b.Sales) > 0 {
		for _, s := range b.Sales {
			revenue += s.TotalPrice
			soldGrams += s.GramsAmount
		}
	} else {
		revenue = b.OutputKg * b.PricePerKg * (1 - b.Discount)
	}

	variable := b.Electricity + b.Water + b.Fuel + b.Packaging
	profit := revenue - b.PurchaseCost - variable

	var margin float64
	if revenue > 0 {
		margin = profit / revenue
	}

	return Metrics{
		Revenue:       revenue,
		VariableCosts: variable,
		Profit:        profit,
		Margin:        margin,
		SoldGrams:     soldGrams,
		costBase:      b.PurchaseCost + variable,
		outputKg:      b.OutputKg,
	}
}

// MinPriceForMargin returns the price per kg needed to reach targetMargin on
// the whole output. It is 0 when there is no output or the target is 100% or more.
func (m Metrics) MinPriceForMargin(targetMargin float64) float64 {
	if m.outputKg <= 0 || targetMargin >= 1 {
		return 0
	}
	return m.costBase / (m.outputKg * (1 - targetMargin))
}

// Summary aggregates all batches against the month's fixed costs.
type Summary struct {
	Batches      int                 `json:"batches"`
	TotalRevenue float64             `json:"totalRevenue"`
	TotalProfit  float64             `json:"totalProfit"`
	MonthlyCosts models.MonthlyCosts `json:"monthlyCosts"`
	NetProfit    float64             `json:"netProfit"`
}

// Summarize sums batch profits and subtracts the monthly costs once.
func Summarize(batches []models.Batch, costs models.MonthlyCosts) Summary {
	sum := Summary{Batches: len(batches), MonthlyCosts: costs}
	for _, b := range batches {
		m := Calculate(b)
		sum.TotalRevenue += m.Revenue
		sum.TotalProfit += m.Profit
	}
	sum.NetProfit = sum.TotalProfit - costs.Total()
	return sum
}
