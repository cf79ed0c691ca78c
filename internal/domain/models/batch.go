package models

import "time"

// DateLayout is the calendar format used for batch dates.
const DateLayout = "2006-01-02"

// Batch is one production run with its purchase cost, yield, pricing and
// per-batch consumable expenses.
type Batch struct {
	ID           string  `json:"id" bson:"id"`
	Date         string  `json:"date" bson:"date"`
	PurchaseCost float64 `json:"purchaseCost" bson:"purchase_cost"`
	OutputKg     float64 `json:"outputKg" bson:"output_kg"`
	PricePerKg   float64 `json:"pricePerKg" bson:"price_per_kg"`
	Discount     float64 `json:"discount" bson:"discount"` // fraction 0-1
	Electricity  float64 `json:"electricity" bson:"electricity"`
	Water        float64 `json:"water" bson:"water"`
	Fuel         float64 `json:"fuel" bson:"fuel"`
	Packaging    float64 `json:"packaging" bson:"packaging"`
	Sales        []Sale  `json:"sales" bson:"sales"`
}

// Sale is a single recorded transaction against a batch's output.
type Sale struct {
	ID          string    `json:"id" bson:"id"`
	GramsAmount float64   `json:"gramsAmount" bson:"grams_amount"`
	TotalPrice  float64   `json:"totalPrice" bson:"total_price"`
	DateTime    time.Time `json:"dateTime" bson:"date_time"`
}

// MonthlyCosts are fixed expenses applied once when aggregating all batches.
type MonthlyCosts struct {
	Rent  float64 `json:"rent" bson:"rent"`
	Ads   float64 `json:"ads" bson:"ads"`
	Other float64 `json:"other" bson:"other"`
}

// Total sums every monthly cost.
func (m MonthlyCosts) Total() float64 {
	return m.Rent + m.Ads + m.Other
}

// NewBatch returns a zero-valued batch dated on the provided day.
func NewBatch(id string, now time.Time) Batch {
	return Batch{
		ID:    id,
		Date:  now.Format(DateLayout),
		Sales: []Sale{},
	}
}

// Clone returns a deep copy so callers cannot mutate the sales slice of the original.
func (b Batch) Clone() Batch {
	out := b
	out.Sales = make([]Sale, len(b.Sales))
	copy(out.Sales, b.Sales)
	return out
}
