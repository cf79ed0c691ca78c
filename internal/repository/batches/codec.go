package batches

import (
	"encoding/json"
	"time"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
)

// storedAmount reads an amount saved either as a JSON number or as the raw
// text typed into the form. Text that is not a number reads as zero.
type storedAmount float64

func (a *storedAmount) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = 0
	switch t := v.(type) {
	case float64:
		*a = storedAmount(t)
	case string:
		if f, err := models.ParseAmount(t); err == nil {
			*a = storedAmount(f)
		}
	}
	return nil
}

// storedText reads a value as text whatever JSON scalar it was saved as.
type storedText string

func (s *storedText) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = storedText(t)
	case nil:
		*s = ""
	default:
		*s = storedText(data)
	}
	return nil
}

type storedSale struct {
	ID          storedText   `json:"id"`
	GramsAmount storedAmount `json:"gramsAmount"`
	TotalPrice  storedAmount `json:"totalPrice"`
	DateTime    storedText   `json:"dateTime"`
}

type storedBatch struct {
	ID           storedText   `json:"id"`
	Date         storedText   `json:"date"`
	PurchaseCost storedAmount `json:"purchaseCost"`
	OutputKg     storedAmount `json:"outputKg"`
	PricePerKg   storedAmount `json:"pricePerKg"`
	Discount     storedAmount `json:"discount"`
	Electricity  storedAmount `json:"electricity"`
	Water        storedAmount `json:"water"`
	Fuel         storedAmount `json:"fuel"`
	Packaging    storedAmount `json:"packaging"`
	Sales        []storedSale `json:"sales"`
}

// decodeBatch reads one stored batch. An unreadable sale timestamp is left zero.
func decodeBatch(data []byte) (models.Batch, error) {
	var raw storedBatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Batch{}, err
	}

	b := models.Batch{
		ID:           string(raw.ID),
		Date:         string(raw.Date),
		PurchaseCost: float64(raw.PurchaseCost),
		OutputKg:     float64(raw.OutputKg),
		PricePerKg:   float64(raw.PricePerKg),
		Discount:     float64(raw.Discount),
		Electricity:  float64(raw.Electricity),
		Water:        float64(raw.Water),
		Fuel:         float64(raw.Fuel),
		Packaging:    float64(raw.Packaging),
		Sales:        make([]models.Sale, 0, len(raw.Sales)),
	}
	for _, s := range raw.Sales {
		sale := models.Sale{
			ID:          string(s.ID),
			GramsAmount: float64(s.GramsAmount),
			TotalPrice:  float64(s.TotalPrice),
		}
		if s.DateTime != "" {
			if t, err := time.Parse(time.RFC3339Nano, string(s.DateTime)); err == nil {
				sale.DateTime = t
			}
		}
		b.Sales = append(b.Sales, sale)
	}
	return b, nil
}
