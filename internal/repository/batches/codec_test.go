package batches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
)

func TestDecodeBatch_TextAmounts(t *testing.T) {
	b, err := decodeBatch([]byte(`{"id":7,"date":"2026-01-02","purchaseCost":"80","outputKg":4,
		"pricePerKg":"","discount":"0,2","electricity":"0","water":"","fuel":null,"packaging":true}`))
	require.NoError(t, err)

	assert.Equal(t, models.Batch{
		ID:           "7",
		Date:         "2026-01-02",
		PurchaseCost: 80,
		OutputKg:     4,
		Discount:     0.2,
		Sales:        []models.Sale{},
	}, b)
}

func TestDecodeBatch_BadSaleTimestampIsZero(t *testing.T) {
	b, err := decodeBatch([]byte(`{"id":"b","sales":[{"id":"s","gramsAmount":"250","totalPrice":9,"dateTime":"yesterday"}]}`))
	require.NoError(t, err)
	require.Len(t, b.Sales, 1)
	assert.Equal(t, 250.0, b.Sales[0].GramsAmount)
	assert.Equal(t, 9.0, b.Sales[0].TotalPrice)
	assert.True(t, b.Sales[0].DateTime.IsZero())
}

func TestDecodeBatch_WrongShapes(t *testing.T) {
	_, err := decodeBatch([]byte(`{"id":"x","sales":"oops"}`))
	assert.Error(t, err)
	_, err = decodeBatch([]byte(`[1,2]`))
	assert.Error(t, err)
}
