package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantType CommandType
		wantArgs []string
	}{
		{"/batch", CommandNewBatch, nil},
		{"  /SALE 1a2b 250 90 ", CommandSale, []string{"1a2b", "250", "90"}},
		{"set 1a2b purchaseCost 100", CommandSet, []string{"1a2b", "purchasecost", "100"}},
		{"/month rent 20", CommandMonth, []string{"rent", "20"}},
		{"/unsale a b", CommandRemoveSale, []string{"a", "b"}},
		{"/drop a", CommandDrop, []string{"a"}},
		{"/price a 40%", CommandPrice, []string{"a", "40%"}},
		{"/profit", CommandProfit, nil},
		{"/eggs 12", CommandUnknown, []string{"12"}},
		{"   ", CommandUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd := ParseCommand(tt.in)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.in, cmd.Raw)
		})
	}
}

func TestIsSlashCommand(t *testing.T) {
	assert.True(t, IsSlashCommand(" /profit"))
	assert.False(t, IsSlashCommand("profit"))
}

func TestNewBatch(t *testing.T) {
	b := NewBatch("b1", time.Date(2026, 2, 3, 23, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-02-03", b.Date)
	assert.NotNil(t, b.Sales)
	assert.Empty(t, b.Sales)
	assert.Zero(t, b.PurchaseCost+b.OutputKg+b.PricePerKg+b.Discount)
}

func TestClone(t *testing.T) {
	b := Batch{ID: "b", Sales: []Sale{{ID: "s", TotalPrice: 1}}}

	c := b.Clone()
	c.Sales[0].TotalPrice = 2

	assert.Equal(t, 1.0, b.Sales[0].TotalPrice)
}

func TestMonthlyCostsTotal(t *testing.T) {
	assert.Equal(t, 30.0, MonthlyCosts{Rent: 20, Ads: 5, Other: 5}.Total())
}
