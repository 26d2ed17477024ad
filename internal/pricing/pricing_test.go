package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findLine(t *testing.T, summary Summary, key LineItemKey) LineItem {
	t.Helper()
	for _, item := range summary.LineItems {
		if item.Key == key {
			return item
		}
	}
	t.Fatalf("line %q not found", key)
	return LineItem{}
}

func TestBedroomPrice(t *testing.T) {
	rates := DefaultRateCard()

	assert.Equal(t, int64(1000), rates.BedroomPrice(1))
	assert.Equal(t, int64(1000), rates.BedroomPrice(2))
	assert.Equal(t, int64(1500), rates.BedroomPrice(3))
	assert.Equal(t, int64(2000), rates.BedroomPrice(4))
	assert.Equal(t, int64(3000), rates.BedroomPrice(6))
	assert.Equal(t, 2*rates.BedroomExtraBed, rates.BedroomPrice(6)-rates.BedroomPrice(4))

	for beds := 3; beds <= 6; beds++ {
		assert.Equal(t, rates.BedroomExtraBed, rates.BedroomPrice(beds)-rates.BedroomPrice(beds-1))
	}
}

func TestNormalizeQty(t *testing.T) {
	cases := []struct {
		name  string
		value float64
		want  int64
	}{
		{name: "zero", value: 0, want: 0},
		{name: "integer", value: 3, want: 3},
		{name: "fraction truncated", value: 1.9, want: 1},
		{name: "negative", value: -5, want: 0},
		{name: "negative fraction", value: -0.5, want: 0},
		{name: "nan", value: math.NaN(), want: 0},
		{name: "positive infinity", value: math.Inf(1), want: 0},
		{name: "negative infinity", value: math.Inf(-1), want: 0},
		{name: "at ceiling", value: MaxQty, want: MaxQty},
		{name: "above ceiling", value: 1e12, want: MaxQty},
		{name: "beyond int64", value: 1e19, want: MaxQty},
		{name: "max float", value: math.MaxFloat64, want: MaxQty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeQty(tc.value))
		})
	}
}

func TestNormalizeBeds(t *testing.T) {
	rates := DefaultRateCard()
	cases := []struct {
		value float64
		want  int
	}{
		{value: 0, want: 1},
		{value: -3, want: 1},
		{value: 0.4, want: 1},
		{value: 2.7, want: 2},
		{value: 6, want: 6},
		{value: 9, want: 6},
		{value: math.NaN(), want: 1},
		{value: math.Inf(1), want: 6},
		{value: math.Inf(-1), want: 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rates.NormalizeBeds(tc.value), "beds=%v", tc.value)
	}
}

func TestCalculate_FullScenario(t *testing.T) {
	summary := DefaultRateCard().Calculate(RoomsInput{
		KitchenQty:         1,
		DiningRoomQty:      1,
		LivingRoomQty:      1,
		BathroomsQty:       2,
		MasterBathroomsQty: 1,
		Bedrooms:           []Bedroom{{Beds: 1}, {Beds: 4}},
	}, 0)

	assert.Equal(t, 2, summary.BedroomCount)
	assert.Equal(t, int64(3000), summary.BedroomsTotal)
	assert.Equal(t, int64(9750), summary.Subtotal)
	assert.Equal(t, int64(0), summary.Tax)
	assert.Equal(t, int64(9750), summary.Total)

	require.Len(t, summary.LineItems, 6)
	keys := make([]LineItemKey, 0, len(summary.LineItems))
	for _, item := range summary.LineItems {
		keys = append(keys, item.Key)
	}
	assert.Equal(t, []LineItemKey{KeyKitchen, KeyDiningRoom, KeyLivingRoom, KeyBedrooms, KeyBathrooms, KeyMasterBathrooms}, keys)

	bedrooms := findLine(t, summary, KeyBedrooms)
	assert.Equal(t, "Bedrooms (beds: 1,4)", bedrooms.Description)
	assert.Equal(t, int64(2), bedrooms.Qty)
	assert.Equal(t, int64(0), bedrooms.UnitPrice)
	assert.Equal(t, int64(3000), bedrooms.TotalPrice)
	assert.Equal(t, []int{1, 4}, bedrooms.Metadata["beds"])

	bathrooms := findLine(t, summary, KeyBathrooms)
	assert.Equal(t, int64(1000), bathrooms.TotalPrice)
}

func TestCalculate_ClampsInvalidInput(t *testing.T) {
	summary := DefaultRateCard().Calculate(RoomsInput{
		KitchenQty:    -5,
		DiningRoomQty: -1,
		BathroomsQty:  -3,
		Bedrooms:      []Bedroom{{Beds: 0}, {Beds: 9}},
	}, 0)

	assert.Equal(t, int64(0), findLine(t, summary, KeyKitchen).Qty)
	assert.Equal(t, int64(0), findLine(t, summary, KeyDiningRoom).Qty)
	assert.Equal(t, int64(0), findLine(t, summary, KeyBathrooms).Qty)
	assert.Equal(t, "Bedrooms (beds: 1,6)", findLine(t, summary, KeyBedrooms).Description)
	assert.Equal(t, int64(4000), summary.Total)
}

func TestCalculate_EmptyInput(t *testing.T) {
	summary := DefaultRateCard().Calculate(RoomsInput{}, 0)

	assert.Equal(t, int64(0), summary.Subtotal)
	assert.Equal(t, int64(0), summary.Total)
	assert.Equal(t, 0, summary.BedroomCount)

	bedrooms := findLine(t, summary, KeyBedrooms)
	assert.Equal(t, "Bedrooms (beds: none)", bedrooms.Description)
	assert.Equal(t, []int{}, bedrooms.Metadata["beds"])
}

func TestCalculate_TotalsInvariant(t *testing.T) {
	rates := DefaultRateCard()
	inputs := []RoomsInput{
		{},
		{KitchenQty: 2, LivingRoomQty: 3},
		{KitchenQty: 1.9, BathroomsQty: 4, Bedrooms: []Bedroom{{Beds: 2}, {Beds: 3}, {Beds: 5}}},
		{MasterBathroomsQty: 7, DiningRoomQty: math.NaN(), Bedrooms: []Bedroom{{Beds: 6}}},
	}
	for _, tax := range []int64{0, 250} {
		for _, input := range inputs {
			summary := rates.Calculate(input, tax)

			var sum int64
			for _, item := range summary.LineItems {
				sum += item.TotalPrice
				if item.Key != KeyBedrooms {
					assert.Equal(t, item.Qty*item.UnitPrice, item.TotalPrice)
				}
			}
			assert.Equal(t, sum, summary.Subtotal)
			assert.Equal(t, summary.Subtotal+tax, summary.Total)
			assert.Equal(t, tax, summary.Tax)
		}
	}
}

func TestCalculate_FractionalQuantitiesTruncate(t *testing.T) {
	summary := DefaultRateCard().Calculate(RoomsInput{KitchenQty: 1.9}, 0)

	kitchen := findLine(t, summary, KeyKitchen)
	assert.Equal(t, int64(1), kitchen.Qty)
	assert.Equal(t, int64(1000), kitchen.TotalPrice)
}

func TestCalculate_CustomRateCard(t *testing.T) {
	rates := DefaultRateCard()
	rates.BedroomBase = 100

	summary := rates.Calculate(RoomsInput{Bedrooms: []Bedroom{{Beds: 1}, {Beds: 4}}}, 0)

	assert.Equal(t, int64(1200), summary.BedroomsTotal)
	assert.Equal(t, int64(1000), DefaultRateCard().BedroomPrice(1))
}

func TestCalculate_HugeQuantitiesStayNonNegative(t *testing.T) {
	summary := DefaultRateCard().Calculate(RoomsInput{KitchenQty: 1e19, DiningRoomQty: 1e16}, 0)

	kitchen := findLine(t, summary, KeyKitchen)
	assert.Equal(t, int64(MaxQty), kitchen.Qty)
	assert.Equal(t, int64(MaxQty)*1000, kitchen.TotalPrice)

	dining := findLine(t, summary, KeyDiningRoom)
	assert.Equal(t, int64(MaxQty), dining.Qty)
	assert.Equal(t, int64(MaxQty)*2000, dining.TotalPrice)

	assert.Equal(t, kitchen.TotalPrice+dining.TotalPrice, summary.Subtotal)
	assert.Equal(t, summary.Subtotal, summary.Total)
}

func TestCalculate_SaturatesInsteadOfWrapping(t *testing.T) {
	rates := DefaultRateCard()
	rates.Kitchen = math.MaxInt64 / 2
	rates.LivingRoom = math.MaxInt64 / 2

	summary := rates.Calculate(RoomsInput{KitchenQty: 3, LivingRoomQty: 1}, 500)

	assert.Equal(t, int64(math.MaxInt64), findLine(t, summary, KeyKitchen).TotalPrice)
	assert.Equal(t, int64(math.MaxInt64), summary.Subtotal)
	assert.Equal(t, int64(math.MaxInt64), summary.Total)
	for _, item := range summary.LineItems {
		assert.GreaterOrEqual(t, item.TotalPrice, int64(0))
	}
}

func TestCappedArithmetic(t *testing.T) {
	cases := []struct {
		name string
		got  int64
		want int64
	}{
		{name: "mul small", got: mulCapped(3, 500), want: 1500},
		{name: "mul zero", got: mulCapped(0, math.MaxInt64), want: 0},
		{name: "mul overflow", got: mulCapped(1e16, 2000), want: math.MaxInt64},
		{name: "add small", got: addCapped(1500, 250), want: 1750},
		{name: "add overflow", got: addCapped(math.MaxInt64, 1), want: math.MaxInt64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}
