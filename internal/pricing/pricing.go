package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type LineItemKey string

const (
	KeyKitchen         LineItemKey = "kitchen"
	KeyDiningRoom      LineItemKey = "diningRoom"
	KeyLivingRoom      LineItemKey = "livingRoom"
	KeyBedrooms        LineItemKey = "bedrooms"
	KeyBathrooms       LineItemKey = "bathrooms"
	KeyMasterBathrooms LineItemKey = "masterBathrooms"
)

// RateCard holds every price the engine uses. It is passed by value so a
// calculation never observes a card changing underneath it.
type RateCard struct {
	Kitchen         int64
	DiningRoom      int64
	LivingRoom      int64
	Bathroom        int64
	MasterBathroom  int64
	BedroomBase     int64
	BedroomExtraBed int64
	IncludedBeds    int
	MinBeds         int
	MaxBeds         int
}

func DefaultRateCard() RateCard {
	return RateCard{
		Kitchen:         1000,
		DiningRoom:      2000,
		LivingRoom:      2000,
		Bathroom:        500,
		MasterBathroom:  750,
		BedroomBase:     1000,
		BedroomExtraBed: 500,
		IncludedBeds:    2,
		MinBeds:         1,
		MaxBeds:         6,
	}
}

type Bedroom struct {
	Beds float64 `json:"beds"`
}

type RoomsInput struct {
	KitchenQty         float64   `json:"kitchenQty"`
	DiningRoomQty      float64   `json:"diningRoomQty"`
	LivingRoomQty      float64   `json:"livingRoomQty"`
	BathroomsQty       float64   `json:"bathroomsQty"`
	MasterBathroomsQty float64   `json:"masterBathroomsQty"`
	Bedrooms           []Bedroom `json:"bedrooms"`
}

type LineItem struct {
	Key         LineItemKey    `json:"key"`
	Description string         `json:"description"`
	Qty         int64          `json:"qty"`
	UnitPrice   int64          `json:"unitPrice"`
	TotalPrice  int64          `json:"totalPrice"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type Summary struct {
	LineItems     []LineItem `json:"lineItems"`
	Subtotal      int64      `json:"subtotal"`
	Tax           int64      `json:"tax"`
	Total         int64      `json:"total"`
	BedroomsTotal int64      `json:"bedroomsTotal"`
	BedroomCount  int        `json:"bedroomCount"`
}

// MaxQty caps a normalized room quantity.
const MaxQty = math.MaxInt32

// NormalizeQty truncates a quantity toward zero, maps negative or non-finite
// values to 0 and caps the result at MaxQty.
func NormalizeQty(value float64) int64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	if value >= MaxQty {
		return MaxQty
	}
	return int64(math.Floor(value))
}

// NormalizeBeds maps a missing or zero bed count to the minimum and clamps
// the rest into [MinBeds, MaxBeds].
func (c RateCard) NormalizeBeds(value float64) int {
	if math.IsNaN(value) || value == 0 {
		value = float64(c.MinBeds)
	}
	value = math.Floor(value)
	value = math.Max(float64(c.MinBeds), value)
	value = math.Min(float64(c.MaxBeds), value)
	return int(value)
}

func (c RateCard) BedroomPrice(beds int) int64 {
	if beds <= c.IncludedBeds {
		return c.BedroomBase
	}
	return addCapped(c.BedroomBase, mulCapped(int64(beds-c.IncludedBeds), c.BedroomExtraBed))
}

// Calculate prices a room configuration. It never fails: invalid numbers are
// normalized instead of rejected.
func (c RateCard) Calculate(rooms RoomsInput, tax int64) Summary {
	kitchenQty := NormalizeQty(rooms.KitchenQty)
	diningRoomQty := NormalizeQty(rooms.DiningRoomQty)
	livingRoomQty := NormalizeQty(rooms.LivingRoomQty)
	bathroomsQty := NormalizeQty(rooms.BathroomsQty)
	masterBathroomsQty := NormalizeQty(rooms.MasterBathroomsQty)

	beds := make([]int, 0, len(rooms.Bedrooms))
	var bedroomsTotal int64
	for _, bedroom := range rooms.Bedrooms {
		n := c.NormalizeBeds(bedroom.Beds)
		beds = append(beds, n)
		bedroomsTotal = addCapped(bedroomsTotal, c.BedroomPrice(n))
	}

	lineItems := []LineItem{
		flatLine(KeyKitchen, "Kitchen", kitchenQty, c.Kitchen),
		flatLine(KeyDiningRoom, "Dining Room", diningRoomQty, c.DiningRoom),
		flatLine(KeyLivingRoom, "Living Room", livingRoomQty, c.LivingRoom),
		{
			Key:         KeyBedrooms,
			Description: BedroomsDescription(beds),
			Qty:         int64(len(beds)),
			UnitPrice:   0,
			TotalPrice:  bedroomsTotal,
			Metadata:    map[string]any{"beds": beds},
		},
		flatLine(KeyBathrooms, "Bathrooms", bathroomsQty, c.Bathroom),
		flatLine(KeyMasterBathrooms, "Master Bathrooms", masterBathroomsQty, c.MasterBathroom),
	}

	var subtotal int64
	for _, item := range lineItems {
		subtotal = addCapped(subtotal, item.TotalPrice)
	}

	return Summary{
		LineItems:     lineItems,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         addCapped(subtotal, tax),
		BedroomsTotal: bedroomsTotal,
		BedroomCount:  len(beds),
	}
}

func BedroomsDescription(beds []int) string {
	if len(beds) == 0 {
		return "Bedrooms (beds: none)"
	}
	parts := make([]string, len(beds))
	for i, n := range beds {
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("Bedrooms (beds: %s)", strings.Join(parts, ","))
}

func flatLine(key LineItemKey, description string, qty, unitPrice int64) LineItem {
	return LineItem{
		Key:         key,
		Description: description,
		Qty:         qty,
		UnitPrice:   unitPrice,
		TotalPrice:  mulCapped(qty, unitPrice),
	}
}

// mulCapped multiplies non-negative amounts, saturating at math.MaxInt64
// instead of wrapping.
func mulCapped(a, b int64) int64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

// addCapped adds non-negative amounts, saturating at math.MaxInt64.
func addCapped(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
