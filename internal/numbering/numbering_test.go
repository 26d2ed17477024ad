package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{name: "first estimate", prefix: EstimatePrefix, last: "", want: "EST-000001"},
		{name: "increments estimate", prefix: EstimatePrefix, last: "EST-000041", want: "EST-000042"},
		{name: "increments invoice", prefix: InvoicePrefix, last: "INV-000041", want: "INV-000042"},
		{name: "garbage suffix", prefix: InvoicePrefix, last: "INV-abc", want: "INV-000001"},
		{name: "no hyphen", prefix: EstimatePrefix, last: "000123", want: "EST-000001"},
		{name: "trailing hyphen", prefix: EstimatePrefix, last: "EST-", want: "EST-000001"},
		{name: "overflows padding", prefix: EstimatePrefix, last: "EST-999999", want: "EST-1000000"},
		{name: "uses last hyphen", prefix: EstimatePrefix, last: "OLD-EST-000007", want: "EST-000008"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.prefix, tc.last))
		})
	}
}

func TestSequence(t *testing.T) {
	assert.Equal(t, 42, Sequence("INV-000042"))
	assert.Equal(t, 0, Sequence(""))
	assert.Equal(t, 0, Sequence("EST-12a"))
	assert.Equal(t, 5, Sequence("EST--5"))
	assert.Equal(t, 0, Sequence("EST-5-"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "EST-000001", Format(EstimatePrefix, 1))
	assert.Equal(t, "INV-000042", Format(InvoicePrefix, 42))
}
