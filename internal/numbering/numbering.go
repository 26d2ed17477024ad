package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	EstimatePrefix = "EST"
	InvoicePrefix  = "INV"
)

// Sequence returns the integer after the last hyphen of a document number,
// or 0 when there is no such all-digit suffix.
func Sequence(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return 0
	}
	suffix := number[idx+1:]
	if suffix == "" {
		return 0
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0
		}
	}
	value, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return value
}

func Format(prefix string, value int) string {
	return fmt.Sprintf("%s-%06d", prefix, value)
}

// Next derives the number following last. It is not safe against concurrent
// writers; uniqueness is enforced by the database.
func Next(prefix, last string) string {
	return Format(prefix, Sequence(last)+1)
}
