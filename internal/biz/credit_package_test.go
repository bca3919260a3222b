package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditPackage_PriceMinorUnits(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  int64
	}{
		{"Whole dollars", 5.00, 500},
		{"With cents", 9.99, 999},
		{"Sub-dollar", 0.07, 7},
		{"Large amount", 123.45, 12345},
		{"Free package", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &CreditPackage{Price: tt.price}
			assert.Equal(t, tt.want, p.PriceMinorUnits())
		})
	}
}
