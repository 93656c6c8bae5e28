package wordclock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Segment indices of the example configuration.
const (
	segIT = iota
	segIS
	segMTEN
	segHALF
	segQUARTER
	segTWENTY
	segMFIVE
	segMINUTES
	segTO
	segPAST
	segONE
	segTWO
	segTHREE
	segFOUR
	segHFIVE
	segSIX
	segSEVEN
	segEIGHT
	segNINE
	segHTEN
	segELEVEN
	segTWELVE
	segOCLOCK
	segDOT1
	segDOT2
	segDOT3
	segDOT4
)

func TestLayoutLit(t *testing.T) {
	layout := NewLayout(loadExampleConfig(t))

	tests := []struct {
		hour, minute int
		expect       []int
	}{
		{0, 0, []int{segIT, segIS, segTWELVE, segOCLOCK}},
		{12, 0, []int{segIT, segIS, segTWELVE, segOCLOCK}},
		{10, 27, []int{segIT, segIS, segTWENTY, segMFIVE, segMINUTES, segPAST, segHTEN, segDOT1, segDOT2}},
		{10, 30, []int{segIT, segIS, segHALF, segPAST, segHTEN}},
		{10, 35, []int{segIT, segIS, segTWENTY, segMFIVE, segMINUTES, segTO, segELEVEN}},
		{23, 58, []int{segIT, segIS, segMFIVE, segMINUTES, segTO, segTWELVE, segDOT1, segDOT2, segDOT3}},
		{15, 45, []int{segIT, segIS, segQUARTER, segTO, segFOUR}},
		{7, 14, []int{segIT, segIS, segMTEN, segMINUTES, segPAST, segSEVEN, segDOT1, segDOT2, segDOT3, segDOT4}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expect, layout.Lit(test.hour, test.minute),
			"%02d:%02d", test.hour, test.minute)
	}
}

func TestLayoutDots(t *testing.T) {
	layout := NewLayout(loadExampleConfig(t))
	assert.Equal(t, []int{segDOT1, segDOT2, segDOT3, segDOT4}, layout.Dots())
}

func TestLayoutNextHourFrom(t *testing.T) {
	cfg := loadExampleConfig(t)
	cfg.Layout.NextHourFrom = 60
	layout := NewLayout(cfg)

	assert.Contains(t, layout.Lit(10, 55), segHTEN)
	assert.NotContains(t, layout.Lit(10, 55), segELEVEN)
}
