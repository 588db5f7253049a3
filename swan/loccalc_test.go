package swan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocCalculator_GetOffsetWithGap(t *testing.T) {
	gaps := []int{5, 10}
	lts := []int{}
	calc := newLocCalculator(&gaps, &lts)

	require.Equal(t, 3, calc.getOffsetWithGap(3))  // before any gap
	require.Equal(t, 7, calc.getOffsetWithGap(6))  // past one gap
	require.Equal(t, 12, calc.getOffsetWithGap(10)) // past both gaps
}

func TestLocCalculator_SeesGapsAppendedAfterConstruction(t *testing.T) {
	gaps := []int{}
	lts := []int{}
	calc := newLocCalculator(&gaps, &lts)

	require.Equal(t, 5, calc.getOffsetWithGap(5))

	gaps = append(gaps, 2)
	require.Equal(t, 6, calc.getOffsetWithGap(5))
}

func TestLocCalculator_GetLocation(t *testing.T) {
	lts := []int{4, 9} // line terminators after "abcd\nfghi\n"
	gaps := []int{}
	calc := newLocCalculator(&gaps, &lts)

	pos := calc.getLocation(2)
	require.Equal(t, Position{Line: 1, Column: 2}, pos)

	pos = calc.getLocation(6)
	require.Equal(t, Position{Line: 2, Column: 1}, pos)

	pos = calc.getLocation(11)
	require.Equal(t, Position{Line: 3, Column: 1}, pos)
}

func TestLocCalculator_SubCalculatorAfterShiftsBase(t *testing.T) {
	gaps := []int{}
	lts := []int{}
	root := newLocCalculator(&gaps, &lts)
	sub := root.getSubCalculatorAfter(10)
	require.Equal(t, 13, sub.getOffsetWithGap(3))
}

func TestLocCalculator_SubCalculatorShiftCompensatesWrapPrefix(t *testing.T) {
	gaps := []int{}
	lts := []int{}
	root := newLocCalculator(&gaps, &lts).getSubCalculatorAfter(20)
	shifted := root.getSubCalculatorShift(-2)
	require.Equal(t, 18, shifted.getOffsetWithGap(0))
}

func TestLocCalculator_FixErrorLocation(t *testing.T) {
	gaps := []int{}
	lts := []int{4}
	calc := newLocCalculator(&gaps, &lts)
	pe := &ParseError{Index: 6}
	calc.fixErrorLocation(pe)
	require.Equal(t, 6, pe.Index)
	require.Equal(t, 2, pe.Line)
	require.Equal(t, 1, pe.Column)
}
