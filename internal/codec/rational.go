package codec

import (
	"fmt"
	"math/big"
)

// Rational is a fraction used for time bases and aspect ratios.
type Rational struct {
	Num int
	Den int
}

// GlobalTimeBase is the unit of container durations and seek targets:
// microseconds.
var GlobalTimeBase = Rational{Num: 1, Den: 1000000}

// Float64 returns the value of r, or 0 for an undefined rational.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Valid reports whether r has a positive numerator and denominator.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// Rescale converts v from time base from to time base to, rounding to the
// nearest integer with halves away from zero.
func Rescale(v int64, from, to Rational) int64 {
	if from.Den == 0 || to.Num == 0 {
		return 0
	}

	// v * from.Num * to.Den / (from.Den * to.Num)
	num := new(big.Int).Mul(big.NewInt(v), big.NewInt(int64(from.Num)*int64(to.Den)))
	den := big.NewInt(int64(from.Den) * int64(to.Num))
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}

	half := new(big.Int).Quo(den, big.NewInt(2))
	if num.Sign() < 0 {
		num.Sub(num, half)
	} else {
		num.Add(num, half)
	}
	return num.Quo(num, den).Int64()
}
