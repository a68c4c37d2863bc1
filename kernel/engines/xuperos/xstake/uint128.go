package xstake

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"
)

// Uint128 is an unsigned 128-bit amount. It is serialized as a decimal string.
type Uint128 struct {
	v uint256.Int
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

func NewUint128(x uint64) Uint128 {
	var u Uint128
	u.v.SetUint64(x)
	return u
}

// ParseUint128 parses a base 10 string.
func ParseUint128(s string) (Uint128, error) {
	var u Uint128
	b, ok := new(big.Int).SetString(s, 10)
	if !ok || b.Sign() < 0 {
		return u, fmt.Errorf("invalid uint128 %q", s)
	}
	if b.Cmp(maxUint128) > 0 {
		return u, fmt.Errorf("uint128 overflow %q", s)
	}
	v, _ := uint256.FromBig(b)
	u.v = *v
	return u, nil
}

func (u Uint128) IsZero() bool {
	return u.v.IsZero()
}

func (u Uint128) Cmp(o Uint128) int {
	return u.v.Cmp(&o.v)
}

func (u Uint128) Lt(o Uint128) bool {
	return u.v.Lt(&o.v)
}

// CheckedAdd fails when the sum does not fit in 128 bits.
func (u Uint128) CheckedAdd(o Uint128) (Uint128, error) {
	var r Uint128
	r.v.Add(&u.v, &o.v)
	if r.v.BitLen() > 128 {
		return Uint128{}, fmt.Errorf("addition overflow: %s + %s", u, o)
	}
	return r, nil
}

// CheckedSub fails when o is larger than u.
func (u Uint128) CheckedSub(o Uint128) (Uint128, error) {
	var r Uint128
	if _, underflow := r.v.SubOverflow(&u.v, &o.v); underflow {
		return Uint128{}, fmt.Errorf("subtraction underflow: %s - %s", u, o)
	}
	return r, nil
}

// MulDivFloor returns floor(u * num / den). The product of a 128-bit value and a
// uint64 always fits in 256 bits.
func (u Uint128) MulDivFloor(num, den uint64) Uint128 {
	var r Uint128
	if den == 0 {
		return r
	}
	r.v.Mul(&u.v, uint256.NewInt(num))
	r.v.Div(&r.v, uint256.NewInt(den))
	return r
}

// Float64 is lossy and only meant for metrics.
func (u Uint128) Float64() float64 {
	f, _ := new(big.Float).SetInt(u.v.ToBig()).Float64()
	return f
}

func (u Uint128) String() string {
	return u.v.ToBig().String()
}

func (u Uint128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Uint128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("uint128 must be a decimal string: %v", err)
	}
	v, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

func (u Uint128) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(u.String())
}

func (u *Uint128) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseUint128(s)
	if err != nil {
		return err
	}
	*u = v
	return nil
}
