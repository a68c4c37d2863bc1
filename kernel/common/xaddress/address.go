// Package xaddress validates account addresses in one of the supported styles.
package xaddress

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

const (
	StylePlain  = "plain"
	StyleBech32 = "bech32"
	StyleHex    = "hex"

	DefaultHRP = "xstake"

	maxPlainAddrLen = 128
)

var (
	ErrEmptyAddress   = errors.New("address is empty")
	ErrInvalidAddress = errors.New("address is invalid")
)

// Validator checks that an address is well formed and normalized.
type Validator interface {
	Style() string
	Validate(addr string) error
}

func NewValidator(style, hrp string) (Validator, error) {
	switch style {
	case StylePlain, "":
		return plainValidator{}, nil
	case StyleBech32:
		if hrp == "" {
			hrp = DefaultHRP
		}
		if strings.ToLower(hrp) != hrp {
			return nil, fmt.Errorf("bech32 hrp must be lower case.hrp:%s", hrp)
		}
		return bech32Validator{hrp: hrp}, nil
	case StyleHex:
		return hexValidator{}, nil
	default:
		return nil, fmt.Errorf("unknown address style:%s", style)
	}
}

type plainValidator struct{}

func (plainValidator) Style() string {
	return StylePlain
}

// Validate accepts any printable address without spaces.
func (plainValidator) Validate(addr string) error {
	if addr == "" {
		return ErrEmptyAddress
	}
	if len(addr) > maxPlainAddrLen {
		return fmt.Errorf("%w: too long", ErrInvalidAddress)
	}
	for _, r := range addr {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("%w: bad character %q", ErrInvalidAddress, r)
		}
	}
	return nil
}

type bech32Validator struct {
	hrp string
}

func (bech32Validator) Style() string {
	return StyleBech32
}

func (v bech32Validator) Validate(addr string) error {
	if addr == "" {
		return ErrEmptyAddress
	}
	if strings.ToLower(addr) != addr {
		return fmt.Errorf("%w: not normalized", ErrInvalidAddress)
	}
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != v.hrp {
		return fmt.Errorf("%w: prefix %s, want %s", ErrInvalidAddress, hrp, v.hrp)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(payload) == 0 || len(payload) > 255 {
		return fmt.Errorf("%w: payload length %d", ErrInvalidAddress, len(payload))
	}
	return nil
}

type hexValidator struct{}

func (hexValidator) Style() string {
	return StyleHex
}

// Validate accepts only the lower case 0x form.
func (hexValidator) Validate(addr string) error {
	if addr == "" {
		return ErrEmptyAddress
	}
	if !common.IsHexAddress(addr) {
		return ErrInvalidAddress
	}
	if addr != strings.ToLower(common.HexToAddress(addr).Hex()) {
		return fmt.Errorf("%w: not normalized", ErrInvalidAddress)
	}
	return nil
}

// EncodeBech32 encodes payload as a bech32 address with the given prefix.
func EncodeBech32(hrp string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, data)
}
