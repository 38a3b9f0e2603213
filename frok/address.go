// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package frok

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address represents a 20-byte account address.
type Address [20]byte

var (
	// ZeroAddress is the sentinel "no account" address.
	ZeroAddress = Address{}
)

// String implements the stringer interface.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns true if the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// AbbrevString returns an abbreviated form of the address for logging.
func (a Address) AbbrevString() string {
	s := a.String()
	return s[:8] + "…" + s[len(s)-6:]
}

// MarshalJSON implements json.Marshaler.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := unmarshalQuoted(data, &hexStr); err != nil {
		return err
	}
	parsed, err := ParseAddress(hexStr)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress converts a "0x"-prefixed hex string to an Address.
func ParseAddress(s string) (Address, error) {
	if len(s) != 40+2 {
		return Address{}, errInvalidLength
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Address{}, errInvalidPrefix
	}
	var addr Address
	if _, err := hex.Decode(addr[:], []byte(s[2:])); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// MustParseAddress converts a hex string to an Address, panics on error.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// BytesToAddress converts a byte slice to an Address.
// If b is larger than 20 bytes, b will be cropped from the left.
func BytesToAddress(b []byte) Address {
	var addr Address
	if len(b) > len(addr) {
		b = b[len(b)-20:]
	}
	copy(addr[20-len(b):], b)
	return addr
}
