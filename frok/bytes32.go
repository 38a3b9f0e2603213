// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package frok

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errInvalidLength = errors.New("invalid length")
	errInvalidPrefix = errors.New("invalid prefix")
)

// Bytes32 array of 32 bytes, mostly used as storage key.
type Bytes32 [32]byte

// String implements the stringer interface.
func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// Bytes returns the value as a byte slice.
func (b Bytes32) Bytes() []byte {
	return b[:]
}

// IsZero returns true if the value is all zero bytes.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// MarshalJSON implements json.Marshaler.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := unmarshalQuoted(data, &hexStr); err != nil {
		return err
	}
	parsed, err := ParseBytes32(hexStr)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBytes32 converts a "0x"-prefixed hex string to a Bytes32.
func ParseBytes32(s string) (Bytes32, error) {
	if len(s) != 64+2 {
		return Bytes32{}, errInvalidLength
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Bytes32{}, errInvalidPrefix
	}
	var b Bytes32
	if _, err := hex.Decode(b[:], []byte(s[2:])); err != nil {
		return Bytes32{}, err
	}
	return b, nil
}

// MustParseBytes32 converts a hex string to a Bytes32, panics on error.
func MustParseBytes32(s string) Bytes32 {
	b, err := ParseBytes32(s)
	if err != nil {
		panic(err)
	}
	return b
}

// BytesToBytes32 converts a byte slice to a Bytes32.
// If b is larger than 32 bytes, b will be cropped from the left.
func BytesToBytes32(b []byte) Bytes32 {
	var b32 Bytes32
	if len(b) > len(b32) {
		b = b[len(b)-32:]
	}
	copy(b32[32-len(b):], b)
	return b32
}

func unmarshalQuoted(data []byte, v *string) error {
	return json.Unmarshal(data, v)
}
