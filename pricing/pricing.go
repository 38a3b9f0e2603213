// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pricing

import (
	"errors"
	"math/big"
)

// PriceProvider computes the clearing price a new leading bidder will owe,
// given the raw new bid and the displaced leader's price. Implementations
// must be pure, monotonic in newBid and never return more than newBid.
type PriceProvider interface {
	GetPrice(newBid, prevPrice *big.Int) *big.Int
}

// Linear interpolates between the previous price and the new bid:
//
//	price = prevPrice + (newBid - prevPrice) * num / den
//
// num/den is the fraction of the gap the new leader concedes. The default
// midpoint provider (1/2) yields the classic "split the difference" Vickrey
// approximation: GetPrice(1000, 100) = 550.
type Linear struct {
	num *big.Int
	den *big.Int
}

// NewLinear creates a linear provider with the given gap fraction.
func NewLinear(num, den int64) (*Linear, error) {
	if den <= 0 || num < 0 || num > den {
		return nil, errors.New("gap fraction out of range")
	}
	return &Linear{num: big.NewInt(num), den: big.NewInt(den)}, nil
}

// NewMidpoint creates the default 1/2 linear provider.
func NewMidpoint() *Linear {
	p, _ := NewLinear(1, 2)
	return p
}

// GetPrice implements PriceProvider.
func (l *Linear) GetPrice(newBid, prevPrice *big.Int) *big.Int {
	if newBid.Cmp(prevPrice) <= 0 {
		return new(big.Int).Set(newBid)
	}
	gap := new(big.Int).Sub(newBid, prevPrice)
	gap = gap.Mul(gap, l.num)
	gap = gap.Div(gap, l.den)
	return new(big.Int).Add(prevPrice, gap)
}
