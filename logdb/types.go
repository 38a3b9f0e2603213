// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
)

// Event names recorded by the auction house.
const (
	AuctionCreated  = "AuctionCreated"
	AuctionBid      = "AuctionBid"
	AuctionExtended = "AuctionExtended"
	AuctionSettled  = "AuctionSettled"
	Withdrawal      = "Withdrawal"
)

// Event is one auction house happening. Amount and Price carry whatever the
// event semantics imply (bid amount, clearing price, withdrawn sum); unused
// fields stay zero.
type Event struct {
	Seq     uint64       `json:"seq"`
	Time    uint64       `json:"time"`
	Name    string       `json:"name"`
	NFTID   uint64       `json:"nftID"`
	Address frok.Address `json:"address"`
	Amount  *big.Int     `json:"amount"`
	Price   *big.Int     `json:"price"`
	EndTime uint64       `json:"endTime"`
}

// Order specifies the order of results.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range filters events by sequence number, inclusive on both ends.
type Range struct {
	From uint64
	To   uint64
}

// Options paging options.
type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter describes which events to return.
type EventFilter struct {
	Name    string // empty matches all names
	Address *frok.Address
	Range   *Range
	Options *Options
	Order   Order
}
