// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/johnnyonline/frok-vickrey-auction/auction"
	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// AuctionJSON is the wire form of the active auction record. Amounts are
// decimal strings so callers don't lose precision to JSON numbers.
type AuctionJSON struct {
	NFTID     uint64       `json:"nftID"`
	Bidder    frok.Address `json:"bidder"`
	Bid       string       `json:"bid"`
	Price     string       `json:"price"`
	StartTime uint64       `json:"startTime"`
	EndTime   uint64       `json:"endTime"`
	Settled   bool         `json:"settled"`
}

func convertAuction(a *auction.Auction) *AuctionJSON {
	return &AuctionJSON{
		NFTID:     a.NFTID,
		Bidder:    a.Bidder,
		Bid:       a.Bid.String(),
		Price:     a.Price.String(),
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Settled:   a.Settled,
	}
}

// ConfigJSON is the wire form of the house configuration.
type ConfigJSON struct {
	Owner                           frok.Address `json:"owner"`
	ProceedsReceiver                frok.Address `json:"proceedsReceiver"`
	TimeBuffer                      uint64       `json:"timeBuffer"`
	ReservePrice                    string       `json:"reservePrice"`
	MinBidIncrementPercentage       uint64       `json:"minBidIncrementPercentage"`
	Duration                        uint64       `json:"duration"`
	ProceedsReceiverSplitPercentage uint64       `json:"proceedsReceiverSplitPercentage"`
	Paused                          bool         `json:"paused"`
	EmergencyPaused                 bool         `json:"emergencyPaused"`
}

// PendingReturnsJSON is the withdrawable balance of one account.
type PendingReturnsJSON struct {
	Address frok.Address `json:"address"`
	Amount  string       `json:"amount"`
}

// BidRequest places a bid on the active auction.
type BidRequest struct {
	Bidder frok.Address `json:"bidder"`
	NFTID  uint64       `json:"nftID"`
	Amount string       `json:"amount"`
}

// CallerRequest carries just the acting account, for operations where the
// caller identity decides authorization.
type CallerRequest struct {
	Caller frok.Address `json:"caller"`
}

// WithdrawMultipleRequest drains the pending balances of the listed accounts.
type WithdrawMultipleRequest struct {
	Caller    frok.Address   `json:"caller"`
	Addresses []frok.Address `json:"addresses"`
}

// SetAddressRequest updates an address-valued config field.
type SetAddressRequest struct {
	Caller frok.Address `json:"caller"`
	Value  frok.Address `json:"value"`
}

// SetUint64Request updates an integer config field.
type SetUint64Request struct {
	Caller frok.Address `json:"caller"`
	Value  uint64       `json:"value"`
}

// SetAmountRequest updates an amount-valued config field.
type SetAmountRequest struct {
	Caller frok.Address `json:"caller"`
	Value  string       `json:"value"`
}

// EventFilter is the wire form of a log query.
type EventFilter struct {
	Name    string         `json:"name"`
	Address *frok.Address  `json:"address"`
	Range   *logdb.Range   `json:"range"`
	Options *logdb.Options `json:"options"`
	Order   logdb.Order    `json:"order"`
}

func convertEventFilter(f *EventFilter) *logdb.EventFilter {
	return &logdb.EventFilter{
		Name:    f.Name,
		Address: f.Address,
		Range:   f.Range,
		Options: f.Options,
		Order:   f.Order,
	}
}

// FilteredEvent is the wire form of one logged event.
type FilteredEvent struct {
	Seq     uint64       `json:"seq"`
	Time    uint64       `json:"time"`
	Name    string       `json:"name"`
	NFTID   uint64       `json:"nftID"`
	Address frok.Address `json:"address"`
	Amount  string       `json:"amount"`
	Price   string       `json:"price"`
	EndTime uint64       `json:"endTime"`
}

func convertEvent(ev *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Seq:     ev.Seq,
		Time:    ev.Time,
		Name:    ev.Name,
		NFTID:   ev.NFTID,
		Address: ev.Address,
		Amount:  ev.Amount.String(),
		Price:   ev.Price.String(),
		EndTime: ev.EndTime,
	}
}

func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}
