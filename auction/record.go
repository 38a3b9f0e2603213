// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
)

// Auction is the single active auction record. Bidder is the zero address
// until the first bid lands; Price is what the current leader would actually
// pay, always at most Bid.
type Auction struct {
	NFTID     uint64
	Bidder    frok.Address
	Bid       *big.Int
	Price     *big.Int
	StartTime uint64
	EndTime   uint64
	Settled   bool
}

// HasBid returns whether any bid has been accepted.
func (a *Auction) HasBid() bool {
	return !a.Bidder.IsZero()
}

func (a *Auction) ToString() string {
	return fmt.Sprintf("Auction(nftID=%v, bidder=%v, bid=%v, price=%v, start=%v, end=%v, settled=%v)",
		a.NFTID, a.Bidder, a.Bid.String(), a.Price.String(),
		time.Unix(int64(a.StartTime), 0), time.Unix(int64(a.EndTime), 0), a.Settled)
}

// Copy returns a deep copy, so callers can hold the record without racing
// subsequent operations.
func (a *Auction) Copy() *Auction {
	dup := *a
	dup.Bid = new(big.Int).Set(a.Bid)
	dup.Price = new(big.Int).Set(a.Price)
	return &dup
}

func (h *AuctionHouse) getAuction() (record *Auction) {
	h.state.DecodeStorage(h.addr, auctionKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		var a Auction
		if err := rlp.DecodeBytes(raw, &a); err != nil {
			return err
		}
		record = &a
		return nil
	})
	return
}

func (h *AuctionHouse) setAuction(record *Auction) {
	h.state.EncodeStorage(h.addr, auctionKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(record)
	})
}
