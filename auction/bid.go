// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// CreateBid places a bid on the NFT currently up for auction. The bidder
// must have approved the house for at least amount on the payment token;
// the whole amount is pulled up front. A displaced leader gets their full
// raw bid credited to pending returns. Bids landing within the time buffer
// push the end time out to keep sniping unprofitable.
func (h *AuctionHouse) CreateBid(bidder frok.Address, nftID uint64, amount *big.Int) error {
	return h.runAtomic(func(cfg *config) error {
		record := h.getAuction()
		if record == nil || record.NFTID != nftID || record.Settled {
			return ErrWrongNFT
		}

		now := h.now()
		if now >= record.EndTime {
			return ErrAuctionExpired
		}

		if !record.HasBid() {
			if amount.Cmp(cfg.ReservePrice) < 0 {
				return ErrBelowReserve
			}
		} else {
			increment := new(big.Int).Mul(record.Bid, new(big.Int).SetUint64(cfg.IncrementPct))
			increment = increment.Div(increment, big.NewInt(100))
			minRequired := new(big.Int).Add(record.Bid, increment)
			// equal to the threshold is still too low
			if amount.Cmp(minRequired) <= 0 {
				return ErrBelowMinIncrement
			}
		}

		if err := h.token.TransferFrom(h.addr, bidder, h.addr, amount); err != nil {
			return err
		}

		var price *big.Int
		if record.HasBid() {
			h.creditPendingReturns(record.Bidder, record.Bid)
			price = h.provider.GetPrice(amount, record.Price)
			if price.Cmp(amount) > 0 {
				price = new(big.Int).Set(amount)
			}
		} else {
			price = new(big.Int).Set(amount)
		}

		record.Bidder = bidder
		record.Bid = new(big.Int).Set(amount)
		record.Price = price

		extended := false
		if record.EndTime-now < cfg.TimeBuffer {
			record.EndTime = now + cfg.TimeBuffer
			extended = true
		}
		h.setAuction(record)

		h.emit(&logdb.Event{
			Name:    logdb.AuctionBid,
			NFTID:   nftID,
			Address: bidder,
			Amount:  record.Bid,
			Price:   record.Price,
			EndTime: record.EndTime,
		})
		if extended {
			h.emit(&logdb.Event{
				Name:    logdb.AuctionExtended,
				NFTID:   nftID,
				EndTime: record.EndTime,
			})
		}
		bidCounter.Inc()
		currentBidGauge.Set(float64(record.Bid.Int64()))
		currentPriceGauge.Set(float64(record.Price.Int64()))
		h.logger.Info("bid accepted",
			"nftID", nftID,
			"bidder", bidder,
			"amount", record.Bid.String(),
			"price", record.Price.String(),
			"extended", extended)
		return nil
	})
}
