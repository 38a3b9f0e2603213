// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// CreateAuction opens the next auction round. Owner only. The previous
// auction, if any, must be settled first. The house mints the next NFT to
// itself and holds it until settlement; creating the first auction also arms
// the lifecycle gate that settlement checks.
func (h *AuctionHouse) CreateAuction(caller frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if record := h.getAuction(); record != nil && !record.Settled {
			return ErrNotSettled
		}

		id, err := h.nft.Mint(h.addr, h.addr)
		if err != nil {
			return err
		}

		now := h.now()
		record := &Auction{
			NFTID:     id,
			Bidder:    frok.ZeroAddress,
			Bid:       &big.Int{},
			Price:     &big.Int{},
			StartTime: now,
			EndTime:   now + cfg.Duration,
		}
		h.setAuction(record)

		if !cfg.Paused {
			cfg.Paused = true
			h.setConfig(cfg)
		}

		h.emit(&logdb.Event{
			Name:    logdb.AuctionCreated,
			NFTID:   id,
			EndTime: record.EndTime,
		})
		createdCounter.Inc()
		currentBidGauge.Set(0)
		currentPriceGauge.Set(0)
		h.logger.Info("auction created", "nftID", id, "endTime", record.EndTime)
		return nil
	})
}
