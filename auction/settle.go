// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// SettleAuction closes an ended auction. Within the grace window after the
// end time only the owner may settle; afterwards anyone can. With no bids
// the NFT goes to the owner. With bids the NFT goes to the winner, the
// clearing price is split between proceeds receiver and owner, and the
// winner's surplus (raw bid minus clearing price) lands in their pending
// returns. CreateAuction may be called right after to open the next round.
func (h *AuctionHouse) SettleAuction(caller frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		if !cfg.Paused {
			return ErrNotPaused
		}
		record := h.getAuction()
		if record == nil {
			return ErrNotPaused
		}
		if record.Settled {
			return ErrAlreadySettled
		}

		now := h.now()
		if now < record.EndTime {
			return ErrAuctionNotEnded
		}
		if now < record.EndTime+frok.AuctionSettlementOnlyOwnerBuffer && caller != cfg.Owner {
			return ErrSettleOwnerOnly
		}

		if !record.HasBid() {
			if err := h.nft.TransferFrom(h.addr, h.addr, cfg.Owner, record.NFTID); err != nil {
				return err
			}
		} else {
			if err := h.nft.TransferFrom(h.addr, h.addr, record.Bidder, record.NFTID); err != nil {
				return err
			}

			receiverShare := new(big.Int).Mul(record.Price, new(big.Int).SetUint64(cfg.SplitPct))
			receiverShare = receiverShare.Div(receiverShare, big.NewInt(100))
			ownerShare := new(big.Int).Sub(record.Price, receiverShare)

			if err := h.token.Transfer(h.addr, cfg.SplitRecipient, receiverShare); err != nil {
				return err
			}
			if err := h.token.Transfer(h.addr, cfg.Owner, ownerShare); err != nil {
				return err
			}

			// the winner pays the clearing price, not the raw bid
			surplus := new(big.Int).Sub(record.Bid, record.Price)
			if surplus.Sign() > 0 {
				h.creditPendingReturns(record.Bidder, surplus)
			}
		}

		record.Settled = true
		h.setAuction(record)

		h.emit(&logdb.Event{
			Name:    logdb.AuctionSettled,
			NFTID:   record.NFTID,
			Address: record.Bidder,
			Amount:  record.Bid,
			Price:   record.Price,
			EndTime: record.EndTime,
		})
		settledCounter.Inc()
		h.logger.Info("auction settled",
			"nftID", record.NFTID,
			"winner", record.Bidder,
			"price", record.Price.String())
		return nil
	})
}
