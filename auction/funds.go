// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

func (h *AuctionHouse) getPendingReturns(addr frok.Address) (amount *big.Int) {
	h.state.DecodeStorage(h.addr, pendingReturnsKey(addr), func(raw []byte) error {
		if len(raw) == 0 {
			amount = &big.Int{}
			return nil
		}
		amount = &big.Int{}
		return rlp.DecodeBytes(raw, amount)
	})
	return
}

func (h *AuctionHouse) setPendingReturns(addr frok.Address, amount *big.Int) {
	h.state.EncodeStorage(h.addr, pendingReturnsKey(addr), func() ([]byte, error) {
		return rlp.EncodeToBytes(amount)
	})
}

// creditPendingReturns accumulates; a bidder outbid several times keeps every
// refund until they withdraw.
func (h *AuctionHouse) creditPendingReturns(addr frok.Address, amount *big.Int) {
	h.setPendingReturns(addr, new(big.Int).Add(h.getPendingReturns(addr), amount))
}

// PendingReturns returns the withdrawable balance of the given account.
func (h *AuctionHouse) PendingReturns(addr frok.Address) *big.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getPendingReturns(addr)
}

// Withdraw pays the caller their whole pending balance. A zero balance is a
// silent no-op, not an error.
func (h *AuctionHouse) Withdraw(caller frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		amount := h.getPendingReturns(caller)
		if amount.Sign() == 0 {
			return nil
		}
		if err := h.token.Transfer(h.addr, caller, amount); err != nil {
			return err
		}
		h.setPendingReturns(caller, &big.Int{})

		h.emit(&logdb.Event{
			Name:    logdb.Withdrawal,
			Address: caller,
			Amount:  amount,
		})
		h.logger.Info("withdrawal", "addr", caller, "amount", amount.String())
		return nil
	})
}

// WithdrawMultiple drains the pending balances of the listed accounts in one
// atomic batch. Callable by anyone; accounts with nothing pending are simply
// skipped. Under emergency pause the balances are swept to the owner instead,
// for off-band recovery.
func (h *AuctionHouse) WithdrawMultiple(caller frok.Address, addrs []frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		for _, addr := range addrs {
			amount := h.getPendingReturns(addr)
			if amount.Sign() == 0 {
				continue
			}
			recipient := addr
			if cfg.EmergencyPaused {
				recipient = cfg.Owner
			}
			if err := h.token.Transfer(h.addr, recipient, amount); err != nil {
				return err
			}
			h.setPendingReturns(addr, &big.Int{})

			h.emit(&logdb.Event{
				Name:    logdb.Withdrawal,
				Address: addr,
				Amount:  amount,
			})
		}
		return nil
	})
}
