// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"errors"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/state"
)

var (
	totalSupplyKey = frok.Blake2b([]byte("total-supply"))

	errNotEnoughBalance   = errors.New("not enough balance")
	errNotEnoughAllowance = errors.New("not enough allowance")
)

// Token is the ERC-20-like payment token the auction house settles in.
// Balances and allowances live in the token account's storage, so they roll
// back together with everything else when an operation reverts.
type Token struct {
	addr   frok.Address
	state  *state.State
	logger *slog.Logger
}

// New creates a token instance bound to the given module account.
func New(addr frok.Address, st *state.State) *Token {
	return &Token{
		addr:   addr,
		state:  st,
		logger: slog.With("pkg", "token"),
	}
}

// Address returns the token's module account address.
func (t *Token) Address() frok.Address {
	return t.addr
}

func balanceKey(owner frok.Address) frok.Bytes32 {
	return frok.Blake2b([]byte("balance-key"), owner.Bytes())
}

func allowanceKey(owner, spender frok.Address) frok.Bytes32 {
	return frok.Blake2b([]byte("allowance-key"), owner.Bytes(), spender.Bytes())
}

func (t *Token) getAmount(key frok.Bytes32) (amount *big.Int) {
	t.state.DecodeStorage(t.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			amount = &big.Int{}
			return nil
		}
		amount = &big.Int{}
		return rlp.DecodeBytes(raw, amount)
	})
	return
}

func (t *Token) setAmount(key frok.Bytes32, amount *big.Int) {
	t.state.EncodeStorage(t.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(amount)
	})
}

// BalanceOf returns the balance of the given account.
func (t *Token) BalanceOf(owner frok.Address) *big.Int {
	return t.getAmount(balanceKey(owner))
}

// TotalSupply returns the total minted supply.
func (t *Token) TotalSupply() *big.Int {
	return t.getAmount(totalSupplyKey)
}

// Mint credits freshly created tokens to the given account.
func (t *Token) Mint(to frok.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	t.setAmount(balanceKey(to), new(big.Int).Add(t.BalanceOf(to), amount))
	t.setAmount(totalSupplyKey, new(big.Int).Add(t.TotalSupply(), amount))
	t.logger.Debug("minted", "to", to, "amount", amount.String())
}

// Approve lets spender move up to amount out of owner's balance.
func (t *Token) Approve(owner, spender frok.Address, amount *big.Int) {
	t.setAmount(allowanceKey(owner, spender), amount)
}

// Allowance returns what spender may still move out of owner's balance.
func (t *Token) Allowance(owner, spender frok.Address) *big.Int {
	return t.getAmount(allowanceKey(owner, spender))
}

// Transfer moves amount from one account to another.
// A zero amount is a no-op, matching the withdraw path semantics.
func (t *Token) Transfer(from, to frok.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	fromBalance := t.BalanceOf(from)
	if fromBalance.Cmp(amount) < 0 {
		return errNotEnoughBalance
	}
	t.setAmount(balanceKey(from), new(big.Int).Sub(fromBalance, amount))
	t.setAmount(balanceKey(to), new(big.Int).Add(t.BalanceOf(to), amount))
	return nil
}

// TransferFrom moves amount from one account to another on behalf of
// spender, consuming spender's allowance.
func (t *Token) TransferFrom(spender, from, to frok.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	allowance := t.Allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return errNotEnoughAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	t.setAmount(allowanceKey(from, spender), new(big.Int).Sub(allowance, amount))
	return nil
}
