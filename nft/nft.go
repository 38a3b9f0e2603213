// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nft

import (
	"encoding/binary"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/state"
)

var (
	counterKey = frok.Blake2b([]byte("token-counter"))
	ownerKey   = frok.Blake2b([]byte("contract-owner"))
	minterKey  = frok.Blake2b([]byte("minter"))

	errNotOwner      = errors.New("Caller is not the owner")
	errNotMinter     = errors.New("Caller is not the minter")
	errTokenNotFound = errors.New("Token does not exist")
	errNotTokenOwner = errors.New("Not the token owner")
)

// NFT is the ERC-721-like collectible that gets auctioned off. Token ids are
// a monotonically increasing counter starting at zero; minting is restricted
// to the configured minter (normally the auction house).
type NFT struct {
	addr   frok.Address
	state  *state.State
	logger *slog.Logger
}

// New creates an NFT instance bound to the given module account.
func New(addr frok.Address, st *state.State) *NFT {
	return &NFT{
		addr:   addr,
		state:  st,
		logger: slog.With("pkg", "nft"),
	}
}

// Initialize sets the contract owner and makes it the initial minter.
// Calling it on an already initialized contract is a no-op.
func (n *NFT) Initialize(owner frok.Address) {
	if !n.getAddress(ownerKey).IsZero() {
		return
	}
	n.setAddress(ownerKey, owner)
	n.setAddress(minterKey, owner)
}

func tokenOwnerKey(id uint64) frok.Bytes32 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return frok.Blake2b([]byte("token-owner-key"), buf[:])
}

func holdingsKey(owner frok.Address) frok.Bytes32 {
	return frok.Blake2b([]byte("holdings-key"), owner.Bytes())
}

func (n *NFT) getAddress(key frok.Bytes32) (addr frok.Address) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (n *NFT) setAddress(key frok.Bytes32, addr frok.Address) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(addr)
	})
}

func (n *NFT) getUint64(key frok.Bytes32) (value uint64) {
	n.state.DecodeStorage(n.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (n *NFT) setUint64(key frok.Bytes32, value uint64) {
	n.state.EncodeStorage(n.addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Owner returns the contract owner.
func (n *NFT) Owner() frok.Address {
	return n.getAddress(ownerKey)
}

// Minter returns the account allowed to mint.
func (n *NFT) Minter() frok.Address {
	return n.getAddress(minterKey)
}

// SetMinter hands mint rights to another account. Owner only.
func (n *NFT) SetMinter(caller, minter frok.Address) error {
	if caller != n.Owner() {
		return errNotOwner
	}
	n.setAddress(minterKey, minter)
	n.logger.Info("minter updated", "minter", minter)
	return nil
}

// TotalSupply returns how many tokens have been minted.
func (n *NFT) TotalSupply() uint64 {
	return n.getUint64(counterKey)
}

// BalanceOf returns how many tokens the given account holds.
func (n *NFT) BalanceOf(owner frok.Address) uint64 {
	return n.getUint64(holdingsKey(owner))
}

// Mint creates the next token and assigns it to the given account.
// Only the minter may call.
func (n *NFT) Mint(caller, to frok.Address) (uint64, error) {
	if caller != n.Minter() {
		return 0, errNotMinter
	}
	id := n.getUint64(counterKey)
	n.setAddress(tokenOwnerKey(id), to)
	n.setUint64(holdingsKey(to), n.BalanceOf(to)+1)
	n.setUint64(counterKey, id+1)
	n.logger.Debug("minted token", "id", id, "to", to)
	return id, nil
}

// OwnerOf returns the holder of the given token.
func (n *NFT) OwnerOf(id uint64) (frok.Address, error) {
	owner := n.getAddress(tokenOwnerKey(id))
	if owner.IsZero() {
		return frok.Address{}, errTokenNotFound
	}
	return owner, nil
}

// TransferFrom moves a token between accounts. The caller must be the
// current holder.
func (n *NFT) TransferFrom(caller, from, to frok.Address, id uint64) error {
	owner, err := n.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != from || caller != owner {
		return errNotTokenOwner
	}
	n.setAddress(tokenOwnerKey(id), to)
	n.setUint64(holdingsKey(from), n.BalanceOf(from)-1)
	n.setUint64(holdingsKey(to), n.BalanceOf(to)+1)
	return nil
}
