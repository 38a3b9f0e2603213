// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package frok

// Well-known module account addresses. Derived from readable names the same
// way storage keys are, so they never collide with externally owned accounts.
var (
	AuctionHouseAddr = BytesToAddress([]byte("frok-auction-house"))
	PaymentTokenAddr = BytesToAddress([]byte("frok-payment-token"))
	NFTAddr          = BytesToAddress([]byte("frok-nft"))
)

// Auction house parameter bounds. An owner-submitted value outside these
// ranges is rejected before any state is touched.
const (
	MinBidIncrementPercentageFloor = 2
	MinBidIncrementPercentageCeil  = 15

	AuctionDurationFloor = 3600   // one hour
	AuctionDurationCeil  = 259199 // just under three days

	// After an auction ends, settlement stays owner-only for this many
	// seconds before it opens up to anyone.
	AuctionSettlementOnlyOwnerBuffer = 7200
)
