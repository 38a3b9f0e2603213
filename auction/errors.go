// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "errors"

// Sentinel errors returned by auction house operations. Clients match on the
// texts, so they are part of the API surface.
var (
	ErrNotOwner             = errors.New("Caller is not the owner")
	ErrZeroOwner            = errors.New("Cannot set owner to zero address")
	ErrIncrementOutOfRange  = errors.New("_min_bid_increment_percentage out of range")
	ErrDurationOutOfRange   = errors.New("_duration out of range")
	ErrInvalidPriceProvider = errors.New("Invalid _price_provider address")
	ErrWrongNFT             = errors.New("NFT not up for auction")
	ErrAuctionExpired       = errors.New("Auction expired")
	ErrBelowReserve         = errors.New("Must send at least reservePrice")
	ErrBelowMinIncrement    = errors.New("Must send more than last bid by min_bid_increment_percentage amount")
	ErrNotPaused            = errors.New("Auction is not paused")
	ErrSettleOwnerOnly      = errors.New("Only owner can settle the auction within 2 hours after it ends")
	ErrAuctionNotEnded      = errors.New("Auction has not ended yet")
	ErrAlreadySettled       = errors.New("Auction already settled")
	ErrNotSettled           = errors.New("Auction not settled yet")
)
