// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/johnnyonline/frok-vickrey-auction/frok"

// Storage keys under the auction house account.
var (
	auctionKey = frok.Blake2b([]byte("auction-record-key"))
	configKey  = frok.Blake2b([]byte("auction-config-key"))
)

func pendingReturnsKey(addr frok.Address) frok.Bytes32 {
	return frok.Blake2b([]byte("pending-returns-key"), addr.Bytes())
}
