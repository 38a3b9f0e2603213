// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import "github.com/prometheus/client_golang/prometheus"

var (
	createdCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_created_total",
		Help: "Number of auctions opened",
	})
	bidCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_bids_total",
		Help: "Number of accepted bids",
	})
	settledCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_settled_total",
		Help: "Number of settled auctions",
	})
	currentBidGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auction_current_bid",
		Help: "Raw amount of the current leading bid",
	})
	currentPriceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auction_current_price",
		Help: "Clearing price of the current leading bid",
	})
)

func init() {
	prometheus.MustRegister(createdCounter)
	prometheus.MustRegister(bidCounter)
	prometheus.MustRegister(settledCounter)
	prometheus.MustRegister(currentBidGauge)
	prometheus.MustRegister(currentPriceGauge)
}
