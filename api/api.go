// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auctionapi "github.com/johnnyonline/frok-vickrey-auction/api/auction"
	"github.com/johnnyonline/frok-vickrey-auction/auction"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// New return api router
func New(house *auction.AuctionHouse, logDB *logdb.LogDB, allowedOrigins string) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	auctionapi.New(house, logDB).
		Mount(router, "/auction")
	router.Path("/metrics").Handler(promhttp.Handler())

	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}))(router).ServeHTTP
}
