// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/johnnyonline/frok-vickrey-auction/api/utils"
	"github.com/johnnyonline/frok-vickrey-auction/auction"
	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
)

// Auction exposes the auction house over HTTP. State-changing endpoints take
// the acting account in the request body; authorization is enforced by the
// house itself, the API just relays the caller.
type Auction struct {
	house *auction.AuctionHouse
	logs  *logdb.LogDB
}

func New(house *auction.AuctionHouse, logs *logdb.LogDB) *Auction {
	return &Auction{
		house: house,
		logs:  logs,
	}
}

// domainError folds house-level rejections into 400s so callers can tell a
// rule violation from a server fault.
func domainError(err error) error {
	switch err {
	case nil:
		return nil
	case auction.ErrNotOwner, auction.ErrSettleOwnerOnly:
		return utils.Forbidden(err)
	default:
		return utils.BadRequest(err)
	}
}

func (at *Auction) handleGetAuction(w http.ResponseWriter, req *http.Request) error {
	record := at.house.CurrentAuction()
	if record == nil {
		return utils.HTTPError(errors.New("no auction created yet"), http.StatusNotFound)
	}
	return utils.WriteJSON(w, convertAuction(record))
}

func (at *Auction) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, &ConfigJSON{
		Owner:                           at.house.Owner(),
		ProceedsReceiver:                at.house.ProceedsReceiver(),
		TimeBuffer:                      at.house.TimeBuffer(),
		ReservePrice:                    at.house.ReservePrice().String(),
		MinBidIncrementPercentage:       at.house.MinBidIncrementPercentage(),
		Duration:                        at.house.Duration(),
		ProceedsReceiverSplitPercentage: at.house.ProceedsReceiverSplitPercentage(),
		Paused:                          at.house.Paused(),
		EmergencyPaused:                 at.house.EmergencyPaused(),
	})
}

func (at *Auction) handleGetPendingReturns(w http.ResponseWriter, req *http.Request) error {
	addr, err := frok.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return utils.WriteJSON(w, &PendingReturnsJSON{
		Address: addr,
		Amount:  at.house.PendingReturns(addr).String(),
	})
}

func (at *Auction) handleCreateBid(w http.ResponseWriter, req *http.Request) error {
	var body BidRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, ok := parseAmount(body.Amount)
	if !ok {
		return utils.BadRequest(errors.New("invalid amount"))
	}
	if err := at.house.CreateBid(body.Bidder, body.NFTID, amount); err != nil {
		return domainError(err)
	}
	return utils.WriteJSON(w, convertAuction(at.house.CurrentAuction()))
}

func (at *Auction) handleCreateAuction(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.CreateAuction(body.Caller); err != nil {
		return domainError(err)
	}
	return utils.WriteJSON(w, convertAuction(at.house.CurrentAuction()))
}

func (at *Auction) handleSettleAuction(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.SettleAuction(body.Caller); err != nil {
		return domainError(err)
	}
	return utils.WriteJSON(w, convertAuction(at.house.CurrentAuction()))
}

func (at *Auction) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.Withdraw(body.Caller); err != nil {
		return domainError(err)
	}
	return utils.WriteJSON(w, &PendingReturnsJSON{
		Address: body.Caller,
		Amount:  at.house.PendingReturns(body.Caller).String(),
	})
}

func (at *Auction) handleWithdrawMultiple(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawMultipleRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.WithdrawMultiple(body.Caller, body.Addresses); err != nil {
		return domainError(err)
	}
	return utils.WriteJSON(w, map[string]bool{"ok": true})
}

func (at *Auction) handleSetOwner(w http.ResponseWriter, req *http.Request) error {
	var body SetAddressRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.SetOwner(body.Caller, body.Value); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleSetTimeBuffer(w http.ResponseWriter, req *http.Request) error {
	var body SetUint64Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.SetTimeBuffer(body.Caller, body.Value); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleSetReservePrice(w http.ResponseWriter, req *http.Request) error {
	var body SetAmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, ok := parseAmount(body.Value)
	if !ok {
		return utils.BadRequest(errors.New("invalid amount"))
	}
	if err := at.house.SetReservePrice(body.Caller, amount); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleSetMinBidIncrementPercentage(w http.ResponseWriter, req *http.Request) error {
	var body SetUint64Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.SetMinBidIncrementPercentage(body.Caller, body.Value); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleSetDuration(w http.ResponseWriter, req *http.Request) error {
	var body SetUint64Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.SetDuration(body.Caller, body.Value); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleEmergencyPause(w http.ResponseWriter, req *http.Request) error {
	var body CallerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := at.house.EmergencyPause(body.Caller); err != nil {
		return domainError(err)
	}
	return at.handleGetConfig(w, req)
}

func (at *Auction) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	if at.logs == nil {
		return utils.HTTPError(errors.New("event log not enabled"), http.StatusNotFound)
	}
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	events, err := at.logs.FilterEvents(req.Context(), convertEventFilter(&filter))
	if err != nil {
		return err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = convertEvent(ev)
	}
	return utils.WriteJSON(w, fes)
}

func (at *Auction) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetAuction))
	sub.Path("/config").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetConfig))
	sub.Path("/pending-returns/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetPendingReturns))

	sub.Path("/bids").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleCreateBid))
	sub.Path("/new").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleCreateAuction))
	sub.Path("/settle").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSettleAuction))
	sub.Path("/withdraw").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleWithdraw))
	sub.Path("/withdraw-multiple").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleWithdrawMultiple))

	sub.Path("/config/owner").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSetOwner))
	sub.Path("/config/time-buffer").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSetTimeBuffer))
	sub.Path("/config/reserve-price").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSetReservePrice))
	sub.Path("/config/min-bid-increment-percentage").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSetMinBidIncrementPercentage))
	sub.Path("/config/duration").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleSetDuration))
	sub.Path("/config/emergency-pause").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleEmergencyPause))

	sub.Path("/events").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(at.handleFilterEvents))
}
