// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
	"github.com/johnnyonline/frok-vickrey-auction/nft"
	"github.com/johnnyonline/frok-vickrey-auction/pricing"
	"github.com/johnnyonline/frok-vickrey-auction/state"
	"github.com/johnnyonline/frok-vickrey-auction/token"
)

// config is the owner-mutable parameter block. It lives in house storage so
// it survives restarts and reverts together with everything else.
type config struct {
	Owner           frok.Address
	SplitRecipient  frok.Address
	TimeBuffer      uint64
	ReservePrice    *big.Int
	IncrementPct    uint64
	Duration        uint64
	SplitPct        uint64
	Paused          bool
	EmergencyPaused bool
}

// Options configures a new auction house.
type Options struct {
	State         *state.State
	Token         *token.Token
	NFT           *nft.NFT
	PriceProvider pricing.PriceProvider
	LogDB         *logdb.LogDB // optional event log

	Owner                           frok.Address
	ProceedsReceiver                frok.Address
	TimeBuffer                      uint64
	ReservePrice                    *big.Int
	MinBidIncrementPercentage       uint64
	Duration                        uint64
	ProceedsReceiverSplitPercentage uint64

	// Now overrides the clock, mostly for tests. Defaults to wall time.
	Now func() uint64
}

// AuctionHouse runs one auction at a time over the payment token and NFT.
// All public operations serialize on an internal mutex and apply
// all-or-nothing through a state checkpoint, so concurrent bidders observe
// the same ordering guarantees the original single-threaded contract gave.
type AuctionHouse struct {
	mu sync.Mutex

	addr     frok.Address
	state    *state.State
	token    *token.Token
	nft      *nft.NFT
	provider pricing.PriceProvider
	logs     *logdb.LogDB
	logger   *slog.Logger
	now      func() uint64

	// events staged by the running operation, flushed on success only
	staged []*logdb.Event
}

// New creates an auction house. On a fresh state the given parameters become
// the genesis configuration; on a previously committed state the stored
// configuration wins and the parameter fields of opts are ignored.
func New(opts Options) (*AuctionHouse, error) {
	if opts.State == nil || opts.Token == nil || opts.NFT == nil {
		return nil, errors.New("state, token and nft are required")
	}
	if opts.PriceProvider == nil {
		return nil, ErrInvalidPriceProvider
	}
	now := opts.Now
	if now == nil {
		now = func() uint64 { return uint64(time.Now().Unix()) }
	}

	h := &AuctionHouse{
		addr:     frok.AuctionHouseAddr,
		state:    opts.State,
		token:    opts.Token,
		nft:      opts.NFT,
		provider: opts.PriceProvider,
		logs:     opts.LogDB,
		logger:   slog.With("pkg", "auction"),
		now:      now,
	}

	if h.getConfig() == nil {
		if opts.Owner.IsZero() {
			return nil, ErrZeroOwner
		}
		if opts.MinBidIncrementPercentage < frok.MinBidIncrementPercentageFloor ||
			opts.MinBidIncrementPercentage > frok.MinBidIncrementPercentageCeil {
			return nil, ErrIncrementOutOfRange
		}
		if opts.Duration < frok.AuctionDurationFloor || opts.Duration > frok.AuctionDurationCeil {
			return nil, ErrDurationOutOfRange
		}
		if opts.ProceedsReceiverSplitPercentage > 100 {
			return nil, errors.New("split percentage out of range")
		}
		reserve := opts.ReservePrice
		if reserve == nil {
			reserve = &big.Int{}
		}
		h.setConfig(&config{
			Owner:          opts.Owner,
			SplitRecipient: opts.ProceedsReceiver,
			TimeBuffer:     opts.TimeBuffer,
			ReservePrice:   reserve,
			IncrementPct:   opts.MinBidIncrementPercentage,
			Duration:       opts.Duration,
			SplitPct:       opts.ProceedsReceiverSplitPercentage,
		})
		if err := h.state.Commit(); err != nil {
			return nil, errors.Wrap(err, "commit genesis config")
		}
		h.logger.Info("auction house deployed",
			"owner", opts.Owner,
			"reservePrice", reserve.String(),
			"duration", opts.Duration)
	}
	return h, nil
}

func (h *AuctionHouse) getConfig() (cfg *config) {
	h.state.DecodeStorage(h.addr, configKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		var c config
		if err := rlp.DecodeBytes(raw, &c); err != nil {
			return err
		}
		cfg = &c
		return nil
	})
	return
}

func (h *AuctionHouse) setConfig(cfg *config) {
	h.state.EncodeStorage(h.addr, configKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(cfg)
	})
}

// runAtomic executes fn under the house lock inside a state checkpoint.
// Any error rolls everything back; success commits and flushes staged
// events to the log.
func (h *AuctionHouse) runAtomic(fn func(cfg *config) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.staged = h.staged[:0]
	rev := h.state.NewCheckpoint()
	cfg := h.getConfig()
	if err := fn(cfg); err != nil {
		h.state.RevertTo(rev)
		return err
	}
	if err := h.state.Err(); err != nil {
		h.state.RevertTo(rev)
		return err
	}
	if err := h.state.Commit(); err != nil {
		return err
	}
	h.flushEvents()
	return nil
}

func (h *AuctionHouse) emit(ev *logdb.Event) {
	if h.logs == nil {
		return
	}
	ev.Time = h.now()
	h.staged = append(h.staged, ev)
}

func (h *AuctionHouse) flushEvents() {
	for _, ev := range h.staged {
		if err := h.logs.Insert(ev); err != nil {
			h.logger.Warn("could not record event", "name", ev.Name, "err", err)
		}
	}
	h.staged = h.staged[:0]
}

// ----------------------------------------------------------------------------
// read-only queries

// Owner returns the house owner.
func (h *AuctionHouse) Owner() frok.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().Owner
}

// ProceedsReceiver returns the account receiving the split share at settlement.
func (h *AuctionHouse) ProceedsReceiver() frok.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().SplitRecipient
}

// TimeBuffer returns the anti-snipe extension window in seconds.
func (h *AuctionHouse) TimeBuffer() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().TimeBuffer
}

// ReservePrice returns the minimum first bid.
func (h *AuctionHouse) ReservePrice() *big.Int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return new(big.Int).Set(h.getConfig().ReservePrice)
}

// MinBidIncrementPercentage returns the outbid threshold percentage.
func (h *AuctionHouse) MinBidIncrementPercentage() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().IncrementPct
}

// Duration returns the auction window length in seconds.
func (h *AuctionHouse) Duration() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().Duration
}

// ProceedsReceiverSplitPercentage returns the receiver's settlement share.
func (h *AuctionHouse) ProceedsReceiverSplitPercentage() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().SplitPct
}

// Paused reports whether the lifecycle gate is armed. It starts false and
// flips when the first auction is created.
func (h *AuctionHouse) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().Paused
}

// EmergencyPaused reports whether the owner pulled the kill switch.
func (h *AuctionHouse) EmergencyPaused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getConfig().EmergencyPaused
}

// PriceProvider returns the provider used to compute clearing prices.
func (h *AuctionHouse) PriceProvider() pricing.PriceProvider {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.provider
}

// CurrentAuction returns a copy of the active auction record, or nil if no
// auction was ever created.
func (h *AuctionHouse) CurrentAuction() *Auction {
	h.mu.Lock()
	defer h.mu.Unlock()
	record := h.getAuction()
	if record == nil {
		return nil
	}
	return record.Copy()
}

// ----------------------------------------------------------------------------
// owner-only configuration

// SetOwner hands the house to a new owner.
func (h *AuctionHouse) SetOwner(caller, newOwner frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if newOwner.IsZero() {
			return ErrZeroOwner
		}
		cfg.Owner = newOwner
		h.setConfig(cfg)
		h.logger.Info("owner updated", "owner", newOwner)
		return nil
	})
}

// SetTimeBuffer updates the anti-snipe extension window.
func (h *AuctionHouse) SetTimeBuffer(caller frok.Address, timeBuffer uint64) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		cfg.TimeBuffer = timeBuffer
		h.setConfig(cfg)
		return nil
	})
}

// SetReservePrice updates the minimum first bid.
func (h *AuctionHouse) SetReservePrice(caller frok.Address, reservePrice *big.Int) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if reservePrice == nil || reservePrice.Sign() < 0 {
			return errors.New("invalid reserve price")
		}
		cfg.ReservePrice = new(big.Int).Set(reservePrice)
		h.setConfig(cfg)
		return nil
	})
}

// SetMinBidIncrementPercentage updates the outbid threshold percentage.
func (h *AuctionHouse) SetMinBidIncrementPercentage(caller frok.Address, pct uint64) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if pct < frok.MinBidIncrementPercentageFloor || pct > frok.MinBidIncrementPercentageCeil {
			return ErrIncrementOutOfRange
		}
		cfg.IncrementPct = pct
		h.setConfig(cfg)
		return nil
	})
}

// SetDuration updates the auction window length.
func (h *AuctionHouse) SetDuration(caller frok.Address, duration uint64) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if duration < frok.AuctionDurationFloor || duration > frok.AuctionDurationCeil {
			return ErrDurationOutOfRange
		}
		cfg.Duration = duration
		h.setConfig(cfg)
		return nil
	})
}

// SetPriceProvider swaps the clearing price provider.
func (h *AuctionHouse) SetPriceProvider(caller frok.Address, provider pricing.PriceProvider) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		if provider == nil {
			return ErrInvalidPriceProvider
		}
		h.provider = provider
		h.logger.Info("price provider updated")
		return nil
	})
}

// EmergencyPause flips the one-way kill switch. The running auction is
// abandoned: the current leader's escrowed bid moves into pending returns
// and the round degrades to a no-bid one. Funds recovery then runs through
// WithdrawMultiple, which sweeps pending returns to the owner.
func (h *AuctionHouse) EmergencyPause(caller frok.Address) error {
	return h.runAtomic(func(cfg *config) error {
		if caller != cfg.Owner {
			return ErrNotOwner
		}
		cfg.EmergencyPaused = true
		h.setConfig(cfg)

		if record := h.getAuction(); record != nil && !record.Settled && record.HasBid() {
			h.creditPendingReturns(record.Bidder, record.Bid)
			record.Bidder = frok.ZeroAddress
			record.Bid = &big.Int{}
			record.Price = &big.Int{}
			h.setAuction(record)
		}
		h.logger.Warn("emergency pause engaged", "by", caller)
		return nil
	})
}
