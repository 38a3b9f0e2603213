// Copyright (c) 2023 The Frok developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnnyonline/frok-vickrey-auction/auction"
	"github.com/johnnyonline/frok-vickrey-auction/frok"
	"github.com/johnnyonline/frok-vickrey-auction/logdb"
	"github.com/johnnyonline/frok-vickrey-auction/nft"
	"github.com/johnnyonline/frok-vickrey-auction/pricing"
	"github.com/johnnyonline/frok-vickrey-auction/state"
	"github.com/johnnyonline/frok-vickrey-auction/token"
)

var (
	deployer       = frok.BytesToAddress([]byte("deployer"))
	splitRecipient = frok.BytesToAddress([]byte("split-recipient"))
	alice          = frok.BytesToAddress([]byte("alice"))
	bob            = frok.BytesToAddress([]byte("bob"))
	charlie        = frok.BytesToAddress([]byte("charlie"))
)

const startingBalance = 1_000_000

type fakeClock struct {
	now uint64
}

func (c *fakeClock) Now() uint64 {
	return c.now
}

func (c *fakeClock) advance(seconds uint64) {
	c.now += seconds
}

type fixture struct {
	t     *testing.T
	clock *fakeClock
	token *token.Token
	nft   *nft.NFT
	house *auction.AuctionHouse
}

func newFixture(t *testing.T) *fixture {
	st := state.NewMem()
	clock := &fakeClock{now: 1_700_000_000}

	tk := token.New(frok.PaymentTokenAddr, st)
	for _, user := range []frok.Address{alice, bob, charlie} {
		tk.Mint(user, big.NewInt(startingBalance))
	}

	n := nft.New(frok.NFTAddr, st)
	n.Initialize(deployer)
	require.Nil(t, n.SetMinter(deployer, frok.AuctionHouseAddr))

	house, err := auction.New(auction.Options{
		State:                           st,
		Token:                           tk,
		NFT:                             n,
		PriceProvider:                   pricing.NewMidpoint(),
		Owner:                           deployer,
		ProceedsReceiver:                splitRecipient,
		TimeBuffer:                      100,
		ReservePrice:                    big.NewInt(100),
		MinBidIncrementPercentage:       5,
		Duration:                        3600,
		ProceedsReceiverSplitPercentage: 95,
		Now:                             clock.Now,
	})
	require.Nil(t, err)

	return &fixture{t: t, clock: clock, token: tk, nft: n, house: house}
}

// newCreatedFixture mirrors the deployed-and-created setup most scenarios use.
func newCreatedFixture(t *testing.T) *fixture {
	f := newFixture(t)
	require.Nil(t, f.house.CreateAuction(deployer))
	return f
}

func (f *fixture) bid(bidder frok.Address, nftID uint64, amount int64) error {
	f.token.Approve(bidder, frok.AuctionHouseAddr, big.NewInt(amount))
	return f.house.CreateBid(bidder, nftID, big.NewInt(amount))
}

func (f *fixture) balance(addr frok.Address) int64 {
	return f.token.BalanceOf(addr).Int64()
}

// createPendingReturns puts 100 and 200 into escrow for the two bidders.
func (f *fixture) createPendingReturns(first, second frok.Address) {
	require.Nil(f.t, f.bid(first, 0, 100))
	require.Nil(f.t, f.bid(second, 0, 200))
}

// ----------------------------------------------------------------------------
// initialization

func TestInitialConfig(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, deployer, f.house.Owner())
	assert.Equal(t, splitRecipient, f.house.ProceedsReceiver())
	assert.Equal(t, uint64(100), f.house.TimeBuffer())
	assert.Equal(t, int64(100), f.house.ReservePrice().Int64())
	assert.Equal(t, uint64(5), f.house.MinBidIncrementPercentage())
	assert.Equal(t, uint64(3600), f.house.Duration())
	assert.Equal(t, uint64(95), f.house.ProceedsReceiverSplitPercentage())
	assert.False(t, f.house.Paused())
	assert.False(t, f.house.EmergencyPaused())
	assert.Nil(t, f.house.CurrentAuction())
}

// ----------------------------------------------------------------------------
// owner control

func TestSetOwner(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.house.SetOwner(deployer, alice))
	assert.Equal(t, alice, f.house.Owner())
}

func TestSetOwnerZeroAddress(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetOwner(deployer, frok.ZeroAddress)
	assert.Equal(t, auction.ErrZeroOwner, err)
	assert.Equal(t, deployer, f.house.Owner())
}

func TestSetTimeBuffer(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.house.SetTimeBuffer(deployer, 200))
	assert.Equal(t, uint64(200), f.house.TimeBuffer())
}

func TestSetReservePrice(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.house.SetReservePrice(deployer, big.NewInt(200)))
	assert.Equal(t, int64(200), f.house.ReservePrice().Int64())
}

func TestSetMinBidIncrementPercentage(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.house.SetMinBidIncrementPercentage(deployer, 15))
	assert.Equal(t, uint64(15), f.house.MinBidIncrementPercentage())
}

func TestSetMinBidIncrementPercentageAboveRange(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetMinBidIncrementPercentage(deployer, 16)
	assert.Equal(t, auction.ErrIncrementOutOfRange, err)
	assert.Equal(t, uint64(5), f.house.MinBidIncrementPercentage())
}

func TestSetMinBidIncrementPercentageBelowRange(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetMinBidIncrementPercentage(deployer, 1)
	assert.Equal(t, auction.ErrIncrementOutOfRange, err)
	assert.Equal(t, uint64(5), f.house.MinBidIncrementPercentage())
}

func TestSetDuration(t *testing.T) {
	f := newFixture(t)
	assert.Nil(t, f.house.SetDuration(deployer, 4000))
	assert.Equal(t, uint64(4000), f.house.Duration())
}

func TestSetDurationAboveRange(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetDuration(deployer, 260000)
	assert.Equal(t, auction.ErrDurationOutOfRange, err)
	assert.Equal(t, uint64(3600), f.house.Duration())
}

func TestSetDurationBelowRange(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetDuration(deployer, 3599)
	assert.Equal(t, auction.ErrDurationOutOfRange, err)
	assert.Equal(t, uint64(3600), f.house.Duration())
}

func TestSetPriceProviderNil(t *testing.T) {
	f := newFixture(t)
	err := f.house.SetPriceProvider(deployer, nil)
	assert.Equal(t, auction.ErrInvalidPriceProvider, err)
}

func TestEmergencyPause(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.house.EmergencyPaused())
	assert.Nil(t, f.house.EmergencyPause(deployer))
	assert.True(t, f.house.EmergencyPaused())
}

func TestOwnerOpsRejectNonOwner(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, auction.ErrNotOwner, f.house.SetOwner(alice, alice))
	assert.Equal(t, auction.ErrNotOwner, f.house.SetTimeBuffer(alice, 200))
	assert.Equal(t, auction.ErrNotOwner, f.house.SetReservePrice(alice, big.NewInt(200)))
	assert.Equal(t, auction.ErrNotOwner, f.house.SetMinBidIncrementPercentage(alice, 10))
	assert.Equal(t, auction.ErrNotOwner, f.house.SetDuration(alice, 4000))
	assert.Equal(t, auction.ErrNotOwner, f.house.SetPriceProvider(alice, pricing.NewMidpoint()))
	assert.Equal(t, auction.ErrNotOwner, f.house.EmergencyPause(alice))
	assert.Equal(t, auction.ErrNotOwner, f.house.CreateAuction(alice))
}

// ----------------------------------------------------------------------------
// auction creation

func TestCreateAuction(t *testing.T) {
	f := newCreatedFixture(t)

	record := f.house.CurrentAuction()
	require.NotNil(t, record)
	assert.Equal(t, uint64(0), record.NFTID)
	assert.False(t, record.Settled)
	assert.False(t, record.HasBid())
	assert.Equal(t, record.StartTime+f.house.Duration(), record.EndTime)
	assert.True(t, f.house.Paused())

	// the house escrows the token until settlement
	owner, err := f.nft.OwnerOf(0)
	require.Nil(t, err)
	assert.Equal(t, frok.AuctionHouseAddr, owner)
}

func TestCreateAuctionWhilePreviousUnsettled(t *testing.T) {
	f := newCreatedFixture(t)
	assert.Equal(t, auction.ErrNotSettled, f.house.CreateAuction(deployer))
}

// ----------------------------------------------------------------------------
// bidding

func TestCreateBid(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))

	record := f.house.CurrentAuction()
	assert.Equal(t, alice, record.Bidder)
	assert.Equal(t, int64(100), record.Bid.Int64())
	assert.Equal(t, int64(100), record.Price.Int64())
	assert.Equal(t, record.StartTime+f.house.Duration(), record.EndTime)
	assert.Equal(t, int64(startingBalance-100), f.balance(alice))
}

func TestCreateBidOverLastBid(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	require.Nil(t, f.bid(bob, 0, 1000))

	record := f.house.CurrentAuction()
	assert.Equal(t, bob, record.Bidder)
	assert.Equal(t, int64(1000), record.Bid.Int64())
	// midpoint provider: get_price(1000, 100) = 550
	assert.Equal(t, int64(550), record.Price.Int64())
	assert.Equal(t, record.StartTime+f.house.Duration(), record.EndTime)
}

func TestCreateBidWrongNFTID(t *testing.T) {
	f := newCreatedFixture(t)
	err := f.bid(alice, 1, 100)
	assert.Equal(t, auction.ErrWrongNFT, err)
}

func TestCreateBidNoAuction(t *testing.T) {
	f := newFixture(t)
	err := f.bid(alice, 0, 100)
	assert.Equal(t, auction.ErrWrongNFT, err)
}

func TestCreateBidAuctionExpired(t *testing.T) {
	f := newCreatedFixture(t)
	before := f.house.CurrentAuction()

	f.clock.advance(4000)
	err := f.bid(alice, 0, 100)
	assert.Equal(t, auction.ErrAuctionExpired, err)

	after := f.house.CurrentAuction()
	assert.Equal(t, before, after)
	assert.Equal(t, int64(startingBalance), f.balance(alice))
}

func TestCreateBidValueTooLow(t *testing.T) {
	f := newCreatedFixture(t)
	err := f.bid(alice, 0, 1)
	assert.Equal(t, auction.ErrBelowReserve, err)
}

func TestCreateBidNotOverPrevBid(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))

	err := f.bid(bob, 0, 101)
	assert.Equal(t, auction.ErrBelowMinIncrement, err)

	record := f.house.CurrentAuction()
	assert.Equal(t, alice, record.Bidder)
	assert.Equal(t, int64(100), record.Bid.Int64())
	assert.Equal(t, int64(100), record.Price.Int64())
	assert.Equal(t, int64(startingBalance), f.balance(bob))
}

func TestCreateBidIncrementBoundary(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))

	// exactly prev + 5% is rejected, one unit above clears
	assert.Equal(t, auction.ErrBelowMinIncrement, f.bid(bob, 0, 105))
	assert.Nil(t, f.bid(bob, 0, 106))
	assert.Equal(t, bob, f.house.CurrentAuction().Bidder)
}

func TestCreateBidWithoutApprovalRollsBack(t *testing.T) {
	f := newCreatedFixture(t)

	err := f.house.CreateBid(alice, 0, big.NewInt(100))
	assert.Error(t, err)

	record := f.house.CurrentAuction()
	assert.False(t, record.HasBid())
	assert.Equal(t, int64(startingBalance), f.balance(alice))
	assert.Equal(t, int64(0), f.balance(frok.AuctionHouseAddr))
}

func TestPriceNeverExceedsBid(t *testing.T) {
	f := newCreatedFixture(t)
	amounts := []int64{100, 1000, 2000, 4000}
	bidders := []frok.Address{alice, bob, alice, bob}
	for i, amount := range amounts {
		require.Nil(t, f.bid(bidders[i], 0, amount))
		record := f.house.CurrentAuction()
		assert.True(t, record.Price.Cmp(record.Bid) <= 0)
	}
}

// ----------------------------------------------------------------------------
// withdrawals

func TestCreateSecondBidAndWithdraw(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	aliceAfterBid := f.balance(alice)

	require.Nil(t, f.bid(bob, 0, 1000))
	assert.Equal(t, int64(100), f.house.PendingReturns(alice).Int64())

	require.Nil(t, f.house.Withdraw(alice))
	assert.Equal(t, aliceAfterBid+100, f.balance(alice))
	assert.Equal(t, int64(0), f.house.PendingReturns(alice).Int64())

	// a second withdraw is a no-op
	require.Nil(t, f.house.Withdraw(alice))
	assert.Equal(t, aliceAfterBid+100, f.balance(alice))
}

func TestWithdrawZeroPending(t *testing.T) {
	f := newCreatedFixture(t)
	before := f.balance(alice)
	assert.Nil(t, f.house.Withdraw(alice))
	assert.Equal(t, before, f.balance(alice))
}

func TestEmergencyWithdraw(t *testing.T) {
	f := newCreatedFixture(t)
	deployerBefore := f.balance(deployer)

	f.createPendingReturns(alice, bob)
	require.Nil(t, f.house.EmergencyPause(deployer))

	assert.Equal(t, deployerBefore, f.balance(deployer))
	assert.Equal(t, int64(startingBalance-100), f.balance(alice))
	assert.Equal(t, int64(startingBalance-200), f.balance(bob))
	assert.Equal(t, int64(100), f.house.PendingReturns(alice).Int64())
	assert.Equal(t, int64(200), f.house.PendingReturns(bob).Int64())

	// anyone can trigger the sweep; under emergency pause it pays the owner
	require.Nil(t, f.house.WithdrawMultiple(alice, []frok.Address{alice, bob}))

	assert.Equal(t, int64(0), f.house.PendingReturns(alice).Int64())
	assert.Equal(t, int64(0), f.house.PendingReturns(bob).Int64())
	assert.Equal(t, int64(startingBalance-100), f.balance(alice))
	assert.Equal(t, int64(startingBalance-200), f.balance(bob))
	assert.Equal(t, deployerBefore+300, f.balance(deployer))
}

func TestWithdrawMultiple(t *testing.T) {
	f := newCreatedFixture(t)
	f.createPendingReturns(alice, bob)
	require.Nil(t, f.bid(charlie, 0, 300))

	// no emergency: every listed bidder gets their own balance back,
	// zero balances don't block the batch
	require.Nil(t, f.house.WithdrawMultiple(charlie, []frok.Address{alice, bob, charlie}))
	assert.Equal(t, int64(startingBalance), f.balance(alice))
	assert.Equal(t, int64(startingBalance), f.balance(bob))
	assert.Equal(t, int64(startingBalance-300), f.balance(charlie))
}

// ----------------------------------------------------------------------------
// settlement

func TestSettleAuctionNoBid(t *testing.T) {
	f := newCreatedFixture(t)
	require.False(t, f.house.CurrentAuction().Settled)

	f.clock.advance(f.house.Duration())

	err := f.house.SettleAuction(alice)
	assert.Equal(t, auction.ErrSettleOwnerOnly, err)

	f.clock.advance(frok.AuctionSettlementOnlyOwnerBuffer)
	assert.Nil(t, f.house.SettleAuction(alice))

	assert.True(t, f.house.CurrentAuction().Settled)
	owner, err := f.nft.OwnerOf(0)
	require.Nil(t, err)
	assert.Equal(t, deployer, owner)
}

func TestSettleAuctionWhenNotPaused(t *testing.T) {
	f := newFixture(t)
	err := f.house.SettleAuction(deployer)
	assert.Equal(t, auction.ErrNotPaused, err)
}

func TestSettleAuctionBeforeEnd(t *testing.T) {
	f := newCreatedFixture(t)
	err := f.house.SettleAuction(deployer)
	assert.Equal(t, auction.ErrAuctionNotEnded, err)
}

func TestSettleTwice(t *testing.T) {
	f := newCreatedFixture(t)
	f.clock.advance(f.house.Duration())
	require.Nil(t, f.house.SettleAuction(deployer))
	assert.Equal(t, auction.ErrAlreadySettled, f.house.SettleAuction(deployer))
}

func TestSettleCurrentAndCreateNewAuctionNoBid(t *testing.T) {
	f := newCreatedFixture(t)
	oldID := f.house.CurrentAuction().NFTID

	f.clock.advance(f.house.Duration())
	require.Nil(t, f.house.SettleAuction(deployer))
	require.Nil(t, f.house.CreateAuction(deployer))

	record := f.house.CurrentAuction()
	assert.False(t, record.Settled)
	assert.True(t, oldID < record.NFTID)

	owner, err := f.nft.OwnerOf(oldID)
	require.Nil(t, err)
	assert.Equal(t, deployer, owner)
}

func TestSettleAuctionWithBid(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	f.clock.advance(f.house.Duration())

	deployerBefore := f.balance(deployer)
	recipientBefore := f.balance(splitRecipient)

	require.Nil(t, f.house.SettleAuction(deployer))

	assert.True(t, f.house.CurrentAuction().Settled)
	owner, err := f.nft.OwnerOf(0)
	require.Nil(t, err)
	assert.Equal(t, alice, owner)
	assert.Equal(t, deployerBefore+5, f.balance(deployer))
	assert.Equal(t, recipientBefore+95, f.balance(splitRecipient))
}

func TestSettleAuctionMultipleBids(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	require.Nil(t, f.bid(bob, 0, 1000))
	f.clock.advance(f.house.Duration())

	deployerBefore := f.balance(deployer)
	recipientBefore := f.balance(splitRecipient)

	require.Nil(t, f.house.SettleAuction(deployer))

	// price = 550; receiver gets floor(550*95/100) = 522, owner the rest
	assert.Equal(t, deployerBefore+28, f.balance(deployer))
	assert.Equal(t, recipientBefore+522, f.balance(splitRecipient))

	owner, err := f.nft.OwnerOf(0)
	require.Nil(t, err)
	assert.Equal(t, bob, owner)

	// outbid alice gets her raw bid back
	assert.Equal(t, int64(startingBalance-100), f.balance(alice))
	require.Nil(t, f.house.Withdraw(alice))
	assert.Equal(t, int64(startingBalance), f.balance(alice))

	// the winner's surplus over the clearing price is withdrawable too
	assert.Equal(t, int64(1000-550), f.house.PendingReturns(bob).Int64())
	require.Nil(t, f.house.Withdraw(bob))
	assert.Equal(t, int64(startingBalance-550), f.balance(bob))
}

func TestBidderOutbidsPrevBidder(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	require.Nil(t, f.bid(bob, 0, 1000))
	require.Nil(t, f.bid(alice, 0, 2000))
	f.clock.advance(f.house.Duration())

	price := f.house.CurrentAuction().Price.Int64()
	// midpoint of (2000, 550)
	assert.Equal(t, int64(1275), price)

	deployerBefore := f.balance(deployer)
	recipientBefore := f.balance(splitRecipient)

	require.Nil(t, f.house.SettleAuction(deployer))
	require.Nil(t, f.house.CreateAuction(deployer))

	assert.Equal(t, int64(startingBalance-2100), f.balance(alice))
	assert.Equal(t, int64(startingBalance-1000), f.balance(bob))

	require.Nil(t, f.house.Withdraw(alice))
	require.Nil(t, f.house.Withdraw(bob))

	// alice ends up paying exactly the clearing price
	assert.Equal(t, startingBalance-price, f.balance(alice))
	assert.Equal(t, int64(startingBalance), f.balance(bob))

	assert.False(t, f.house.CurrentAuction().Settled)
	owner, err := f.nft.OwnerOf(0)
	require.Nil(t, err)
	assert.Equal(t, alice, owner)

	receiverShare := price * 95 / 100
	assert.Equal(t, deployerBefore+(price-receiverShare), f.balance(deployer))
	assert.Equal(t, recipientBefore+receiverShare, f.balance(splitRecipient))
}

// ----------------------------------------------------------------------------
// extension

func TestCreateBidAuctionExtended(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))

	f.clock.advance(3550) // 50 seconds left, inside the buffer
	require.Nil(t, f.bid(bob, 0, 1000))

	record := f.house.CurrentAuction()
	assert.Equal(t, f.clock.Now()+f.house.TimeBuffer(), record.EndTime)
	assert.False(t, record.Settled)
}

func TestCreateBidAuctionNotExtended(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))
	endBefore := f.house.CurrentAuction().EndTime

	f.clock.advance(1000) // plenty of time left
	require.Nil(t, f.bid(bob, 0, 1000))
	assert.Equal(t, endBefore, f.house.CurrentAuction().EndTime)
}

func TestCreateBidAfterDurationExpires(t *testing.T) {
	f := newCreatedFixture(t)
	require.Nil(t, f.bid(alice, 0, 100))

	f.clock.advance(f.house.Duration() + 1)
	err := f.bid(bob, 0, 1000)
	assert.Equal(t, auction.ErrAuctionExpired, err)
}

// ----------------------------------------------------------------------------
// event log

func TestEventsRecorded(t *testing.T) {
	st := state.NewMem()
	clock := &fakeClock{now: 1_700_000_000}
	logs, err := logdb.NewMem()
	require.Nil(t, err)
	defer logs.Close()

	tk := token.New(frok.PaymentTokenAddr, st)
	tk.Mint(alice, big.NewInt(startingBalance))

	n := nft.New(frok.NFTAddr, st)
	n.Initialize(deployer)
	require.Nil(t, n.SetMinter(deployer, frok.AuctionHouseAddr))

	house, err := auction.New(auction.Options{
		State:                           st,
		Token:                           tk,
		NFT:                             n,
		PriceProvider:                   pricing.NewMidpoint(),
		LogDB:                           logs,
		Owner:                           deployer,
		ProceedsReceiver:                splitRecipient,
		TimeBuffer:                      100,
		ReservePrice:                    big.NewInt(100),
		MinBidIncrementPercentage:       5,
		Duration:                        3600,
		ProceedsReceiverSplitPercentage: 95,
		Now:                             clock.Now,
	})
	require.Nil(t, err)

	require.Nil(t, house.CreateAuction(deployer))
	tk.Approve(alice, frok.AuctionHouseAddr, big.NewInt(100))
	require.Nil(t, house.CreateBid(alice, 0, big.NewInt(100)))

	// a failed bid must not leave a trace
	assert.Error(t, house.CreateBid(alice, 1, big.NewInt(1000)))

	clock.advance(3600)
	require.Nil(t, house.SettleAuction(deployer))

	events, err := logs.FilterEvents(context.Background(), nil)
	require.Nil(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, logdb.AuctionCreated, events[0].Name)
	assert.Equal(t, logdb.AuctionBid, events[1].Name)
	assert.Equal(t, alice, events[1].Address)
	assert.Equal(t, logdb.AuctionSettled, events[2].Name)
}
