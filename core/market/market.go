// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package market

import (
	"math"
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/matching"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
	"github.com/gridsingularity/gsy-e-sub001/metrics"

	"github.com/pkg/errors"
)

// energyTolerance is how close a requested energy has to be to the order's
// energy to count as a full acceptance.
const energyTolerance = 1e-8

// Broker is the event sink of a market. Events are delivered synchronously.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks github.com/gridsingularity/gsy-e-sub001/core/market Broker
type Broker interface {
	Send(event events.Event)
}

// IDGenerator hands out process unique ids for orders and trades.
type IDGenerator interface {
	NextID() string
}

// Market is the ledger of one time slot of one area: its live offers and
// bids and the trades they produced.
//
// A Market is not safe for concurrent use. Every mutation happens while the
// caller holds the process wide market lock, events are sent on the calling
// goroutine and their handlers may call back into any market.
type Market struct {
	log *logging.Logger
	cfg Config

	id       string
	name     string
	timeSlot time.Time
	fees     fee.Grid
	broker   Broker
	idgen    IDGenerator
	matcher  matching.Algorithm

	readOnly bool
	now      time.Time
	tick     int

	offers       *book
	bids         *book
	trades       []types.Trade
	offerHistory []types.Order
	bidHistory   []types.Order
	stats        *Stats
}

// New returns the market of the given area for the given slot.
func New(
	log *logging.Logger,
	cfg Config,
	id, name string,
	timeSlot time.Time,
	fees fee.Grid,
	broker Broker,
	idgen IDGenerator,
) *Market {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	m := &Market{
		log:      log,
		cfg:      cfg,
		id:       id,
		name:     name,
		timeSlot: timeSlot,
		fees:     fees,
		broker:   broker,
		idgen:    idgen,
		now:      timeSlot,
		offers:   newBook(types.SideSell),
		bids:     newBook(types.SideBuy),
		stats:    newStats(),
	}
	if cfg.Type.IsTwoSided() {
		// only fails for one sided markets
		m.matcher, _ = matching.New(cfg.Type)
	}
	return m
}

// ReloadConf is used in order to reload the internal configuration of
// the market.
func (m *Market) ReloadConf(cfg Config) {
	m.log.Info("reloading configuration")
	if m.log.GetLevel() != cfg.Level.Get() {
		m.log.Info("updating log level",
			logging.String("old", m.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		m.log.SetLevel(cfg.Level.Get())
	}
	// the market type of a live market never changes
	cfg.Type = m.cfg.Type
	m.cfg = cfg
}

func (m *Market) ID() string             { return m.id }
func (m *Market) Name() string           { return m.name }
func (m *Market) TimeSlot() time.Time    { return m.timeSlot }
func (m *Market) Type() types.MarketType { return m.cfg.Type }
func (m *Market) Fees() fee.Grid         { return m.fees }
func (m *Market) IsReadOnly() bool       { return m.readOnly }
func (m *Market) Now() time.Time         { return m.now }
func (m *Market) CurrentTick() int       { return m.tick }
func (m *Market) Stats() *Stats          { return m.stats }

// IsTradable returns true if the market still accepts orders and matches
// bids against offers itself.
func (m *Market) IsTradable() bool {
	return !m.readOnly && m.matcher != nil
}

// SetTime moves the market clock, stamped on new orders and trades.
func (m *Market) SetTime(tick int, now time.Time) {
	m.tick = tick
	m.now = now
}

// Freeze turns the market into a past market, all later mutations fail.
func (m *Market) Freeze() {
	m.readOnly = true
}

func (m *Market) bookOf(side types.Side) *book {
	if side == types.SideBuy {
		return m.bids
	}
	return m.offers
}

// PlaceOffer inserts a new offer. Unless WithoutFees is given the grid fee
// of the market is added to the price.
func (m *Market) PlaceOffer(price, energy float64, seller types.TraderDetails, opts ...OrderOption) (types.Order, error) {
	return m.place(types.SideSell, price, energy, seller, opts...)
}

// PlaceBid inserts a new bid. Unless WithoutFees is given the grid fee of the
// market is added to the price.
func (m *Market) PlaceBid(price, energy float64, buyer types.TraderDetails, opts ...OrderOption) (types.Order, error) {
	if !m.cfg.Type.IsTwoSided() {
		return types.Order{}, errors.Wrapf(types.ErrUnsupportedOrder, "bids on %s market %s", m.cfg.Type, m.id)
	}
	return m.place(types.SideBuy, price, energy, buyer, opts...)
}

// Place inserts an order of the given side.
func (m *Market) Place(side types.Side, price, energy float64, trader types.TraderDetails, opts ...OrderOption) (types.Order, error) {
	if side == types.SideBuy {
		return m.PlaceBid(price, energy, trader, opts...)
	}
	return m.PlaceOffer(price, energy, trader, opts...)
}

func (m *Market) place(side types.Side, price, energy float64, trader types.TraderDetails, opts ...OrderOption) (types.Order, error) {
	o := orderOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if m.readOnly {
		return types.Order{}, errors.Wrapf(types.ErrMarketReadOnly, "market %s", m.id)
	}
	if math.IsNaN(energy) || math.IsNaN(price) || math.IsInf(price, 0) {
		return types.Order{}, errors.Wrapf(types.ErrInvalidOrder, "%s with price %f and energy %f", side, price, energy)
	}
	if (!o.signed && energy <= 0) || energy == 0 {
		return types.Order{}, errors.Wrapf(types.ErrInvalidOrder, "%s energy must be positive, got %f", side, energy)
	}

	finalPrice := price
	if !o.skipFees {
		finalPrice = m.fees.Apply(price, energy)
	}
	if finalPrice < 0 {
		return types.Order{}, errors.Wrapf(types.ErrNegativePrice, "%s price %f after fees", side, finalPrice)
	}

	id := o.id
	if id == "" {
		id = m.idgen.NextID()
	}
	if _, ok := m.offers.orders[id]; ok {
		return types.Order{}, errors.Wrapf(types.ErrInvalidOrder, "duplicate order id %s", id)
	}
	if _, ok := m.bids.orders[id]; ok {
		return types.Order{}, errors.Wrapf(types.ErrInvalidOrder, "duplicate order id %s", id)
	}

	originalPrice := price
	if o.originalPrice != nil {
		originalPrice = *o.originalPrice
	}
	order := types.Order{
		ID:            id,
		Side:          side,
		Energy:        energy,
		Price:         finalPrice,
		OriginalPrice: originalPrice,
		Trader:        trader,
		CreatedAt:     m.now,
		TimeSlot:      m.timeSlot,
		Attributes:    o.attributes,
		Requirements:  o.requirements,
	}
	order = order.Clone()

	m.bookOf(side).insert(order)
	m.appendHistory(order)
	metrics.OrderCounterInc(m.name, side.String())

	if m.log.IsDebug() {
		m.log.Debug("order placed",
			logging.MarketID(m.id),
			logging.Order(order),
		)
	}
	if !o.skipEvent {
		m.broker.Send(events.NewOrderPlaced(m.id, order))
	}
	return order, nil
}

func (m *Market) appendHistory(o types.Order) {
	if o.Side == types.SideBuy {
		m.bidHistory = append(m.bidHistory, o)
		return
	}
	m.offerHistory = append(m.offerHistory, o)
}

// DispatchPlaced sends the ORDER_PLACED event of an order placed with
// WithoutEvent. It does nothing if the order is no longer live.
func (m *Market) DispatchPlaced(side types.Side, id string) {
	o, ok := m.bookOf(side).get(id)
	if !ok {
		return
	}
	m.broker.Send(events.NewOrderPlaced(m.id, o))
}

// CancelOffer removes a live offer.
func (m *Market) CancelOffer(id string) error {
	return m.Cancel(types.SideSell, id)
}

// CancelBid removes a live bid.
func (m *Market) CancelBid(id string) error {
	return m.Cancel(types.SideBuy, id)
}

// Cancel removes a live order and sends ORDER_DELETED.
func (m *Market) Cancel(side types.Side, id string) error {
	if m.readOnly {
		return errors.Wrapf(types.ErrMarketReadOnly, "market %s", m.id)
	}
	o, ok := m.bookOf(side).remove(id)
	if !ok {
		return errors.Wrapf(types.ErrOrderNotFound, "%s %s in market %s", side, id, m.id)
	}
	m.log.Debug("order deleted",
		logging.MarketID(m.id),
		logging.Order(o),
	)
	m.broker.Send(events.NewOrderDeleted(m.id, o))
	return nil
}

// AcceptOffer sells (part of) an offer to buyer.
func (m *Market) AcceptOffer(id string, buyer types.TraderDetails, opts ...AcceptOption) (types.Trade, error) {
	return m.Accept(types.SideSell, id, buyer, opts...)
}

// AcceptBid buys (part of) a bid from seller.
func (m *Market) AcceptBid(id string, seller types.TraderDetails, opts ...AcceptOption) (types.Trade, error) {
	return m.Accept(types.SideBuy, id, seller, opts...)
}

// Accept trades (part of) a live order with the counterparty. If only part
// of the order is accepted, the accepted part keeps the order id and a
// residual with a fresh id is put back in the book; ORDER_SPLIT is sent
// before TRADE.
func (m *Market) Accept(side types.Side, id string, counterparty types.TraderDetails, opts ...AcceptOption) (types.Trade, error) {
	o := acceptOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return m.accept(side, id, counterparty, o)
}

func (m *Market) accept(side types.Side, id string, counterparty types.TraderDetails, o acceptOptions) (types.Trade, error) {
	if m.readOnly {
		return types.Trade{}, errors.Wrapf(types.ErrMarketReadOnly, "market %s", m.id)
	}
	b := m.bookOf(side)
	order, ok := b.get(id)
	if !ok {
		return types.Trade{}, errors.Wrapf(types.ErrOrderNotFound, "%s %s in market %s", side, id, m.id)
	}

	energy := order.Energy
	if o.energy != nil && math.Abs(*o.energy-order.Energy) > energyTolerance {
		energy = *o.energy
	}
	if err := m.validateAcceptance(order, counterparty, energy, o); err != nil {
		return types.Trade{}, err
	}

	seq := b.seqOf(id)
	b.remove(id)

	accepted := order
	var residual *types.Order
	if energy != order.Energy {
		ratio := energy / order.Energy
		accepted.Energy = energy
		accepted.Price = order.Price * ratio
		accepted.OriginalPrice = order.OriginalPrice * ratio

		r := order.Clone()
		r.ID = m.idgen.NextID()
		r.Energy = order.Energy - energy
		r.Price = order.Price - accepted.Price
		r.OriginalPrice = order.OriginalPrice - accepted.OriginalPrice
		b.insertAt(r, seq)
		m.appendHistory(r)
		residual = &r

		m.log.Debug("order split",
			logging.MarketID(m.id),
			logging.Order(order),
			logging.String("residual", r.ID),
		)
		m.broker.Send(events.NewOrderSplit(m.id, order, accepted, r))
	}

	tradePrice := accepted.Price
	if o.rate != nil {
		tradePrice = *o.rate * energy
	}

	trade := types.Trade{
		ID:             m.idgen.NextID(),
		MarketID:       m.id,
		Time:           m.now,
		Order:          accepted,
		Energy:         energy,
		Price:          tradePrice,
		Residual:       residual,
		AlreadyTracked: o.alreadyTracked,
		Balancing:      o.balancing,
	}
	if side == types.SideBuy {
		trade.Seller, trade.Buyer = counterparty, order.Trader
	} else {
		trade.Seller, trade.Buyer = order.Trader, counterparty
	}
	if !o.balancing {
		trade.FeePrice = m.fees.Fee(tradePrice, energy)
	}

	m.trades = append(m.trades, trade)
	if !o.alreadyTracked {
		m.stats.record(trade)
		metrics.TradeCounterInc(m.name)
		metrics.TradedEnergyAdd(math.Abs(energy), m.name)
	}

	m.log.Debug("trade",
		logging.MarketID(m.id),
		logging.Trade(trade),
	)
	m.broker.Send(events.NewTradeEvent(trade))
	return trade, nil
}

func (m *Market) validateAcceptance(order types.Order, counterparty types.TraderDetails, energy float64, o acceptOptions) error {
	if counterparty.Name == order.Trader.Name {
		return errors.Wrapf(types.ErrInvalidTrade, "%s %s cannot be accepted by its own trader %s", order.Side, order.ID, counterparty.Name)
	}
	if o.balancing {
		if energy == 0 || math.Signbit(energy) != math.Signbit(order.Energy) || math.Abs(energy) > math.Abs(order.Energy)+energyTolerance {
			return errors.Wrapf(types.ErrInvalidBalancingTrade,
				"energy %f does not fit balancing offer %s of %f", energy, order.ID, order.Energy)
		}
		return nil
	}
	if energy <= 0 {
		return errors.Wrapf(types.ErrInvalidTrade, "energy must be positive, got %f", energy)
	}
	if energy > order.Energy+energyTolerance {
		return errors.Wrapf(types.ErrInvalidTrade,
			"energy %f is more than the %s %s energy %f", energy, order.Side, order.ID, order.Energy)
	}
	if o.rate != nil {
		rate := *o.rate
		if order.Side == types.SideSell && rate < order.EnergyRate()-types.FloatingPointTolerance {
			return errors.Wrapf(types.ErrInvalidTrade, "trade rate %f below offer %s rate %f", rate, order.ID, order.EnergyRate())
		}
		if order.Side == types.SideBuy && rate > order.EnergyRate()+types.FloatingPointTolerance {
			return errors.Wrapf(types.ErrInvalidTrade, "trade rate %f above bid %s rate %f", rate, order.ID, order.EnergyRate())
		}
	}
	return nil
}

// AcceptBidOfferPair trades energy of the bid against the offer at the
// clearing rate. The offer side is recorded in the statistics, the bid side
// is flagged as already tracked.
func (m *Market) AcceptBidOfferPair(bidID, offerID string, clearingRate, energy float64) (offerTrade, bidTrade types.Trade, err error) {
	bid, ok := m.bids.get(bidID)
	if !ok {
		return offerTrade, bidTrade, errors.Wrapf(types.ErrOrderNotFound, "bid %s in market %s", bidID, m.id)
	}
	offer, ok := m.offers.get(offerID)
	if !ok {
		return offerTrade, bidTrade, errors.Wrapf(types.ErrOrderNotFound, "offer %s in market %s", offerID, m.id)
	}
	if err := matching.ValidateBidOfferMatch(bid, offer, clearingRate, energy); err != nil {
		return offerTrade, bidTrade, err
	}

	offerTrade, err = m.accept(types.SideSell, offerID, bid.Trader, acceptOptions{energy: &energy, rate: &clearingRate})
	if err != nil {
		return offerTrade, bidTrade, err
	}
	bidTrade, err = m.accept(types.SideBuy, bidID, offer.Trader, acceptOptions{energy: &energy, rate: &clearingRate, alreadyTracked: true})
	if err != nil {
		m.log.Panic("offer traded without its bid",
			logging.MarketID(m.id),
			logging.OrderID(bidID),
			logging.String("offer-id", offerID),
			logging.Tick(m.tick),
			logging.Error(err),
		)
	}
	return offerTrade, bidTrade, nil
}

// MatchRecommendations applies a batch of recommendations in order. A
// recommendation naming an order consumed earlier in the batch is redirected
// to that order's residual; one naming an order that left the book, or one
// failing validation, is dropped. It returns how many were applied.
func (m *Market) MatchRecommendations(recs []matching.BidOfferMatch) int {
	if m.readOnly {
		return 0
	}
	residuals := map[string]string{}
	resolve := func(id string) string {
		for {
			next, ok := residuals[id]
			if !ok {
				return id
			}
			id = next
		}
	}

	var applied int
	for _, rec := range recs {
		bidID, offerID := resolve(rec.Bid.ID), resolve(rec.Offer.ID)
		bid, bidOK := m.bids.get(bidID)
		offer, offerOK := m.offers.get(offerID)
		if !bidOK || !offerOK {
			m.log.Debug("recommended orders are gone",
				logging.MarketID(m.id),
				logging.String("bid-id", bidID),
				logging.String("offer-id", offerID),
			)
			continue
		}

		energy := math.Min(rec.SelectedEnergy, math.Min(bid.Energy, offer.Energy))
		if err := matching.ValidateBidOfferMatch(bid, offer, rec.ClearingRate, energy); err != nil {
			m.log.Debug("dropping recommendation",
				logging.MarketID(m.id),
				logging.Error(err),
			)
			continue
		}

		offerTrade, bidTrade, err := m.AcceptBidOfferPair(bidID, offerID, rec.ClearingRate, energy)
		if err != nil {
			m.log.Debug("could not apply recommendation",
				logging.MarketID(m.id),
				logging.Error(err),
			)
			continue
		}
		if offerTrade.Residual != nil {
			residuals[offerID] = offerTrade.Residual.ID
		}
		if bidTrade.Residual != nil {
			residuals[bidID] = bidTrade.Residual.ID
		}
		applied++
	}
	return applied
}

// Match runs the matching algorithm of the market until a pass applies no
// recommendation.
func (m *Market) Match() int {
	if !m.IsTradable() {
		return 0
	}
	var total int
	for pass := 0; pass < m.cfg.MaxMatchingPasses; pass++ {
		recs := m.matcher.Recommend(m.bids.arrival(), m.offers.arrival())
		if len(recs) == 0 {
			break
		}
		applied := m.MatchRecommendations(recs)
		total += applied
		if applied == 0 {
			break
		}
	}
	return total
}

// Offer returns a copy of a live offer.
func (m *Market) Offer(id string) (types.Order, bool) {
	return m.offers.get(id)
}

// Bid returns a copy of a live bid.
func (m *Market) Bid(id string) (types.Order, bool) {
	return m.bids.get(id)
}

// Order returns a copy of a live order of the given side.
func (m *Market) Order(side types.Side, id string) (types.Order, bool) {
	return m.bookOf(side).get(id)
}

// Offers returns the live offers by arrival.
func (m *Market) Offers() []types.Order {
	return m.offers.arrival()
}

// Bids returns the live bids by arrival.
func (m *Market) Bids() []types.Order {
	return m.bids.arrival()
}

// Orders returns the live orders of a side by arrival.
func (m *Market) Orders(side types.Side) []types.Order {
	return m.bookOf(side).arrival()
}

// SortedOffers returns the live offers cheapest first.
func (m *Market) SortedOffers() []types.Order {
	return m.offers.ranked()
}

// SortedBids returns the live bids most expensive first.
func (m *Market) SortedBids() []types.Order {
	return m.bids.ranked()
}

// Trades returns a copy of the trades of the market.
func (m *Market) Trades() []types.Trade {
	out := make([]types.Trade, len(m.trades))
	copy(out, m.trades)
	return out
}

func (m *Market) OfferHistory() []types.Order {
	return append([]types.Order{}, m.offerHistory...)
}

func (m *Market) BidHistory() []types.Order {
	return append([]types.Order{}, m.bidHistory...)
}

// OpenEnergy returns the energy still waiting in the book of a side.
func (m *Market) OpenEnergy(side types.Side) float64 {
	return m.bookOf(side).totalEnergy()
}
