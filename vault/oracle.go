package vault

import (
	"fmt"
	"math/big"
	"sync"
	"time"
)

// PriceFeed is the external price source for a single collateral asset. The
// returned price uses the feed-native 8-decimal scale.
type PriceFeed interface {
	LatestPrice() (*big.Int, time.Time, error)
}

// OracleAdapter normalizes feed readings to the internal 18-decimal scale and
// enforces the freshness window. All conversions use truncating integer
// division; floating point never enters this path.
type OracleAdapter struct {
	registry *Registry
	maxAge   time.Duration
	clock    func() time.Time
}

// NewOracleAdapter wraps the registry's feeds with the given staleness bound.
// A non-positive maxAge disables the freshness check.
func NewOracleAdapter(registry *Registry, maxAge time.Duration) *OracleAdapter {
	return &OracleAdapter{registry: registry, maxAge: maxAge, clock: time.Now}
}

// SetClock overrides the time source. Used by tests to pin staleness windows.
func (o *OracleAdapter) SetClock(clock func() time.Time) {
	if o == nil || clock == nil {
		return
	}
	o.clock = clock
}

// MaxAge returns the configured staleness bound.
func (o *OracleAdapter) MaxAge() time.Duration {
	if o == nil {
		return 0
	}
	return o.maxAge
}

// Price returns the asset's unit price normalized to the internal scale.
func (o *OracleAdapter) Price(asset string) (*big.Int, error) {
	if o == nil || o.registry == nil {
		return nil, ErrOracleUnavailable
	}
	sym := normaliseSymbol(asset)
	feed, ok := o.registry.Feed(sym)
	if !ok || feed == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, sym)
	}
	price, ts, err := feed.LatestPrice()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOracleUnavailable, sym, err)
	}
	if price == nil || price.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s: non-positive price", ErrOracleUnavailable, sym)
	}
	if o.maxAge > 0 {
		if age := o.clock().Sub(ts); age > o.maxAge {
			return nil, fmt.Errorf("%w: %s: reading is %s old", ErrOracleStale, sym, age)
		}
	}
	return new(big.Int).Mul(price, additionalFeedPrecision), nil
}

// UsdValue converts a collateral amount into its USD value at the internal
// scale: amount * price / 1e18, floor.
func (o *OracleAdapter) UsdValue(asset string, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	price, err := o.Price(asset)
	if err != nil {
		return nil, err
	}
	return mulDiv(amount, price, precision), nil
}

// TokenAmountFromUsd converts a USD value into the equivalent collateral
// amount: usd * 1e18 / price, floor.
func (o *OracleAdapter) TokenAmountFromUsd(asset string, usd *big.Int) (*big.Int, error) {
	if usd == nil || usd.Sign() == 0 {
		return big.NewInt(0), nil
	}
	price, err := o.Price(asset)
	if err != nil {
		return nil, err
	}
	return mulDiv(usd, precision, price), nil
}

// ManualFeed provides an in-memory feed implementation used for tests and
// operator overrides during incident response.
type ManualFeed struct {
	mu    sync.RWMutex
	price *big.Int
	ts    time.Time
	err   error
}

// NewManualFeed constructs an empty manual feed. Reading it before Set
// returns an unavailable error.
func NewManualFeed() *ManualFeed {
	return &ManualFeed{}
}

// Set stores a price reading at the feed-native 8-decimal scale.
func (m *ManualFeed) Set(price *big.Int, ts time.Time) {
	if m == nil || price == nil {
		return
	}
	m.mu.Lock()
	m.price = new(big.Int).Set(price)
	m.ts = ts
	m.err = nil
	m.mu.Unlock()
}

// Fail makes subsequent reads return the supplied error.
func (m *ManualFeed) Fail(err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *ManualFeed) LatestPrice() (*big.Int, time.Time, error) {
	if m == nil {
		return nil, time.Time{}, fmt.Errorf("manual feed not configured")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, time.Time{}, m.err
	}
	if m.price == nil {
		return nil, time.Time{}, fmt.Errorf("manual feed: no reading recorded")
	}
	return new(big.Int).Set(m.price), m.ts, nil
}
