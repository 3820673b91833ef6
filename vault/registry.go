package vault

import "strings"

// Registry holds the approved collateral set and its price feeds. The mapping
// and the registration order are fixed at construction; every full-portfolio
// valuation iterates Assets() so results stay deterministic.
type Registry struct {
	order []string
	feeds map[string]PriceFeed
}

// NewRegistry constructs a registry from parallel asset and feed sequences.
func NewRegistry(assets []string, feeds []PriceFeed) (*Registry, error) {
	if len(assets) != len(feeds) {
		return nil, ErrLengthMismatch
	}
	r := &Registry{
		order: make([]string, 0, len(assets)),
		feeds: make(map[string]PriceFeed, len(assets)),
	}
	for i, asset := range assets {
		sym := normaliseSymbol(asset)
		if sym == "" {
			return nil, ErrUnknownAsset
		}
		if _, exists := r.feeds[sym]; exists {
			continue
		}
		r.order = append(r.order, sym)
		r.feeds[sym] = feeds[i]
	}
	return r, nil
}

// IsAllowed reports whether the asset belongs to the approved set.
func (r *Registry) IsAllowed(asset string) bool {
	if r == nil {
		return false
	}
	_, ok := r.feeds[normaliseSymbol(asset)]
	return ok
}

// Assets returns the approved asset symbols in registration order.
func (r *Registry) Assets() []string {
	if r == nil {
		return nil
	}
	return append([]string{}, r.order...)
}

// Feed returns the price feed bound to the asset.
func (r *Registry) Feed(asset string) (PriceFeed, bool) {
	if r == nil {
		return nil, false
	}
	feed, ok := r.feeds[normaliseSymbol(asset)]
	return feed, ok
}

func normaliseSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
