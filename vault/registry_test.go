package vault

import (
	"errors"
	"testing"
)

func TestNewRegistryLengthMismatch(t *testing.T) {
	if _, err := NewRegistry([]string{"WETH", "WBTC"}, []PriceFeed{NewManualFeed()}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	symbols := []string{"WETH", "WBTC", "LINK"}
	feeds := []PriceFeed{NewManualFeed(), NewManualFeed(), NewManualFeed()}
	registry, err := NewRegistry(symbols, feeds)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	assets := registry.Assets()
	if len(assets) != len(symbols) {
		t.Fatalf("unexpected asset count: %d", len(assets))
	}
	for i, sym := range symbols {
		if assets[i] != sym {
			t.Fatalf("order not preserved at %d: got %s want %s", i, assets[i], sym)
		}
	}

	// Mutating the returned slice must not affect the registry.
	assets[0] = "DOGE"
	if registry.Assets()[0] != "WETH" {
		t.Fatalf("registry order mutated through accessor")
	}
}

func TestRegistryNormalisesSymbols(t *testing.T) {
	registry, err := NewRegistry([]string{" weth "}, []PriceFeed{NewManualFeed()})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !registry.IsAllowed("WETH") || !registry.IsAllowed("weth") {
		t.Fatalf("symbol normalisation not applied")
	}
	if registry.IsAllowed("WBTC") {
		t.Fatalf("unregistered asset reported as allowed")
	}
	if _, ok := registry.Feed("weth"); !ok {
		t.Fatalf("feed lookup failed for normalised symbol")
	}
}

func TestRegistryRejectsEmptySymbol(t *testing.T) {
	if _, err := NewRegistry([]string{"  "}, []PriceFeed{NewManualFeed()}); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset, got %v", err)
	}
}
