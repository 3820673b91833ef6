package storage

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"stablevault/core/types"
	"stablevault/crypto"
	"stablevault/vault"
)

const (
	positionKeyPrefix = "vault/position/"
	defaultEventCap   = 1024
)

// StateDB implements vault.LedgerState on top of a key-value Database.
// Positions are JSON-encoded per account; decoding always yields independent
// copies, satisfying the LedgerState contract. Committed events are retained
// in a bounded in-memory tail for the query surface.
type StateDB struct {
	mu       sync.RWMutex
	db       Database
	events   []*types.Event
	eventCap int
}

type positionRecord struct {
	Address    string              `json:"address"`
	Collateral map[string]*big.Int `json:"collateral"`
	Debt       *big.Int            `json:"debt"`
}

// NewStateDB wraps the database as a ledger state store.
func NewStateDB(db Database) *StateDB {
	return &StateDB{db: db, eventCap: defaultEventCap}
}

func positionKey(addr crypto.Address) []byte {
	return []byte(positionKeyPrefix + addr.String())
}

// GetPosition loads the stored position, or nil when the account has none.
func (s *StateDB) GetPosition(addr crypto.Address) (*vault.Position, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("statedb: database not configured")
	}
	key := positionKey(addr)
	ok, err := s.db.Has(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	raw, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	var record positionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("statedb: decode position: %w", err)
	}
	decoded, err := crypto.DecodeAddress(record.Address)
	if err != nil {
		return nil, fmt.Errorf("statedb: decode position address: %w", err)
	}
	pos := &vault.Position{
		Address:    decoded,
		Collateral: record.Collateral,
		Debt:       record.Debt,
	}
	if pos.Collateral == nil {
		pos.Collateral = make(map[string]*big.Int)
	}
	if pos.Debt == nil {
		pos.Debt = big.NewInt(0)
	}
	return pos, nil
}

// PutPosition commits the position for the account.
func (s *StateDB) PutPosition(addr crypto.Address, pos *vault.Position) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("statedb: database not configured")
	}
	if pos == nil {
		return fmt.Errorf("statedb: nil position")
	}
	record := positionRecord{
		Address:    addr.String(),
		Collateral: pos.Collateral,
		Debt:       pos.Debt,
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("statedb: encode position: %w", err)
	}
	return s.db.Put(positionKey(addr), raw)
}

// AppendEvent records an event in the bounded tail.
func (s *StateDB) AppendEvent(evt *types.Event) {
	if s == nil || evt == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	if s.eventCap > 0 && len(s.events) > s.eventCap {
		s.events = append([]*types.Event{}, s.events[len(s.events)-s.eventCap:]...)
	}
}

// Events returns a copy of the retained event tail, oldest first.
func (s *StateDB) Events() []*types.Event {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.Event{}, s.events...)
}
