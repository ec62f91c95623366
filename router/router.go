// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"sync"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/feerouter/contract"
	"github.com/luxfi/feerouter/staking"
	"github.com/luxfi/feerouter/swap"
)

// Router is the singleton fee router for one chain. Every mutating operation
// runs as one atomic unit behind the locked flag: re-entry from a
// collaborator callback fails with ErrReentrant instead of observing partial
// effects. On pure fee-collection chains adapter and distributor are nil and
// only the slicing/settlement surface is live.
type Router struct {
	mu     sync.RWMutex
	locked bool

	cfg      Config
	treasury common.Address
	paused   bool

	// trustedRemotes maps a source channel to the only sender allowed to
	// trigger receive-side processing. A zero entry means untrusted.
	trustedRemotes map[uint32]common.Address

	// sequences is the per-destination outbound batch counter, incremented
	// exactly once per successful settlement. Audit trail, not security.
	sequences map[uint32]uint64

	// tokens resolves an asset marker to its token collaborator.
	tokens map[common.Address]contract.Token

	journal     *Journal
	adapter     *swap.Adapter
	distributor *staking.Distributor
	log         log.Logger
}

// NewRouter creates the router. journal may be nil on deployments that keep
// no local audit trail; adapter and distributor may be nil on pure
// collection endpoints. When a distributor is wired it must share the
// router's token-holding address so swapped output is distributable in
// place.
func NewRouter(cfg Config, journal *Journal, adapter *swap.Adapter, distributor *staking.Distributor, logger log.Logger) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if distributor != nil && distributor.Address() != cfg.RouterAddr {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}

	r := &Router{
		cfg:            cfg,
		treasury:       cfg.Treasury,
		trustedRemotes: make(map[uint32]common.Address),
		sequences:      make(map[uint32]uint64),
		tokens:         make(map[common.Address]contract.Token),
		journal:        journal,
		adapter:        adapter,
		distributor:    distributor,
		log:            logger,
	}

	if journal != nil {
		seq, err := journal.Sequence(cfg.RemoteChain)
		if err != nil {
			return nil, err
		}
		r.sequences[cfg.RemoteChain] = seq
	}
	return r, nil
}

// enter acquires the single-writer gate for one atomic unit of work.
func (r *Router) enter() error {
	r.mu.Lock()
	if r.locked {
		r.mu.Unlock()
		return ErrReentrant
	}
	r.locked = true
	r.mu.Unlock()
	return nil
}

func (r *Router) exit() {
	r.mu.Lock()
	r.locked = false
	r.mu.Unlock()
}

// Address returns the router's balance-holding address.
func (r *Router) Address() common.Address { return r.cfg.RouterAddr }

// SetTreasury changes the remainder recipient. Owner only; never zero.
func (r *Router) SetTreasury(caller, treasury common.Address) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return ErrUnauthorized
	}
	if treasury == (common.Address{}) {
		return ErrZeroAddress
	}
	r.mu.Lock()
	r.treasury = treasury
	r.mu.Unlock()
	r.log.Info("treasury updated", "treasury", treasury)
	return nil
}

// SetTrustedRemote registers the expected sender on a source channel.
// Setting the zero address revokes the channel.
func (r *Router) SetTrustedRemote(caller common.Address, srcChain uint32, sender common.Address) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return ErrUnauthorized
	}
	r.mu.Lock()
	if sender == (common.Address{}) {
		delete(r.trustedRemotes, srcChain)
	} else {
		r.trustedRemotes[srcChain] = sender
	}
	r.mu.Unlock()
	r.log.Info("trusted remote updated", "srcChain", srcChain, "sender", sender)
	return nil
}

// RegisterToken makes a tracked token sliceable and settleable. Owner only.
func (r *Router) RegisterToken(caller common.Address, token contract.Token) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return ErrUnauthorized
	}
	if token == nil || token.Address() == (common.Address{}) {
		return ErrZeroAddress
	}
	r.mu.Lock()
	r.tokens[token.Address()] = token
	r.mu.Unlock()
	return nil
}

// Pause halts slicing and outbound settlement. Receive-side processing stays
// live so in-flight settlements from the paired router are not stranded.
func (r *Router) Pause(caller common.Address) error {
	return r.setPaused(caller, true)
}

// Unpause re-enables slicing and settlement.
func (r *Router) Unpause(caller common.Address) error {
	return r.setPaused(caller, false)
}

func (r *Router) setPaused(caller common.Address, paused bool) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.cfg.Owner {
		return ErrUnauthorized
	}
	r.mu.Lock()
	r.paused = paused
	r.mu.Unlock()
	r.log.Info("pause state changed", "paused", paused)
	return nil
}

// Treasury returns the current remainder recipient.
func (r *Router) Treasury() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.treasury
}

// TrustedRemote returns the registered sender for a channel; the zero
// address means untrusted.
func (r *Router) TrustedRemote(srcChain uint32) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trustedRemotes[srcChain]
}

// Sequence returns the outbound batch counter for a destination.
func (r *Router) Sequence(dstChain uint32) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sequences[dstChain]
}

// Paused reports whether slicing and settlement are halted.
func (r *Router) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// token resolves a registered tracked token.
func (r *Router) token(asset common.Address) (contract.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.tokens[asset]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return tok, nil
}
