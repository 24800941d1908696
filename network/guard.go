package network

import (
	"sync"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

// GuardedChain owns the blockchain shared by all requests. There is no
// reader/writer split: reads wait for an in-flight mining run like any
// other caller.
type GuardedChain struct {
	mu    sync.Mutex
	chain *ledger.Blockchain
}

func NewGuardedChain(chain *ledger.Blockchain) *GuardedChain {
	return &GuardedChain{chain: chain}
}

// Do runs fn with exclusive access to the chain. fn must not keep the
// pointer after it returns.
func (g *GuardedChain) Do(fn func(chain *ledger.Blockchain) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.chain)
}

// Use is Do for callers that cannot fail.
func (g *GuardedChain) Use(fn func(chain *ledger.Blockchain)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.chain)
}
