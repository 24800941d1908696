package network

import (
	"errors"
	"sync"
	"testing"

	"github.com/luca-patrignani/pow-ledger/ledger"
)

func TestGuardedChainDoReturnsError(t *testing.T) {
	chain, err := ledger.New(ledger.WithDifficulty(0))
	if err != nil {
		t.Fatal(err)
	}
	guarded := NewGuardedChain(chain)
	want := errors.New("boom")
	if err := guarded.Do(func(*ledger.Blockchain) error { return want }); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestGuardedChainSerializesAccess(t *testing.T) {
	chain, err := ledger.New(ledger.WithDifficulty(0))
	if err != nil {
		t.Fatal(err)
	}
	guarded := NewGuardedChain(chain)

	n := 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guarded.Use(func(chain *ledger.Blockchain) {
				chain.Append(nil)
			})
		}()
	}
	wg.Wait()

	guarded.Use(func(got *ledger.Blockchain) {
		if got != chain {
			t.Fatal("Use should hand out the guarded chain")
		}
		if got.Len() != n+1 {
			t.Fatalf("expected %d blocks, got %d", n+1, got.Len())
		}
		if err := got.Verify(); err != nil {
			t.Fatalf("chain invalid after concurrent appends: %v", err)
		}
	})
}
