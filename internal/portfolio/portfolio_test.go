package portfolio

import (
	"testing"
)

func TestApplyLongBuy_UpdatesCashAndBasis(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0)

	executed := l.ApplyLongBuy("BTC", 50, 100)
	if executed != 50 {
		t.Fatalf("expected 50 executed, got %d", executed)
	}
	if l.Cash() != 5000 {
		t.Errorf("expected cash 5000, got %f", l.Cash())
	}

	pos := l.Positions()["BTC"]
	if pos.LongUnits != 50 {
		t.Errorf("expected 50 long units, got %d", pos.LongUnits)
	}
	if pos.LongCostBasis != 100 {
		t.Errorf("expected basis 100, got %f", pos.LongCostBasis)
	}
}

func TestApplyLongBuy_ClampsToAvailableCash(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 1000, 0)

	// Requesting far more than cash affords executes exactly floor(cash/price).
	executed := l.ApplyLongBuy("BTC", 1000000, 300)
	if executed != 3 {
		t.Fatalf("expected 3 executed, got %d", executed)
	}
	if l.Cash() != 100 {
		t.Errorf("expected cash 100, got %f", l.Cash())
	}
	if l.Cash() < 0 {
		t.Error("cash went negative")
	}
}

func TestApplyLongBuy_ZeroWhenCashBelowOneUnit(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 99, 0)

	executed := l.ApplyLongBuy("BTC", 10, 100)
	if executed != 0 {
		t.Fatalf("expected 0 executed, got %d", executed)
	}
	if l.Cash() != 99 {
		t.Errorf("cash mutated on zero fill: %f", l.Cash())
	}
}

func TestApplyLongBuy_NonPositiveQuantityIsNoop(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0)

	if executed := l.ApplyLongBuy("BTC", 0, 100); executed != 0 {
		t.Errorf("expected 0 for zero quantity, got %d", executed)
	}
	if executed := l.ApplyLongBuy("BTC", -5, 100); executed != 0 {
		t.Errorf("expected 0 for negative quantity, got %d", executed)
	}
	if l.Cash() != 10000 {
		t.Errorf("cash mutated on no-op: %f", l.Cash())
	}
}

func TestApplyLongBuy_WeightedAverageBasis(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 100000, 0)

	l.ApplyLongBuy("BTC", 10, 100)
	l.ApplyLongBuy("BTC", 10, 200)

	pos := l.Positions()["BTC"]
	if pos.LongUnits != 20 {
		t.Fatalf("expected 20 units, got %d", pos.LongUnits)
	}
	if pos.LongCostBasis != 150 {
		t.Errorf("expected basis 150, got %f", pos.LongCostBasis)
	}
}

func TestApplyLongSell_BooksRealizedGain(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0)

	l.ApplyLongBuy("BTC", 10, 100)
	cashBefore := l.Cash()

	executed := l.ApplyLongSell("BTC", 10, 150)
	if executed != 10 {
		t.Fatalf("expected 10 executed, got %d", executed)
	}

	gains := l.RealizedGains()["BTC"]
	if gains.Long != 500 {
		t.Errorf("expected realized gain 500, got %f", gains.Long)
	}
	if got := l.Cash() - cashBefore; got != 10*150 {
		t.Errorf("expected cash to increase by 1500, got %f", got)
	}
}

func TestApplyLongSell_ClampsToHeldUnits(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0)

	l.ApplyLongBuy("BTC", 5, 100)
	executed := l.ApplyLongSell("BTC", 50, 120)
	if executed != 5 {
		t.Fatalf("expected 5 executed, got %d", executed)
	}

	pos := l.Positions()["BTC"]
	if pos.LongUnits != 0 {
		t.Errorf("expected 0 units after full sell, got %d", pos.LongUnits)
	}
	if pos.LongCostBasis != 0 {
		t.Errorf("expected basis reset to 0, got %f", pos.LongCostBasis)
	}
}

func TestApplyLongSell_NothingHeldIsNoop(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0)

	if executed := l.ApplyLongSell("BTC", 10, 100); executed != 0 {
		t.Errorf("expected 0 executed, got %d", executed)
	}
	if l.Cash() != 10000 {
		t.Errorf("cash mutated on no-op sell: %f", l.Cash())
	}
}

func TestCashNeverNegative(t *testing.T) {
	l := NewLedger([]string{"BTC", "ETH"}, 500, 0)

	// Arbitrary buy sequence, some oversized.
	buys := []struct {
		symbol string
		qty    int64
		price  float64
	}{
		{"BTC", 3, 100}, {"ETH", 100, 50}, {"BTC", 1, 99}, {"ETH", 7, 3},
		{"BTC", 1000, 1}, {"ETH", 1, 10000},
	}
	for _, b := range buys {
		l.ApplyLongBuy(b.symbol, b.qty, b.price)
		if l.Cash() < 0 {
			t.Fatalf("cash went negative after buy %+v: %f", b, l.Cash())
		}
	}
}

func TestSnapshot_IsDefensiveCopy(t *testing.T) {
	l := NewLedger([]string{"BTC"}, 10000, 0.1)
	l.ApplyLongBuy("BTC", 10, 100)

	snap := l.Snapshot()
	if snap.MarginRequirement != 0.1 {
		t.Errorf("expected margin requirement 0.1, got %f", snap.MarginRequirement)
	}

	// Mutate the snapshot; live ledger must be unaffected.
	snap.Cash = -1
	p := snap.Positions["BTC"]
	p.LongUnits = 999
	snap.Positions["BTC"] = p
	g := snap.RealizedGains["BTC"]
	g.Long = 12345
	snap.RealizedGains["BTC"] = g

	if l.Cash() != 9000 {
		t.Errorf("ledger cash mutated through snapshot: %f", l.Cash())
	}
	if l.Positions()["BTC"].LongUnits != 10 {
		t.Error("ledger position mutated through snapshot")
	}
	if l.RealizedGains()["BTC"].Long != 0 {
		t.Error("ledger realized gains mutated through snapshot")
	}
}

func TestUntrackedSymbolCreatesPosition(t *testing.T) {
	l := NewLedger(nil, 1000, 0)

	executed := l.ApplyLongBuy("SOL", 2, 100)
	if executed != 2 {
		t.Fatalf("expected 2 executed, got %d", executed)
	}
	if l.Positions()["SOL"].LongUnits != 2 {
		t.Error("position not created for untracked symbol")
	}
}
