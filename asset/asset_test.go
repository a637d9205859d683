package asset

import (
	"math/big"
	"testing"
)

func rat(n, d int64) *big.Rat {
	return big.NewRat(n, d)
}

func constantValue(t *testing.T, a Asset) *big.Rat {
	t.Helper()
	c, ok := a.(*Constant)
	if !ok {
		t.Fatalf("want *Constant, got %T (%s)", a, a)
	}
	return c.Value
}

func TestConstant_SimplifyIsIdentity(t *testing.T) {
	t.Parallel()

	c := NewConstant(rat(7, 2))
	simplified, err := c.Simplify(TargetSuccess{}, rat(100, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(7, 2)) != 0 {
		t.Errorf("value = %s", got)
	}
	if c.LowerBound(rat(0, 1)).Cmp(c.UpperBound(rat(0, 1))) != 0 {
		t.Error("constant bounds must coincide")
	}
}

func TestSatisfiedBy_Simplify(t *testing.T) {
	t.Parallel()

	a := &SatisfiedBy{Target: "t1", StopTime: rat(10, 1)}

	tests := []struct {
		name      string
		success   TargetSuccess
		watermark *big.Rat
		want      *big.Rat // nil means the asset stays unresolved
	}{
		{"proven in time", TargetSuccess{"t1": {Time: rat(5, 1), Author: "a"}}, rat(6, 1), rat(1, 1)},
		{"proven exactly at stop", TargetSuccess{"t1": {Time: rat(10, 1), Author: "a"}}, rat(10, 1), rat(1, 1)},
		{"proven too late, past stop", TargetSuccess{"t1": {Time: rat(11, 1), Author: "a"}}, rat(11, 1), rat(0, 1)},
		{"unproven past stop", TargetSuccess{"t1": nil}, rat(11, 1), rat(0, 1)},
		{"unproven before stop", TargetSuccess{"t1": nil}, rat(5, 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			simplified, err := a.Simplify(tt.success, tt.watermark)
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == nil {
				if simplified != a {
					t.Fatalf("want unresolved asset, got %s", simplified)
				}
				return
			}
			if got := constantValue(t, simplified); got.Cmp(tt.want) != 0 {
				t.Errorf("value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSatisfiedBy_MissingTargetIsError(t *testing.T) {
	t.Parallel()

	a := &SatisfiedBy{Target: "t1", StopTime: rat(10, 1)}
	if _, err := a.Simplify(TargetSuccess{}, rat(0, 1)); err == nil {
		t.Fatal("missing target should be an error")
	}
}

func TestAgentsSatisfyBy_Simplify(t *testing.T) {
	t.Parallel()

	a := &AgentsSatisfyBy{Target: "t1", AgentIDs: []string{"alice", "bob"}, StopTime: rat(10, 1)}

	// A listed agent proving in time pays 1.
	simplified, err := a.Simplify(TargetSuccess{"t1": {Time: rat(5, 1), Author: "bob"}}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(1, 1)) != 0 {
		t.Errorf("value = %s", got)
	}

	// An unlisted author settles the asset at 0 even before the stop time.
	simplified, err = a.Simplify(TargetSuccess{"t1": {Time: rat(5, 1), Author: "mallory"}}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Sign() != 0 {
		t.Errorf("value = %s, want 0", got)
	}

	// Unproven before the stop time stays open.
	simplified, err = a.Simplify(TargetSuccess{"t1": nil}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if simplified != a {
		t.Errorf("want unresolved asset, got %s", simplified)
	}
}

func TestTimeProven_Simplify(t *testing.T) {
	t.Parallel()

	a := &TimeProven{Target: "t1", StopTime: rat(10, 1)}

	simplified, err := a.Simplify(TargetSuccess{"t1": {Time: rat(3, 2), Author: "a"}}, rat(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(3, 2)) != 0 {
		t.Errorf("value = %s, want 3/2", got)
	}

	// Unproven past the stop time pays the stop time itself.
	simplified, err = a.Simplify(TargetSuccess{"t1": nil}, rat(11, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(10, 1)) != 0 {
		t.Errorf("value = %s, want 10", got)
	}
}

func TestTimeProven_Bounds(t *testing.T) {
	t.Parallel()

	a := &TimeProven{Target: "t1", StopTime: rat(10, 1)}
	if got := a.LowerBound(rat(4, 1)); got.Cmp(rat(4, 1)) != 0 {
		t.Errorf("LowerBound = %s, want watermark", got)
	}
	if got := a.UpperBound(rat(4, 1)); got.Cmp(rat(10, 1)) != 0 {
		t.Errorf("UpperBound = %s, want stop time", got)
	}
}

func TestMax_SimplifyCollapsesWhenAllConstant(t *testing.T) {
	t.Parallel()

	m, err := NewMax([]Asset{
		&SatisfiedBy{Target: "t1", StopTime: rat(10, 1)},
		NewConstant(rat(1, 2)),
	})
	if err != nil {
		t.Fatal(err)
	}

	// t1 still open: the expression stays a Max.
	simplified, err := m.Simplify(TargetSuccess{"t1": nil}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := simplified.(*Max); !ok {
		t.Fatalf("want *Max, got %T", simplified)
	}

	// Proven: max(1, 1/2) = 1.
	simplified, err = m.Simplify(TargetSuccess{"t1": {Time: rat(5, 1), Author: "a"}}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(1, 1)) != 0 {
		t.Errorf("value = %s", got)
	}
}

func TestMin_Bounds(t *testing.T) {
	t.Parallel()

	m, err := NewMin([]Asset{
		NewConstant(rat(3, 1)),
		&SatisfiedBy{Target: "t1", StopTime: rat(10, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := m.LowerBound(rat(0, 1)); got.Sign() != 0 {
		t.Errorf("LowerBound = %s, want 0", got)
	}
	if got := m.UpperBound(rat(0, 1)); got.Cmp(rat(1, 1)) != 0 {
		t.Errorf("UpperBound = %s, want 1", got)
	}
}

func TestEmptyListsRejected(t *testing.T) {
	t.Parallel()

	if _, err := NewMax(nil); err == nil {
		t.Error("NewMax(nil) should fail")
	}
	if _, err := NewMin(nil); err == nil {
		t.Error("NewMin(nil) should fail")
	}
}

func TestLinearCombination_Simplify(t *testing.T) {
	t.Parallel()

	l := &LinearCombination{Terms: []Term{
		{Coefficient: rat(2, 1), Asset: &SatisfiedBy{Target: "t1", StopTime: rat(10, 1)}},
		{Coefficient: rat(1, 1), Asset: NewConstant(rat(-1, 2))},
	}}

	simplified, err := l.Simplify(TargetSuccess{"t1": {Time: rat(5, 1), Author: "a"}}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	// 2*1 + 1*(-1/2) = 3/2
	if got := constantValue(t, simplified); got.Cmp(rat(3, 2)) != 0 {
		t.Errorf("value = %s, want 3/2", got)
	}
}

func TestLinearCombination_NegativeCoefficientFlipsBounds(t *testing.T) {
	t.Parallel()

	l := &LinearCombination{Terms: []Term{
		{Coefficient: rat(-1, 1), Asset: &SatisfiedBy{Target: "t1", StopTime: rat(10, 1)}},
	}}

	if got := l.LowerBound(rat(0, 1)); got.Cmp(rat(-1, 1)) != 0 {
		t.Errorf("LowerBound = %s, want -1", got)
	}
	if got := l.UpperBound(rat(0, 1)); got.Sign() != 0 {
		t.Errorf("UpperBound = %s, want 0", got)
	}
}

func TestPayForQuickProof_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewPayForQuickProof("t1", rat(-1, 1), rat(0, 1), rat(10, 1), rat(1, 1)); err == nil {
		t.Error("negative payout rate should fail")
	}
	if _, err := NewPayForQuickProof("t1", rat(1, 1), rat(10, 1), rat(5, 1), rat(1, 1)); err == nil {
		t.Error("backstop before start should fail")
	}
	if _, err := NewPayForQuickProof("t1", rat(1, 1), rat(0, 1), rat(10, 1), rat(-1, 1)); err == nil {
		t.Error("negative reward should fail")
	}
}

func TestPayForQuickProof_Simplify(t *testing.T) {
	t.Parallel()

	// rate 2 per unit time from t=1 to backstop t=5, reward 3 paid up front.
	p, err := NewPayForQuickProof("t1", rat(2, 1), rat(1, 1), rat(5, 1), rat(3, 1))
	if err != nil {
		t.Fatal(err)
	}

	// Proven at t=4: 2*4 - 2*1 - 3 = 3.
	simplified, err := p.Simplify(TargetSuccess{"t1": {Time: rat(4, 1), Author: "a"}}, rat(4, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(3, 1)) != 0 {
		t.Errorf("value = %s, want 3", got)
	}

	// Proven immediately at the start: only the reward is lost.
	simplified, err = p.Simplify(TargetSuccess{"t1": {Time: rat(1, 1), Author: "a"}}, rat(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(-3, 1)) != 0 {
		t.Errorf("value = %s, want -3", got)
	}

	// Never proven: pays out for the whole start-to-backstop window.
	simplified, err = p.Simplify(TargetSuccess{"t1": nil}, rat(6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := constantValue(t, simplified); got.Cmp(rat(5, 1)) != 0 {
		t.Errorf("value = %s, want 5", got)
	}

	// Still open before the backstop: stays in its compact named form.
	simplified, err = p.Simplify(TargetSuccess{"t1": nil}, rat(2, 1))
	if err != nil {
		t.Fatal(err)
	}
	if simplified != p {
		t.Errorf("want unresolved asset, got %s", simplified)
	}
}

func TestPayForQuickProof_Bounds(t *testing.T) {
	t.Parallel()

	p, err := NewPayForQuickProof("t1", rat(2, 1), rat(1, 1), rat(5, 1), rat(3, 1))
	if err != nil {
		t.Fatal(err)
	}

	// At watermark 2: lower = max(2*2 - 5, -3) = -1, upper = 2*5 - 5 = 5.
	if got := p.LowerBound(rat(2, 1)); got.Cmp(rat(-1, 1)) != 0 {
		t.Errorf("LowerBound = %s, want -1", got)
	}
	if got := p.UpperBound(rat(2, 1)); got.Cmp(rat(5, 1)) != 0 {
		t.Errorf("UpperBound = %s, want 5", got)
	}
}

func TestReferencedTargetIDs_UnionAndShrink(t *testing.T) {
	t.Parallel()

	m, err := NewMax([]Asset{
		&SatisfiedBy{Target: "t1", StopTime: rat(10, 1)},
		&TimeProven{Target: "t2", StopTime: rat(10, 1)},
	})
	if err != nil {
		t.Fatal(err)
	}

	ids := m.ReferencedTargetIDs()
	if len(ids) != 2 {
		t.Fatalf("ids = %v", ids)
	}

	// Proving t1 removes it from the simplified asset's references.
	simplified, err := m.Simplify(TargetSuccess{
		"t1": {Time: rat(5, 1), Author: "a"},
		"t2": nil,
	}, rat(5, 1))
	if err != nil {
		t.Fatal(err)
	}
	ids = simplified.ReferencedTargetIDs()
	if _, ok := ids["t1"]; ok {
		t.Error("proven target should not survive simplification")
	}
	if _, ok := ids["t2"]; !ok {
		t.Error("open target should remain referenced")
	}
}

func TestBoundsBracketSimplifiedValue(t *testing.T) {
	t.Parallel()

	p, err := NewPayForQuickProof("t1", rat(3, 2), rat(0, 1), rat(8, 1), rat(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	watermark := rat(3, 1)
	lower := p.LowerBound(watermark)
	upper := p.UpperBound(watermark)

	for _, proofTime := range []*big.Rat{rat(3, 1), rat(4, 1), rat(8, 1)} {
		simplified, err := p.Simplify(TargetSuccess{"t1": {Time: proofTime, Author: "a"}}, watermark)
		if err != nil {
			t.Fatal(err)
		}
		value := constantValue(t, simplified)
		if value.Cmp(lower) < 0 || value.Cmp(upper) > 0 {
			t.Errorf("value %s at proof time %s escapes bounds [%s, %s]",
				value, proofTime, lower, upper)
		}
	}
}
