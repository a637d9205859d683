package asset

import (
	"math/big"
	"testing"
)

func TestParse_RoundTripsCanonicalStrings(t *testing.T) {
	t.Parallel()

	// Each string is canonical: Parse then String must reproduce it.
	canonical := []string{
		`ConstantAsset(5)`,
		`ConstantAsset(-3/7)`,
		`SatisfiedByAsset("t1",10)`,
		`SatisfiedByAsset("weird \"target\"",3/2)`,
		`AgentsSatisfyByAsset("t1",["alice","bob"],10)`,
		`TimeProvenAsset("t1",10)`,
		`MaxAsset([ConstantAsset(1),SatisfiedByAsset("t1",10)])`,
		`MinAsset([TimeProvenAsset("t1",10),ConstantAsset(5)])`,
		`LinearCombinationAsset([(2,SatisfiedByAsset("t1",10)),(-1/2,ConstantAsset(3))])`,
		`PayForQuickProofAsset("t1",2,1,5,3)`,
		`MaxAsset([MinAsset([ConstantAsset(0),ConstantAsset(1)]),LinearCombinationAsset([(1,TimeProvenAsset("t2",7))])])`,
	}

	for _, s := range canonical {
		a, err := Parse(s)
		if err != nil {
			t.Errorf("Parse(%s): %v", s, err)
			continue
		}
		if got := a.String(); got != s {
			t.Errorf("Parse(%s).String() = %s", s, got)
		}
	}
}

func TestString_RoundTripsConstructedAssets(t *testing.T) {
	t.Parallel()

	p, err := NewPayForQuickProof("t1", big.NewRat(3, 2), big.NewRat(0, 1), big.NewRat(8, 1), big.NewRat(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	inner, err := NewMax([]Asset{p, NewConstant(big.NewRat(-1, 3))})
	if err != nil {
		t.Fatal(err)
	}
	original := &LinearCombination{Terms: []Term{
		{Coefficient: big.NewRat(7, 4), Asset: inner},
		{Coefficient: big.NewRat(-2, 1), Asset: &AgentsSatisfyBy{
			Target:   "t2",
			AgentIDs: []string{"alice"},
			StopTime: big.NewRat(9, 1),
		}},
	}}

	parsed, err := Parse(original.String())
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != original.String() {
		t.Errorf("round trip changed representation:\n  in:  %s\n  out: %s",
			original.String(), parsed.String())
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", `FancyAsset(1)`},
		{"no call", `just text`},
		{"unmatched paren", `ConstantAsset(5`},
		{"trailing characters", `ConstantAsset(5)x`},
		{"bad rational", `ConstantAsset(one)`},
		{"wrong arity", `SatisfiedByAsset("t1")`},
		{"unquoted target", `SatisfiedByAsset(t1,10)`},
		{"empty max list", `MaxAsset([])`},
		{"empty min list", `MinAsset([])`},
		{"not a list", `MaxAsset(ConstantAsset(1))`},
		{"term not a pair", `LinearCombinationAsset([ConstantAsset(1)])`},
		{"bad agent list", `AgentsSatisfyByAsset("t1",alice,10)`},
		{"backstop before start", `PayForQuickProofAsset("t1",2,5,1,3)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.input); err == nil {
				t.Errorf("Parse(%s) should fail", tt.input)
			}
		})
	}
}

func TestParse_ToleratesWhitespace(t *testing.T) {
	t.Parallel()

	a, err := Parse(`  MaxAsset([ConstantAsset(1), SatisfiedByAsset("t1", 10)])  `)
	if err != nil {
		t.Fatal(err)
	}
	if got := a.String(); got != `MaxAsset([ConstantAsset(1),SatisfiedByAsset("t1",10)])` {
		t.Errorf("String() = %s", got)
	}
}
