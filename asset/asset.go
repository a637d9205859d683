// Package asset implements the Agora asset expression language.
//
// An asset is an expression whose value settles as proof targets are
// resolved. Simplify rewrites an asset against the known target outcomes
// and a watermark time; repeated simplification is guaranteed to reach a
// Constant once every referenced target is resolved or the watermark has
// passed every stop time. LowerBound and UpperBound bracket the value of
// that eventual constant.
//
// Values are exact rationals (math/big.Rat); the canonical text form
// produced by String round-trips through Parse.
package asset

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Proof records when and by whom a target was proven.
type Proof struct {
	Time   *big.Rat
	Author string
}

// TargetSuccess maps target IDs to their proof. A nil entry means the
// target is tracked but not yet proven. Every target referenced by an
// asset must be present before Simplify is called.
type TargetSuccess map[string]*Proof

// Asset is a node in an asset expression tree.
type Asset interface {
	// ReferencedTargetIDs returns the set of target IDs this asset
	// references. Simplification never adds targets: the simplified
	// asset's set is always a subset of the original's, and a proven
	// target never survives simplification.
	ReferencedTargetIDs() map[string]struct{}

	// Simplify rewrites the asset given the known target outcomes and the
	// watermark time. It fails if a referenced target is missing from
	// success.
	Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error)

	// LowerBound returns a lower bound on the constant this asset
	// eventually simplifies to.
	LowerBound(watermark *big.Rat) *big.Rat

	// UpperBound returns an upper bound on the constant this asset
	// eventually simplifies to.
	UpperBound(watermark *big.Rat) *big.Rat

	// String renders the canonical text form accepted by Parse.
	String() string
}

func checkReferenced(a Asset, success TargetSuccess) error {
	for id := range a.ReferencedTargetIDs() {
		if _, ok := success[id]; !ok {
			return fmt.Errorf("target %q missing from target success map", id)
		}
	}
	return nil
}

func unionTargetIDs(assets []Asset) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, a := range assets {
		for id := range a.ReferencedTargetIDs() {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func singleTargetID(id string) map[string]struct{} {
	return map[string]struct{}{id: {}}
}

// formatRat renders a rational as "n" or "n/d", the form Parse accepts.
func formatRat(r *big.Rat) string {
	return r.RatString()
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// Constant is an asset with a fixed value.
type Constant struct {
	Value *big.Rat
}

// NewConstant creates a constant-valued asset.
func NewConstant(value *big.Rat) *Constant {
	return &Constant{Value: value}
}

// ReferencedTargetIDs implements Asset.
func (c *Constant) ReferencedTargetIDs() map[string]struct{} {
	return map[string]struct{}{}
}

// Simplify implements Asset; a constant is already fully simplified.
func (c *Constant) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	return c, nil
}

// LowerBound implements Asset.
func (c *Constant) LowerBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat).Set(c.Value)
}

// UpperBound implements Asset.
func (c *Constant) UpperBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat).Set(c.Value)
}

func (c *Constant) String() string {
	return fmt.Sprintf("ConstantAsset(%s)", formatRat(c.Value))
}

// SatisfiedBy pays 1 if the target is proven by StopTime, 0 otherwise.
type SatisfiedBy struct {
	Target   string
	StopTime *big.Rat
}

// ReferencedTargetIDs implements Asset.
func (s *SatisfiedBy) ReferencedTargetIDs() map[string]struct{} {
	return singleTargetID(s.Target)
}

// Simplify implements Asset.
func (s *SatisfiedBy) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	if err := checkReferenced(s, success); err != nil {
		return nil, err
	}

	if proof := success[s.Target]; proof != nil {
		if proof.Time.Cmp(s.StopTime) <= 0 {
			return NewConstant(big.NewRat(1, 1)), nil
		}
	}

	if watermark.Cmp(s.StopTime) > 0 {
		return NewConstant(new(big.Rat)), nil
	}

	return s, nil
}

// LowerBound implements Asset.
func (s *SatisfiedBy) LowerBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat)
}

// UpperBound implements Asset.
func (s *SatisfiedBy) UpperBound(watermark *big.Rat) *big.Rat {
	return big.NewRat(1, 1)
}

func (s *SatisfiedBy) String() string {
	return fmt.Sprintf("SatisfiedByAsset(%s,%s)", jsonString(s.Target), formatRat(s.StopTime))
}

// AgentsSatisfyBy pays 1 if the target is proven by StopTime by one of the
// listed agents, 0 otherwise.
type AgentsSatisfyBy struct {
	Target   string
	AgentIDs []string
	StopTime *big.Rat
}

// ReferencedTargetIDs implements Asset.
func (a *AgentsSatisfyBy) ReferencedTargetIDs() map[string]struct{} {
	return singleTargetID(a.Target)
}

// Simplify implements Asset. Unlike SatisfiedBy, a proof settles the asset
// either way: the author is either in the list or not.
func (a *AgentsSatisfyBy) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	if err := checkReferenced(a, success); err != nil {
		return nil, err
	}

	if proof := success[a.Target]; proof != nil {
		if proof.Time.Cmp(a.StopTime) <= 0 && a.hasAgent(proof.Author) {
			return NewConstant(big.NewRat(1, 1)), nil
		}
		return NewConstant(new(big.Rat)), nil
	}

	if watermark.Cmp(a.StopTime) > 0 {
		return NewConstant(new(big.Rat)), nil
	}

	return a, nil
}

func (a *AgentsSatisfyBy) hasAgent(agentID string) bool {
	for _, id := range a.AgentIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// LowerBound implements Asset.
func (a *AgentsSatisfyBy) LowerBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat)
}

// UpperBound implements Asset.
func (a *AgentsSatisfyBy) UpperBound(watermark *big.Rat) *big.Rat {
	return big.NewRat(1, 1)
}

func (a *AgentsSatisfyBy) String() string {
	ids, _ := json.Marshal(a.AgentIDs)
	return fmt.Sprintf("AgentsSatisfyByAsset(%s,%s,%s)",
		jsonString(a.Target), string(ids), formatRat(a.StopTime))
}

// TimeProven pays the first time the target is proven, or StopTime if it
// is not proven by then.
type TimeProven struct {
	Target   string
	StopTime *big.Rat
}

// ReferencedTargetIDs implements Asset.
func (t *TimeProven) ReferencedTargetIDs() map[string]struct{} {
	return singleTargetID(t.Target)
}

// Simplify implements Asset.
func (t *TimeProven) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	if err := checkReferenced(t, success); err != nil {
		return nil, err
	}

	if proof := success[t.Target]; proof != nil {
		if proof.Time.Cmp(t.StopTime) <= 0 {
			return NewConstant(new(big.Rat).Set(proof.Time)), nil
		}
	}

	if watermark.Cmp(t.StopTime) > 0 {
		return NewConstant(new(big.Rat).Set(t.StopTime)), nil
	}

	return t, nil
}

// LowerBound implements Asset; the value can be no earlier than the
// watermark once the target is still open.
func (t *TimeProven) LowerBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat).Set(watermark)
}

// UpperBound implements Asset.
func (t *TimeProven) UpperBound(watermark *big.Rat) *big.Rat {
	return new(big.Rat).Set(t.StopTime)
}

func (t *TimeProven) String() string {
	return fmt.Sprintf("TimeProvenAsset(%s,%s)", jsonString(t.Target), formatRat(t.StopTime))
}

// Max pays the maximum value among its component assets.
type Max struct {
	Assets []Asset
}

// NewMax creates a Max asset; the component list must be non-empty.
func NewMax(assets []Asset) (*Max, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("max asset requires a non-empty asset list")
	}
	return &Max{Assets: assets}, nil
}

// ReferencedTargetIDs implements Asset.
func (m *Max) ReferencedTargetIDs() map[string]struct{} {
	return unionTargetIDs(m.Assets)
}

// Simplify implements Asset; once every component is constant the whole
// expression collapses.
func (m *Max) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	simplified, constants, err := simplifyAll(m.Assets, success, watermark)
	if err != nil {
		return nil, err
	}
	if constants != nil {
		return NewConstant(ratMax(constants)), nil
	}
	return &Max{Assets: simplified}, nil
}

// LowerBound implements Asset.
func (m *Max) LowerBound(watermark *big.Rat) *big.Rat {
	return foldBounds(m.Assets, watermark, Asset.LowerBound, ratMax)
}

// UpperBound implements Asset.
func (m *Max) UpperBound(watermark *big.Rat) *big.Rat {
	return foldBounds(m.Assets, watermark, Asset.UpperBound, ratMax)
}

func (m *Max) String() string {
	return fmt.Sprintf("MaxAsset([%s])", joinAssets(m.Assets))
}

// Min pays the minimum value among its component assets.
type Min struct {
	Assets []Asset
}

// NewMin creates a Min asset; the component list must be non-empty.
func NewMin(assets []Asset) (*Min, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("min asset requires a non-empty asset list")
	}
	return &Min{Assets: assets}, nil
}

// ReferencedTargetIDs implements Asset.
func (m *Min) ReferencedTargetIDs() map[string]struct{} {
	return unionTargetIDs(m.Assets)
}

// Simplify implements Asset.
func (m *Min) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	simplified, constants, err := simplifyAll(m.Assets, success, watermark)
	if err != nil {
		return nil, err
	}
	if constants != nil {
		return NewConstant(ratMin(constants)), nil
	}
	return &Min{Assets: simplified}, nil
}

// LowerBound implements Asset.
func (m *Min) LowerBound(watermark *big.Rat) *big.Rat {
	return foldBounds(m.Assets, watermark, Asset.LowerBound, ratMin)
}

// UpperBound implements Asset.
func (m *Min) UpperBound(watermark *big.Rat) *big.Rat {
	return foldBounds(m.Assets, watermark, Asset.UpperBound, ratMin)
}

func (m *Min) String() string {
	return fmt.Sprintf("MinAsset([%s])", joinAssets(m.Assets))
}

// Term is one coefficient-weighted component of a LinearCombination.
type Term struct {
	Coefficient *big.Rat
	Asset       Asset
}

// LinearCombination pays the coefficient-weighted sum of its terms.
type LinearCombination struct {
	Terms []Term
}

// ReferencedTargetIDs implements Asset.
func (l *LinearCombination) ReferencedTargetIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, term := range l.Terms {
		for id := range term.Asset.ReferencedTargetIDs() {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// Simplify implements Asset.
func (l *LinearCombination) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	simplified := make([]Term, len(l.Terms))
	allConstant := true
	for i, term := range l.Terms {
		sa, err := term.Asset.Simplify(success, watermark)
		if err != nil {
			return nil, err
		}
		simplified[i] = Term{Coefficient: term.Coefficient, Asset: sa}
		if _, ok := sa.(*Constant); !ok {
			allConstant = false
		}
	}

	if allConstant {
		sum := new(big.Rat)
		for _, term := range simplified {
			product := new(big.Rat).Mul(term.Coefficient, term.Asset.(*Constant).Value)
			sum.Add(sum, product)
		}
		return NewConstant(sum), nil
	}

	return &LinearCombination{Terms: simplified}, nil
}

// LowerBound implements Asset. Negative coefficients flip which bound of
// the component contributes.
func (l *LinearCombination) LowerBound(watermark *big.Rat) *big.Rat {
	return l.bound(watermark, false)
}

// UpperBound implements Asset.
func (l *LinearCombination) UpperBound(watermark *big.Rat) *big.Rat {
	return l.bound(watermark, true)
}

func (l *LinearCombination) bound(watermark *big.Rat, upper bool) *big.Rat {
	sum := new(big.Rat)
	zero := new(big.Rat)
	for _, term := range l.Terms {
		nonNegative := term.Coefficient.Cmp(zero) >= 0
		var component *big.Rat
		if nonNegative == upper {
			component = term.Asset.UpperBound(watermark)
		} else {
			component = term.Asset.LowerBound(watermark)
		}
		sum.Add(sum, new(big.Rat).Mul(term.Coefficient, component))
	}
	return sum
}

func (l *LinearCombination) String() string {
	parts := make([]string, len(l.Terms))
	for i, term := range l.Terms {
		parts[i] = fmt.Sprintf("(%s,%s)", formatRat(term.Coefficient), term.Asset.String())
	}
	return fmt.Sprintf("LinearCombinationAsset([%s])", strings.Join(parts, ","))
}

// PayForQuickProof rewards early proofs of a target: the holder receives
// PayoutRate per unit time from StartTime until the target is proven (or
// BackstopTime is hit), having paid Reward up front. Its exact value is
//
//	payout_rate * max(time_proven(target, backstop) - start, 0) - reward
type PayForQuickProof struct {
	Target       string
	PayoutRate   *big.Rat
	StartTime    *big.Rat
	BackstopTime *big.Rat
	Reward       *big.Rat
}

// NewPayForQuickProof validates and creates a PayForQuickProof asset.
func NewPayForQuickProof(target string, payoutRate, startTime, backstopTime, reward *big.Rat) (*PayForQuickProof, error) {
	zero := new(big.Rat)
	if payoutRate.Cmp(zero) < 0 {
		return nil, fmt.Errorf("payout rate must be >= 0")
	}
	if backstopTime.Cmp(startTime) < 0 {
		return nil, fmt.Errorf("backstop time must be at least start time")
	}
	if reward.Cmp(zero) < 0 {
		return nil, fmt.Errorf("reward must be >= 0")
	}
	return &PayForQuickProof{
		Target:       target,
		PayoutRate:   payoutRate,
		StartTime:    startTime,
		BackstopTime: backstopTime,
		Reward:       reward,
	}, nil
}

// explicitForm rewrites the asset as
// max(rate * time_proven(target, backstop) - rate*start - reward, -reward).
func (p *PayForQuickProof) explicitForm() *Max {
	offset := new(big.Rat).Mul(p.PayoutRate, p.StartTime)
	offset.Add(offset, p.Reward)
	offset.Neg(offset)

	return &Max{Assets: []Asset{
		&LinearCombination{Terms: []Term{
			{Coefficient: new(big.Rat).Set(p.PayoutRate), Asset: &TimeProven{Target: p.Target, StopTime: p.BackstopTime}},
			{Coefficient: big.NewRat(1, 1), Asset: NewConstant(offset)},
		}},
		NewConstant(new(big.Rat).Neg(p.Reward)),
	}}
}

// ReferencedTargetIDs implements Asset.
func (p *PayForQuickProof) ReferencedTargetIDs() map[string]struct{} {
	return singleTargetID(p.Target)
}

// Simplify implements Asset: the asset collapses exactly when its explicit
// form does, and otherwise stays in its compact named form.
func (p *PayForQuickProof) Simplify(success TargetSuccess, watermark *big.Rat) (Asset, error) {
	if err := checkReferenced(p, success); err != nil {
		return nil, err
	}

	simplified, err := p.explicitForm().Simplify(success, watermark)
	if err != nil {
		return nil, err
	}
	if c, ok := simplified.(*Constant); ok {
		return c, nil
	}
	return p, nil
}

// LowerBound implements Asset.
func (p *PayForQuickProof) LowerBound(watermark *big.Rat) *big.Rat {
	return p.explicitForm().LowerBound(watermark)
}

// UpperBound implements Asset.
func (p *PayForQuickProof) UpperBound(watermark *big.Rat) *big.Rat {
	return p.explicitForm().UpperBound(watermark)
}

func (p *PayForQuickProof) String() string {
	return fmt.Sprintf("PayForQuickProofAsset(%s,%s,%s,%s,%s)",
		jsonString(p.Target), formatRat(p.PayoutRate), formatRat(p.StartTime),
		formatRat(p.BackstopTime), formatRat(p.Reward))
}

// simplifyAll simplifies each asset. When every result is a constant, the
// constant values are returned; otherwise constants is nil.
func simplifyAll(assets []Asset, success TargetSuccess, watermark *big.Rat) (simplified []Asset, constants []*big.Rat, err error) {
	simplified = make([]Asset, len(assets))
	constants = make([]*big.Rat, 0, len(assets))
	for i, a := range assets {
		sa, err := a.Simplify(success, watermark)
		if err != nil {
			return nil, nil, err
		}
		simplified[i] = sa
		if c, ok := sa.(*Constant); ok && constants != nil {
			constants = append(constants, c.Value)
		} else {
			constants = nil
		}
	}
	return simplified, constants, nil
}

func foldBounds(assets []Asset, watermark *big.Rat, bound func(Asset, *big.Rat) *big.Rat, pick func([]*big.Rat) *big.Rat) *big.Rat {
	values := make([]*big.Rat, len(assets))
	for i, a := range assets {
		values[i] = bound(a, watermark)
	}
	return pick(values)
}

func ratMax(values []*big.Rat) *big.Rat {
	best := values[0]
	for _, v := range values[1:] {
		if v.Cmp(best) > 0 {
			best = v
		}
	}
	return new(big.Rat).Set(best)
}

func ratMin(values []*big.Rat) *big.Rat {
	best := values[0]
	for _, v := range values[1:] {
		if v.Cmp(best) < 0 {
			best = v
		}
	}
	return new(big.Rat).Set(best)
}

func joinAssets(assets []Asset) string {
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}
