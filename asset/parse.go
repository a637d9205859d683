package asset

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Parse converts a canonical string representation back into an asset.
//
// For any asset a, Parse(a.String()) yields an asset with the same data,
// and for any string s accepted by Parse, Parse(s).String() == s.
func Parse(s string) (Asset, error) {
	s = strings.TrimSpace(s)

	name, args, err := splitCall(s)
	if err != nil {
		return nil, err
	}

	switch name {
	case "ConstantAsset":
		value, err := parseRat(args)
		if err != nil {
			return nil, err
		}
		return NewConstant(value), nil

	case "SatisfiedByAsset":
		parts := splitArgs(args)
		if len(parts) != 2 {
			return nil, fmt.Errorf("SatisfiedByAsset expects 2 arguments, got %d", len(parts))
		}
		target, err := parseJSONString(parts[0])
		if err != nil {
			return nil, err
		}
		stopTime, err := parseRat(parts[1])
		if err != nil {
			return nil, err
		}
		return &SatisfiedBy{Target: target, StopTime: stopTime}, nil

	case "AgentsSatisfyByAsset":
		parts := splitArgs(args)
		if len(parts) != 3 {
			return nil, fmt.Errorf("AgentsSatisfyByAsset expects 3 arguments, got %d", len(parts))
		}
		target, err := parseJSONString(parts[0])
		if err != nil {
			return nil, err
		}
		var agentIDs []string
		if err := json.Unmarshal([]byte(parts[1]), &agentIDs); err != nil {
			return nil, fmt.Errorf("parse agent ID list: %w", err)
		}
		stopTime, err := parseRat(parts[2])
		if err != nil {
			return nil, err
		}
		return &AgentsSatisfyBy{Target: target, AgentIDs: agentIDs, StopTime: stopTime}, nil

	case "TimeProvenAsset":
		parts := splitArgs(args)
		if len(parts) != 2 {
			return nil, fmt.Errorf("TimeProvenAsset expects 2 arguments, got %d", len(parts))
		}
		target, err := parseJSONString(parts[0])
		if err != nil {
			return nil, err
		}
		stopTime, err := parseRat(parts[1])
		if err != nil {
			return nil, err
		}
		return &TimeProven{Target: target, StopTime: stopTime}, nil

	case "MaxAsset":
		assets, err := parseAssetList(args)
		if err != nil {
			return nil, err
		}
		return NewMax(assets)

	case "MinAsset":
		assets, err := parseAssetList(args)
		if err != nil {
			return nil, err
		}
		return NewMin(assets)

	case "LinearCombinationAsset":
		terms, err := parseTermList(args)
		if err != nil {
			return nil, err
		}
		return &LinearCombination{Terms: terms}, nil

	case "PayForQuickProofAsset":
		parts := splitArgs(args)
		if len(parts) != 5 {
			return nil, fmt.Errorf("PayForQuickProofAsset expects 5 arguments, got %d", len(parts))
		}
		target, err := parseJSONString(parts[0])
		if err != nil {
			return nil, err
		}
		rats := make([]*big.Rat, 4)
		for i, part := range parts[1:] {
			r, err := parseRat(part)
			if err != nil {
				return nil, err
			}
			rats[i] = r
		}
		return NewPayForQuickProof(target, rats[0], rats[1], rats[2], rats[3])

	default:
		return nil, fmt.Errorf("unknown asset type in string: %s", s)
	}
}

// splitCall splits "Name(args)" into its name and raw argument text,
// requiring the closing parenthesis to be the last character.
func splitCall(s string) (name, args string, err error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", fmt.Errorf("malformed asset string: %s", s)
	}
	close, err := findMatchingParen(s, open)
	if err != nil {
		return "", "", err
	}
	if close != len(s)-1 {
		return "", "", fmt.Errorf("trailing characters after asset: %s", s)
	}
	return s[:open], s[open+1 : close], nil
}

func parseAssetList(args string) ([]Asset, error) {
	items, err := splitList(args)
	if err != nil {
		return nil, err
	}
	assets := make([]Asset, len(items))
	for i, item := range items {
		a, err := Parse(item)
		if err != nil {
			return nil, err
		}
		assets[i] = a
	}
	return assets, nil
}

func parseTermList(args string) ([]Term, error) {
	items, err := splitList(args)
	if err != nil {
		return nil, err
	}
	terms := make([]Term, len(items))
	for i, item := range items {
		item = strings.TrimSpace(item)
		if !strings.HasPrefix(item, "(") || !strings.HasSuffix(item, ")") {
			return nil, fmt.Errorf("linear combination term must be a pair: %s", item)
		}
		parts := splitArgs(item[1 : len(item)-1])
		if len(parts) != 2 {
			return nil, fmt.Errorf("linear combination term expects 2 elements, got %d", len(parts))
		}
		coefficient, err := parseRat(parts[0])
		if err != nil {
			return nil, err
		}
		a, err := Parse(parts[1])
		if err != nil {
			return nil, err
		}
		terms[i] = Term{Coefficient: coefficient, Asset: a}
	}
	return terms, nil
}

// splitList strips the surrounding brackets from "[a,b,...]" and splits the
// contents into top-level elements. An empty list is rejected: every
// list-shaped asset requires at least one component.
func splitList(args string) ([]string, error) {
	args = strings.TrimSpace(args)
	if !strings.HasPrefix(args, "[") || !strings.HasSuffix(args, "]") {
		return nil, fmt.Errorf("expected a list, got: %s", args)
	}
	inner := args[1 : len(args)-1]
	if inner == "" {
		return nil, fmt.Errorf("asset list must be non-empty")
	}
	return splitArgs(inner), nil
}

// splitArgs splits comma-separated arguments at the top level, respecting
// nested parentheses, brackets, and JSON string literals.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	depth, bracketDepth := 0, 0
	inString, escape := false, false

	for _, ch := range s {
		if escape {
			current.WriteRune(ch)
			escape = false
			continue
		}
		if ch == '\\' && inString {
			escape = true
			current.WriteRune(ch)
			continue
		}
		if ch == '"' {
			inString = !inString
			current.WriteRune(ch)
			continue
		}
		if !inString {
			switch ch {
			case '(':
				depth++
			case ')':
				depth--
			case '[':
				bracketDepth++
			case ']':
				bracketDepth--
			case ',':
				if depth == 0 && bracketDepth == 0 {
					args = append(args, current.String())
					current.Reset()
					continue
				}
			}
		}
		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

func findMatchingParen(s string, start int) (int, error) {
	count := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			count++
		case ')':
			count--
			if count == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unmatched parenthesis in: %s", s)
}

// parseRat parses "n" or "n/d" into an exact rational.
func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid rational: %q", s)
	}
	return r, nil
}

func parseJSONString(s string) (string, error) {
	var out string
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &out); err != nil {
		return "", fmt.Errorf("parse string literal %s: %w", s, err)
	}
	return out, nil
}
