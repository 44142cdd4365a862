package validators

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/goliatone/go-txform/pkg/field"
)

// Denominations describes how a chain's token amounts are written.
type Denominations struct {
	// Unit is the token symbol, for example "DOT".
	Unit string
	// Decimals is the number of base-unit digits in one Unit.
	Decimals int32
	// Prefixes maps SI prefixes to power-of-ten exponents ("m" -> -3).
	Prefixes map[string]int32
}

// DefaultDenominations returns a 12-decimal "UNIT" with the common SI
// prefixes.
func DefaultDenominations() Denominations {
	return Denominations{
		Unit:     "UNIT",
		Decimals: 12,
		Prefixes: map[string]int32{
			"k": 3,
			"M": 6,
			"m": -3,
			"µ": -6,
			"u": -6,
			"n": -9,
		},
	}
}

// Extra keys written by Balance.
const (
	ExtraBase = "base"
	ExtraUnit = "unit"
)

var amountPattern = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]*)?|[.,][0-9]+)\s*(.*)$`)

// ParseAmount converts human input ("1.5", "1.5 m", "2k UNIT") into base
// units. Negative amounts and amounts finer than one base unit are rejected.
func (d Denominations) ParseAmount(raw string) (*big.Int, error) {
	match := amountPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	number := strings.TrimSuffix(strings.ReplaceAll(match[1], ",", "."), ".")
	amount, err := decimal.NewFromString(number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	exponent, err := d.exponent(match[2])
	if err != nil {
		return nil, err
	}

	base := amount.Shift(d.Decimals + exponent)
	if !base.IsInteger() {
		return nil, fmt.Errorf("%w: %q is finer than one base unit", ErrInvalidAmount, raw)
	}
	return base.BigInt(), nil
}

// exponent resolves the "[prefix][unit]" suffix of an amount.
func (d Denominations) exponent(suffix string) (int32, error) {
	suffix = strings.TrimSpace(suffix)
	if d.Unit != "" && len(suffix) >= len(d.Unit) &&
		strings.EqualFold(suffix[len(suffix)-len(d.Unit):], d.Unit) {
		suffix = strings.TrimSpace(suffix[:len(suffix)-len(d.Unit)])
	}
	if suffix == "" {
		return 0, nil
	}
	if exp, ok := d.Prefixes[suffix]; ok {
		return exp, nil
	}
	return 0, fmt.Errorf("%w: unknown denomination %q", ErrInvalidAmount, suffix)
}

// Format renders base units as a canonical "<amount> <unit>" string.
func (d Denominations) Format(base *big.Int) string {
	if base == nil {
		return ""
	}
	amount := decimal.NewFromBigInt(base, -d.Decimals).String()
	if d.Unit == "" {
		return amount
	}
	return amount + " " + d.Unit
}

// PrefixNames lists configured prefixes, sorted.
func (d Denominations) PrefixNames() []string {
	names := make([]string, 0, len(d.Prefixes))
	for name := range d.Prefixes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Balance validates token amounts. The internal value is a *big.Int of base
// units, the external value its decimal string, and the canonical "<amount>
// <unit>" form is offered as the blur correction.
func Balance(d Denominations) field.Validator {
	return func(_ context.Context, raw string, _ field.State) field.Outcome {
		base, err := d.ParseAmount(raw)
		if err != nil {
			return nil
		}
		return &field.Result{
			Internal:  base,
			External:  base.String(),
			Corrected: d.Format(base),
			Extra: map[string]any{
				ExtraBase: base.String(),
				ExtraUnit: d.Unit,
			},
		}
	}
}

// BalanceFormatter renders source values (base units as *big.Int, integer
// or decimal string) for display, for use with field.WithFormatter.
func BalanceFormatter(d Denominations) func(any) string {
	return func(value any) string {
		switch v := value.(type) {
		case nil:
			return ""
		case *big.Int:
			return d.Format(v)
		case int64:
			return d.Format(big.NewInt(v))
		case int:
			return d.Format(big.NewInt(int64(v)))
		case string:
			if base, ok := new(big.Int).SetString(strings.TrimSpace(v), 10); ok {
				return d.Format(base)
			}
			return v
		default:
			return fmt.Sprint(v)
		}
	}
}
