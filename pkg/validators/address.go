package validators

import (
	"context"
	"strings"

	"github.com/goliatone/go-txform/pkg/field"
)

// KeyStore reports whether an account belongs to the local keyring.
type KeyStore interface {
	Has(account AccountID) bool
}

// KeyStoreFunc adapts a function to KeyStore.
type KeyStoreFunc func(account AccountID) bool

// Has calls fn.
func (fn KeyStoreFunc) Has(account AccountID) bool {
	return fn(account)
}

// AliasResolver turns a human alias (an on-chain identity, an address book
// entry) into an SS58 address. Resolve may block; it is called off the loop
// goroutine and ctx is cancelled once the edit is superseded.
type AliasResolver interface {
	Resolve(ctx context.Context, alias string) (string, error)
}

// AliasResolverFunc adapts a function to AliasResolver.
type AliasResolverFunc func(ctx context.Context, alias string) (string, error)

// Resolve calls fn.
func (fn AliasResolverFunc) Resolve(ctx context.Context, alias string) (string, error) {
	return fn(ctx, alias)
}

// AddressConfig configures Address.
type AddressConfig struct {
	// Prefix is the network prefix addresses must be encoded with.
	Prefix uint16
	// AnyPrefix accepts addresses of other networks and re-encodes them
	// under Prefix.
	AnyPrefix bool
	// Keys, when set, populates Extra["known"].
	Keys KeyStore
	// Resolve, when set, is consulted for input that is not an address.
	Resolve AliasResolver
}

// Extra keys written by Address.
const (
	ExtraKnown   = "known"
	ExtraPrefix  = "prefix"
	ExtraAccount = "account"
	ExtraAlias   = "alias"
)

// Address validates SS58 account addresses. The internal value is the
// AccountID; the external value is the address encoded under cfg.Prefix.
func Address(cfg AddressConfig) field.Validator {
	return func(ctx context.Context, raw string, _ field.State) field.Outcome {
		input := strings.TrimSpace(raw)
		if input == "" {
			return nil
		}

		if addr, err := DecodeAddress(input); err == nil {
			return cfg.result(addr, "")
		}
		if cfg.Resolve == nil || strings.ContainsAny(input, " \t") {
			return nil
		}
		return cfg.resolve(ctx, input)
	}
}

func (cfg AddressConfig) resolve(ctx context.Context, alias string) field.Outcome {
	pending := field.NewDeferred()
	go func() {
		resolved, err := cfg.Resolve.Resolve(ctx, alias)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			pending.Emit(nil)
			return
		}
		addr, err := DecodeAddress(strings.TrimSpace(resolved))
		if err != nil {
			pending.Emit(nil)
			return
		}
		pending.Emit(cfg.result(addr, alias))
	}()
	return pending.Outcome()
}

func (cfg AddressConfig) result(addr DecodedAddress, alias string) field.Outcome {
	if addr.Prefix != cfg.Prefix && !cfg.AnyPrefix {
		return nil
	}
	canonical, err := EncodeAddress(cfg.Prefix, addr.Account)
	if err != nil {
		return nil
	}

	extra := map[string]any{
		ExtraPrefix:  int(addr.Prefix),
		ExtraAccount: addr.Account.String(),
	}
	if cfg.Keys != nil {
		extra[ExtraKnown] = cfg.Keys.Has(addr.Account)
	}
	res := &field.Result{
		Internal: addr.Account,
		External: canonical,
		Extra:    extra,
	}
	if alias != "" {
		extra[ExtraAlias] = alias
	} else {
		res.Corrected = canonical
	}
	return res
}
