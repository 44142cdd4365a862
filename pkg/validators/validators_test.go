package validators

import (
	"context"
	"errors"
	"math/big"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mr-tron/base58/base58"

	"github.com/goliatone/go-txform/pkg/field"
	"github.com/goliatone/go-txform/pkg/loop"
	"github.com/goliatone/go-txform/pkg/testsupport"
)

const (
	aliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	aliceHex     = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
)

func aliceAccount(t *testing.T) AccountID {
	t.Helper()
	addr, err := DecodeAddress(aliceAddress)
	if err != nil {
		t.Fatalf("decode alice: %v", err)
	}
	return addr.Account
}

func TestDecodeAddress_Known(t *testing.T) {
	addr, err := DecodeAddress(aliceAddress)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if addr.Prefix != 42 {
		t.Fatalf("expected prefix 42, got %d", addr.Prefix)
	}
	if got := addr.Account.String(); got != aliceHex {
		t.Fatalf("account mismatch: %s", got)
	}
	encoded, err := EncodeAddress(42, addr.Account)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != aliceAddress {
		t.Fatalf("round trip mismatch: %s", encoded)
	}
}

func TestEncodeAddress_TwoBytePrefix(t *testing.T) {
	account := aliceAccount(t)
	for _, prefix := range []uint16{0, 2, 63, 64, 1284, 16383} {
		encoded, err := EncodeAddress(prefix, account)
		if err != nil {
			t.Fatalf("encode %d: %v", prefix, err)
		}
		addr, err := DecodeAddress(encoded)
		if err != nil {
			t.Fatalf("decode %d: %v", prefix, err)
		}
		if addr.Prefix != prefix || addr.Account != account {
			t.Fatalf("prefix %d round trip mismatch: %+v", prefix, addr)
		}
	}
	if _, err := EncodeAddress(16384, account); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected out of range prefix to fail, got %v", err)
	}
}

func TestDecodeAddress_Errors(t *testing.T) {
	data, err := base58.Decode(aliceAddress)
	if err != nil {
		t.Fatalf("base58: %v", err)
	}
	data[len(data)-1] ^= 0xff
	if _, err := DecodeAddress(base58.Encode(data)); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
	for _, raw := range []string{"", "0OIl", "5Grwva"} {
		if _, err := DecodeAddress(raw); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("DecodeAddress(%q): expected ErrInvalidAddress, got %v", raw, err)
		}
	}
}

func TestAddress_Sync(t *testing.T) {
	alice := aliceAccount(t)
	keys := KeyStoreFunc(func(a AccountID) bool { return a == alice })
	l := loop.New()
	b := field.New(l, field.WithValidator(Address(AddressConfig{Prefix: 42, Keys: keys})))
	testsupport.MustMount(t, b)

	if err := b.SetDisplay("  " + aliceAddress + " "); err != nil {
		t.Fatalf("set display: %v", err)
	}
	got := b.State()
	if !got.Valid || got.Internal != alice || got.External != aliceAddress {
		t.Fatalf("unexpected state: %+v", got)
	}
	if known, _ := got.ExtraValue(ExtraKnown); known != true {
		t.Fatalf("expected known key, extra=%+v", got.Extra)
	}

	b.Blur()
	if got := b.State().RawInput; got != aliceAddress {
		t.Fatalf("expected blur to adopt the canonical address, got %q", got)
	}

	other, err := EncodeAddress(0, alice)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_ = b.SetDisplay(other)
	if b.State().Valid {
		t.Fatalf("expected foreign prefix to be rejected")
	}
}

func TestAddress_AnyPrefixReencodes(t *testing.T) {
	alice := aliceAccount(t)
	other, err := EncodeAddress(0, alice)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	l := loop.New()
	b := field.New(l, field.WithValidator(Address(AddressConfig{Prefix: 42, AnyPrefix: true})))
	testsupport.MustMount(t, b)
	_ = b.SetDisplay(other)
	got := b.State()
	if !got.Valid || got.External != aliceAddress {
		t.Fatalf("expected re-encoded address, got %+v", got)
	}
	if _, ok := got.ExtraValue(ExtraKnown); ok {
		t.Fatalf("known must be absent without a key store")
	}
}

func TestAddress_AliasResolution(t *testing.T) {
	alice := aliceAccount(t)
	release := make(chan struct{})
	resolver := AliasResolverFunc(func(ctx context.Context, alias string) (string, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		if alias == "alice" {
			return aliceAddress, nil
		}
		return "", errors.New("unknown alias")
	})

	l := loop.New()
	b := field.New(l, field.WithValidator(Address(AddressConfig{Prefix: 42, Resolve: resolver})))
	testsupport.MustMount(t, b)

	_ = b.SetDisplay("alice")
	if !b.Pending() || b.State().Valid {
		t.Fatalf("expected pending alias resolution, got %+v", b.State())
	}
	close(release)

	testsupport.Settle(t, l, func() bool { return !b.Pending() })

	got := b.State()
	if !got.Valid || got.Internal != alice || got.RawInput != "alice" {
		t.Fatalf("unexpected resolved state: %+v", got)
	}
	if alias, _ := got.ExtraValue(ExtraAlias); alias != "alice" {
		t.Fatalf("expected alias in extra, got %+v", got.Extra)
	}

	_ = b.SetDisplay("bob")
	testsupport.Settle(t, l, func() bool { return !b.Pending() })
	if b.State().Valid {
		t.Fatalf("expected unresolved alias to be invalid")
	}
}

func TestBalance_ParseAmount(t *testing.T) {
	d := DefaultDenominations()
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "1", want: "1000000000000"},
		{raw: "1.5", want: "1500000000000"},
		{raw: "1,5", want: "1500000000000"},
		{raw: ".25", want: "250000000000"},
		{raw: "1.5 m", want: "1500000000"},
		{raw: "2k UNIT", want: "2000000000000000"},
		{raw: "2 kunit", want: "2000000000000000"},
		{raw: "3 UNIT", want: "3000000000000"},
		{raw: "7µ", want: "7000000"},
		{raw: "1.", want: "1000000000000"},
	}
	for _, tc := range cases {
		got, err := d.ParseAmount(tc.raw)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tc.raw, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}

	for _, raw := range []string{"", "abc", "-1", "1 x", "0.0000000000001", "1.2.3"} {
		if _, err := d.ParseAmount(raw); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q): expected ErrInvalidAmount, got %v", raw, err)
		}
	}
}

func TestBalance_Validator(t *testing.T) {
	d := DefaultDenominations()
	l := loop.New()
	b := field.New(l, field.WithValidator(Balance(d)), field.WithFormatter(BalanceFormatter(d)))
	testsupport.MustMount(t, b)

	_ = b.SetDisplay("1500 m")
	got := b.State()
	base, ok := got.Internal.(*big.Int)
	if !got.Valid || !ok || base.String() != "1500000000000" {
		t.Fatalf("unexpected state: %+v", got)
	}
	if got.External != "1500000000000" {
		t.Fatalf("unexpected external value %v", got.External)
	}
	b.Blur()
	if raw := b.State().RawInput; raw != "1.5 UNIT" {
		t.Fatalf("expected canonical correction on blur, got %q", raw)
	}
}

func TestBalanceFormatter(t *testing.T) {
	format := BalanceFormatter(DefaultDenominations())
	cases := map[any]string{
		"2500000000000": "2.5 UNIT",
		int64(1):        "0.000000000001 UNIT",
		"not a number":  "not a number",
	}
	for in, want := range cases {
		if got := format(in); got != want {
			t.Fatalf("format(%v) = %q, want %q", in, got, want)
		}
	}
	if got := format(big.NewInt(0)); got != "0 UNIT" {
		t.Fatalf("unexpected zero format %q", got)
	}
}

func TestText(t *testing.T) {
	v := Text(TextOptions{Pattern: regexp.MustCompile(`^[a-z]+$`), MaxLength: 5})
	cases := map[string]bool{
		"abc":    true,
		"  abc ": true,
		"":       false,
		"abcdef": false,
		"ABC":    false,
	}
	for raw, valid := range cases {
		out := v(context.Background(), raw, field.State{})
		if got := out != nil; got != valid {
			t.Fatalf("Text(%q) valid=%v, want %v", raw, got, valid)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry(Defaults{Address: AddressConfig{Prefix: 42}, Denominations: DefaultDenominations()})
	if diff := cmp.Diff([]string{NameAddress, NameBalance, NameText}, r.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.Register(NameText, Text(TextOptions{})); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := r.Register("nil", nil); err == nil {
		t.Fatalf("expected nil validator to be rejected")
	}
	v, err := r.Get(NameBalance)
	if err != nil || v == nil {
		t.Fatalf("get balance: %v", err)
	}
	if !r.Has(NameAddress) {
		t.Fatalf("expected address validator")
	}
}
