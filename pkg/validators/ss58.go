package validators

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
)

// PublicKeySize is the length of an account public key.
const PublicKeySize = 32

const checksumSize = 2

var checksumPrefix = []byte("SS58PRE")

// AccountID is a raw account public key.
type AccountID [PublicKeySize]byte

// String renders the key as 0x-prefixed hex.
func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// DecodedAddress is a decoded SS58 address.
type DecodedAddress struct {
	Prefix  uint16
	Account AccountID
}

// EncodeAddress renders account under the given network prefix.
func EncodeAddress(prefix uint16, account AccountID) (string, error) {
	head, err := encodePrefix(prefix)
	if err != nil {
		return "", err
	}
	payload := append(head, account[:]...)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum[:checksumSize]...)), nil
}

// DecodeAddress parses an SS58 string and verifies its checksum.
func DecodeAddress(raw string) (DecodedAddress, error) {
	data, err := base58.Decode(raw)
	if err != nil {
		return DecodedAddress{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(data) == 0 {
		return DecodedAddress{}, ErrInvalidAddress
	}

	prefix, prefixLen, err := decodePrefix(data)
	if err != nil {
		return DecodedAddress{}, err
	}
	if len(data) != prefixLen+PublicKeySize+checksumSize {
		return DecodedAddress{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidAddress, len(data))
	}

	payload := data[:prefixLen+PublicKeySize]
	sum := checksum(payload)
	if sum[0] != data[len(payload)] || sum[1] != data[len(payload)+1] {
		return DecodedAddress{}, ErrChecksumMismatch
	}

	var account AccountID
	copy(account[:], payload[prefixLen:])
	return DecodedAddress{Prefix: prefix, Account: account}, nil
}

// Simple prefixes (< 64) take one byte; the rest are packed into two.
func encodePrefix(prefix uint16) ([]byte, error) {
	switch {
	case prefix < 64:
		return []byte{byte(prefix)}, nil
	case prefix < 16384:
		first := byte((prefix&0b1111_1100)>>2) | 0b0100_0000
		second := byte(prefix>>8) | byte((prefix&0b11)<<6)
		return []byte{first, second}, nil
	default:
		return nil, fmt.Errorf("%w: prefix %d out of range", ErrInvalidAddress, prefix)
	}
}

func decodePrefix(data []byte) (uint16, int, error) {
	switch first := data[0]; {
	case first < 64:
		return uint16(first), 1, nil
	case first < 128:
		if len(data) < 2 {
			return 0, 0, ErrInvalidAddress
		}
		second := data[1]
		lower := uint16(first&0b0011_1111)<<2 | uint16(second>>6)
		upper := uint16(second & 0b0011_1111)
		return lower | upper<<8, 2, nil
	default:
		return 0, 0, fmt.Errorf("%w: reserved prefix byte %d", ErrInvalidAddress, first)
	}
}

func checksum(payload []byte) [blake2b.Size]byte {
	return blake2b.Sum512(append(append([]byte(nil), checksumPrefix...), payload...))
}
