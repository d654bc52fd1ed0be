package tor

import (
	"encoding/base32"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 onion address without the
	// ".onion" suffix: 56 characters of base32-encoded data.
	OnionV3Length = 56

	// OnionV3Version is the version byte embedded in v3 onion addresses.
	OnionV3Version = 0x03

	// OnionV2Length is the length of a v2 onion address without the
	// ".onion" suffix. V2 was retired from the Tor network in 2021.
	OnionV2Length = 16

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// onionV3Pattern matches v3 onion addresses (56 base32 characters + .onion).
// Base32 uses lowercase a-z and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV2Pattern matches deprecated v2 onion addresses. We detect them only
// to give users a clearer error than "invalid address".
var onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)

// checksumPrefix is the prefix used in v3 onion address checksum
// calculation, per the Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// Onion address validation errors.
var (
	// ErrInvalidOnionAddress is returned when an address is not a valid
	// v3 onion address.
	ErrInvalidOnionAddress = errors.New("invalid onion address")

	// ErrV2AddressDeprecated is returned when a v2 onion address is given.
	// V2 addresses stopped working in October 2021.
	ErrV2AddressDeprecated = errors.New("v2 onion addresses are deprecated and no longer functional")
)

// IsValidV3Address checks if the given address is a valid v3 onion address.
// It performs both format validation and checksum verification.
//
// Design decision: we verify the checksum rather than only pattern-matching
// because directory entries and pasted addresses do contain typos, and the
// checksum catches them before a probe burns a Tor circuit on a hopeless
// connection attempt.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)

	// The Tor spec uses standard base32 encoding (RFC 4648).
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// 32 bytes ed25519 public key + 2 bytes checksum + 1 byte version.
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != OnionV3Version {
		return false
	}

	expected := computeV3Checksum(pubkey, version)
	return checksum[0] == expected[0] && checksum[1] == expected[1]
}

// computeV3Checksum computes the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)
	return hash[:2]
}

// IsV2Address checks if the given address matches the v2 onion address
// format. Provided to produce a clearer error message, not to validate
// v2 addresses for use.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// NormalizeAddress normalizes an onion address to lowercase with the
// .onion suffix and validates it as a v3 address.
//
// Common input variations are handled: uppercase letters, a missing
// .onion suffix, surrounding whitespace, URL schemes, and trailing
// paths or query strings.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))

	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")

	if idx := strings.IndexAny(address, "/?#"); idx != -1 {
		address = address[:idx]
	}

	if !strings.HasSuffix(address, OnionSuffix) {
		address += OnionSuffix
	}

	if !IsValidV3Address(address) {
		if IsV2Address(address) {
			return "", ErrV2AddressDeprecated
		}
		return "", ErrInvalidOnionAddress
	}

	return address, nil
}
