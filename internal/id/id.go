// Package id generates stub identifiers.
package id

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// stubNamespace scopes Derived identifiers.
var stubNamespace = uuid.MustParse("6f1c9a52-3d8e-4b7a-9c41-0e2f5d7a8b13")

// Derived returns a stable UUID (v5) for parts. The same contract,
// scenario and variant always yield the same stub ID.
func Derived(parts ...string) string {
	return uuid.NewSHA1(stubNamespace, []byte(strings.Join(parts, "\x00"))).String()
}

// UUID generates a random UUID v4.
func UUID() string {
	return uuid.NewString()
}

// --- ULID ---
// 26 characters, time-sortable: 10 characters of millisecond timestamp
// followed by 16 characters of randomness.

// ulidEncoding is Crockford's Base32 (no I, L, O, U).
const ulidEncoding = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var (
	ulidMu      sync.Mutex
	ulidLastMs  int64
	ulidCounter uint16
)

// New generates a ULID. IDs generated by one process sort in creation order
// at millisecond granularity.
func New() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	now := time.Now().UnixMilli()
	if now == ulidLastMs {
		ulidCounter++
		if ulidCounter == 0 {
			for now == ulidLastMs {
				time.Sleep(time.Millisecond)
				now = time.Now().UnixMilli()
			}
			ulidLastMs = now
		}
	} else {
		ulidLastMs = now
		ulidCounter = 0
	}
	return encodeULID(now, ulidCounter)
}

func encodeULID(ms int64, counter uint16) string {
	ulid := make([]byte, 26)
	for i := 9; i >= 0; i-- {
		ulid[i] = ulidEncoding[ms&0x1F]
		ms >>= 5
	}

	random := make([]byte, 10)
	_, _ = rand.Read(random)
	random[0] ^= byte(counter >> 8)
	random[1] ^= byte(counter)

	// 80 bits of randomness, 5 bits per character.
	var acc uint64
	bits := 0
	pos := 10
	for _, b := range random {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			ulid[pos] = ulidEncoding[(acc>>uint(bits))&0x1F]
			pos++
		}
	}
	return string(ulid)
}

// IsValidULID reports whether s is a well-formed ULID.
func IsValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(ulidEncoding, s[i]) < 0 {
			return false
		}
	}
	return true
}

// IsValid reports whether s is a stub identifier produced by this package.
func IsValid(s string) bool {
	if IsValidULID(s) {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil
}
