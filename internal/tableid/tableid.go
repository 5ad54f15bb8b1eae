// Package tableid generates sortable table identifiers: UUIDv7 encoded
// as 26 characters of Crockford base32.
package tableid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Crockford's base32: no i, l, o or u
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail of an id. Injected in tests to
// make generation deterministic.
type RandSource interface {
	Intn(n int) int
}

// Generator produces table ids, optionally from a fixed RandSource.
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a generator. A nil RandSource uses the
// library's entropy.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new table id.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// GenerateWithRandSource creates a table id from the provided source.
func GenerateWithRandSource(randSource RandSource) string {
	return NewGenerator(randSource).Generate()
}

// Generate creates a new table id. Ids generated later sort after ids
// generated earlier because the leading bits are a millisecond
// timestamp.
func (g *Generator) Generate() string {
	if g.randSource == nil {
		return encodeBase32(uuid.Must(uuid.NewV7()))
	}
	return encodeBase32(g.buildV7())
}

// buildV7 assembles a UUIDv7 by hand so the random tail can come from
// the injected source: 48-bit millisecond timestamp, then version and
// variant bits over random data.
func (g *Generator) buildV7() [16]byte {
	var id [16]byte

	now := time.Now().UnixMilli()
	id[0] = byte(now >> 40)
	id[1] = byte(now >> 32)
	id[2] = byte(now >> 24)
	id[3] = byte(now >> 16)
	id[4] = byte(now >> 8)
	id[5] = byte(now)

	for i := 6; i < 16; i++ {
		id[i] = byte(g.randSource.Intn(256))
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return id
}

// encodeBase32 packs 128 bits into 26 base32 characters, five bits at
// a time, most significant first.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)

	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}

		result[i] = alphabet[value]
	}

	return string(result)
}

// Validate checks that an id is 26 characters of the base32 alphabet
// and decodes to at most 128 bits.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("table id must be exactly 26 characters, got %d", len(id))
	}

	// The first character carries the three high bits plus two bits of
	// padding, so anything above '7' would overflow 128 bits
	if id[0] > '7' {
		return fmt.Errorf("table id first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		valid := false
		for _, validChar := range alphabet {
			if char == validChar {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
