// Package cipher implements the CM93 substitution cipher: a fixed
// 256-byte lookup table, XORed with 8 to produce the encode table, whose
// inverse permutation is the decode table.
package cipher

import "sync"

// table0 is the fixed substitution table baked into the CM93 format.
// The encode table is derived as encode[i] = table0[i] ^ 0x08; the decode
// table is its inverse permutation.
var table0 = [256]byte{
	0xCD, 0xEA, 0xDC, 0x48, 0x3E, 0x6D, 0xCA, 0x7B, 0x52, 0xE1,
	0xA4, 0x8E, 0xAB, 0x05, 0xA7, 0x97, 0xB9, 0x60, 0x39, 0x85,
	0x7C, 0x56, 0x7A, 0xBA, 0x68, 0x6E, 0xF5, 0x5D, 0x02, 0x4E,
	0x0F, 0xA1, 0x27, 0x24, 0x41, 0x34, 0x00, 0x5A, 0xFE, 0xCB,
	0xD0, 0xFA, 0xF8, 0x6C, 0x74, 0x96, 0x9E, 0x0E, 0xC2, 0x49,
	0xE3, 0xE5, 0xC0, 0x3B, 0x59, 0x18, 0xA9, 0x86, 0x8F, 0x30,
	0xC3, 0xA8, 0x22, 0x0A, 0x14, 0x1A, 0xB2, 0xC9, 0xC7, 0xED,
	0xAA, 0x29, 0x94, 0x75, 0x0D, 0xAC, 0x0C, 0xF4, 0xBB, 0xC5,
	0x3F, 0xFD, 0xD9, 0x9C, 0x4F, 0xD5, 0x84, 0x1E, 0xB1, 0x81,
	0x69, 0xB4, 0x09, 0xB8, 0x3C, 0xAF, 0xA3, 0x08, 0xBF, 0xE0,
	0x9A, 0xD7, 0xF7, 0x8C, 0x67, 0x66, 0xAE, 0xD4, 0x4C, 0xA5,
	0xEC, 0xF9, 0xB6, 0x64, 0x78, 0x06, 0x5B, 0x9B, 0xF2, 0x99,
	0xCE, 0xDB, 0x53, 0x55, 0x65, 0x8D, 0x07, 0x33, 0x04, 0x37,
	0x92, 0x26, 0x23, 0xB5, 0x58, 0xDA, 0x2F, 0xB3, 0x40, 0x5E,
	0x7F, 0x4B, 0x62, 0x80, 0xE4, 0x6F, 0x73, 0x1D, 0xDF, 0x17,
	0xCC, 0x28, 0x25, 0x2D, 0xEE, 0x3A, 0x98, 0xE2, 0x01, 0x0B,
	0xDD, 0xBC, 0x90, 0xB0, 0xFC, 0x95, 0x76, 0x93, 0x46, 0x57,
	0x2C, 0x2B, 0x50, 0x11, 0xEB, 0xC1, 0xF0, 0xE7, 0xD6, 0x21,
	0x31, 0xDE, 0xFF, 0xD8, 0x12, 0xA6, 0x4D, 0x8A, 0x13, 0x43,
	0x45, 0x38, 0xD2, 0x87, 0xA0, 0xEF, 0x82, 0xF1, 0x47, 0x89,
	0x6A, 0xC8, 0x54, 0x1B, 0x16, 0x7E, 0x79, 0xBD, 0x6B, 0x91,
	0xA2, 0x71, 0x36, 0xB7, 0x03, 0x3D, 0x72, 0xC6, 0x44, 0x8B,
	0xCF, 0x15, 0x9F, 0x32, 0xC4, 0x77, 0x83, 0x63, 0x20, 0x88,
	0xF6, 0xAD, 0xF3, 0xE8, 0x4A, 0xE9, 0x35, 0x1C, 0x5F, 0x19,
	0x1F, 0x7D, 0x70, 0xFB, 0xD1, 0x51, 0x10, 0xD3, 0x2E, 0x61,
	0x9D, 0x5C, 0x2A, 0x42, 0xBE, 0xE6,
}

var (
	once        sync.Once
	encodeTable [256]byte
	decodeTable [256]byte
)

func initTables() {
	for i := 0; i < 256; i++ {
		encoded := table0[i] ^ 0x08
		encodeTable[i] = encoded
		decodeTable[encoded] = byte(i)
	}
}

func tables() (*[256]byte, *[256]byte) {
	once.Do(initTables)
	return &encodeTable, &decodeTable
}

// Encode returns the substitution-encoded form of b.
func Encode(b byte) byte {
	enc, _ := tables()
	return enc[b]
}

// Decode returns the substitution-decoded form of b.
func Decode(b byte) byte {
	_, dec := tables()
	return dec[b]
}

// EncodeBuffer encodes data in place.
func EncodeBuffer(data []byte) {
	enc, _ := tables()
	for i, b := range data {
		data[i] = enc[b]
	}
}

// DecodeBuffer decodes data in place.
func DecodeBuffer(data []byte) {
	_, dec := tables()
	for i, b := range data {
		data[i] = dec[b]
	}
}
