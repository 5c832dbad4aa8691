// Package xrand generates random test inputs from crypto/rand.
package xrand

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
)

// Bytes generates random bytes with length n.
func Bytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Reader.Read(b)
	if err != nil {
		panic(fmt.Sprintf("failed to generate rand bytes: %v", err))
	}
	return b
}

// Bool returns a randomly generated boolean.
func Bool() bool {
	return Int(2) == 1
}

// Int returns a randomly generated integer between [0, max).
func Int(max int) int {
	x, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("failed to get random int: %v", err))
	}
	return int(x.Int64())
}

// Uint32 returns a random 32 bit value.
func Uint32() uint32 {
	return binary.LittleEndian.Uint32(Bytes(4))
}

// Uint64 returns a random 64 bit value.
func Uint64() uint64 {
	return binary.LittleEndian.Uint64(Bytes(8))
}

// Chunks splits b into consecutive pieces of random length,
// each at least one byte long.
func Chunks(b []byte) [][]byte {
	var chunks [][]byte
	for len(b) > 0 {
		n := 1 + Int(len(b))
		chunks = append(chunks, b[:n])
		b = b[n:]
	}
	return chunks
}
