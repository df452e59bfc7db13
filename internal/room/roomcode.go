package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet excludes visually ambiguous characters (I, O, 1, 0) so a
// spoken or hand-typed room code never depends on font rendering.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// maxCodeCollisionRetries bounds how many times GenerateRoomCode will draw
// a fresh candidate before giving up.
const maxCodeCollisionRetries = 20

// GenerateRoomCode draws a random 6-character room code from codeAlphabet,
// retrying on collision (as reported by exists) up to
// maxCodeCollisionRetries times.
func GenerateRoomCode(exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeCollisionRetries; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("room: exhausted %d attempts generating a unique room code", maxCodeCollisionRetries)
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	alphabetLen := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("room: generating room code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
