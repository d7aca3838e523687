package credentials

import (
	"crypto/rand"
	"math/big"
)

// JoinCodeAlphabet omits 0, O, 1 and I so codes can be read aloud in class
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the number of characters in a session code
const JoinCodeLength = 6

// GenerateJoinCode returns a random session code
func GenerateJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	for i := range code {
		c, err := randomChar(JoinCodeAlphabet)
		if err != nil {
			return "", err
		}
		code[i] = c
	}
	return string(code), nil
}

// IsJoinCode reports whether s looks like a code produced by GenerateJoinCode
func IsJoinCode(s string) bool {
	if len(s) != JoinCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		found := false
		for j := 0; j < len(JoinCodeAlphabet); j++ {
			if s[i] == JoinCodeAlphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func randomChar(chars string) (byte, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
	if err != nil {
		return 0, err
	}
	return chars[num.Int64()], nil
}
