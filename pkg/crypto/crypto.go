package crypto

import (
	"crypto/rand"
	"errors"
)

// codeAlphabet restricts generated codes to Latin letters. Digits and symbols
// are excluded so codes stay unambiguous when embedded in emailed links.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateCode returns a random code of the requested length drawn uniformly
// from upper- and lower-case Latin letters.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("crypto: code length must be positive")
	}

	out := make([]byte, length)
	// Rejection sampling keeps the draw uniform across the 52-letter alphabet.
	max := byte(256 - 256%len(codeAlphabet))

	i := 0
	buf := make([]byte, length)
	for i < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
			i++
			if i == length {
				break
			}
		}
	}

	return string(out), nil
}
