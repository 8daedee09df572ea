package subsonic

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const saltAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newSalt returns a random alphanumeric string of length n.
func newSalt(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(saltAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS source is broken.
			panic(err)
		}
		b[i] = saltAlphabet[idx.Int64()]
	}
	return string(b)
}

// token computes the Subsonic auth token: hex(md5(password + salt)).
func token(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}
