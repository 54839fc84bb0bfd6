package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

const handoffSecretSize = 18

// NewVerificationCode returns a decimal verification code drawn uniformly
// from [10^(digits-1), 10^digits - 1]. The low bound excludes leading zeros so
// the code survives transports that strip them.
func NewVerificationCode(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid verification code digits")
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := low*10 - low

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}

	code := strconv.FormatInt(low+n.Int64(), 10)
	if len(code) != digits {
		return "", fmt.Errorf("invalid verification code length")
	}
	return code, nil
}

// NewHandoffToken returns an opaque token binding a millisecond timestamp to a
// random suffix. Collision probability is negligible within the token TTL;
// guessing resistance is bounded by the suffix entropy, not certified
// cryptography.
func NewHandoffToken() (string, error) {
	var secret [handoffSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}

	suffix := base64.RawURLEncoding.EncodeToString(secret[:])
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix, nil
}
