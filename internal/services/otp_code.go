package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// OTPLength is the number of digits in a one-time password
	OTPLength = 6
	// OTPTTL is how long a one-time password stays valid
	OTPTTL = 10 * time.Minute
)

// GenerateOTPCode returns a uniformly distributed numeric code of the given length
func GenerateOTPCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
