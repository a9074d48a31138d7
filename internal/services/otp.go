package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// DefaultOTPTTL is the lifetime of a verification code.
const DefaultOTPTTL = 10 * time.Minute

// otpRange covers the six-digit codes 100000..999999.
var otpRange = big.NewInt(900000)

// generateOTPCode draws a uniform random six-digit code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
