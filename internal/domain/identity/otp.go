package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// OTPLength is the number of digits in a login code
	OTPLength = 6

	// OTPTTL is how long a login code stays valid
	OTPTTL = 10 * time.Minute
)

// GenerateOTP returns a zero-padded random OTPLength-digit code
func GenerateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}
