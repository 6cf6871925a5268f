package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// GenerateID returns a short, time-prefixed reference such as
// "pay_1718000000_004211". The sandbox gateway uses it for order and payment
// references.
func GenerateID(prefix string) string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("%s_%d_%06d", prefix, timestamp, randomNum.Int64())
}

// GenerateUUID creates a random document id.
func GenerateUUID() string {
	return uuid.NewString()
}
