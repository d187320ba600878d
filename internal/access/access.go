// Package access generates room codes and passcodes and checks passcodes
// against their stored bcrypt hashes.
package access

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPasscode is returned when a passcode does not match its hash
var ErrBadPasscode = errors.New("passcode does not match")

// Room codes avoid characters that are easy to misread (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// PasscodeLength is the number of digits in a generated passcode
const PasscodeLength = 6

func randomString(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length %d", length)
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// GenerateRoomCode returns a random upper-case room code
func GenerateRoomCode(length int) (string, error) {
	return randomString(codeAlphabet, length)
}

// GeneratePasscode returns a random numeric passcode
func GeneratePasscode() (string, error) {
	return randomString("0123456789", PasscodeLength)
}

// SeatTokenBytes is the entropy of a seat token
const SeatTokenBytes = 16

// GenerateSeatToken returns the secret a participant presents to act for
// their seat
func GenerateSeatToken() (string, error) {
	b := make([]byte, SeatTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPasscode hashes a passcode for storage
func HashPasscode(passcode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hash), nil
}

// VerifyPasscode checks a passcode against its stored hash
func VerifyPasscode(hash, passcode string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadPasscode
	}
	return fmt.Errorf("failed to verify passcode: %w", err)
}
