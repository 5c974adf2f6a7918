package account

import (
	"unicode"

	"github.com/murtaza309/streemza/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// CheckPasswordPolicy requires at least 8 characters with an uppercase letter,
// a lowercase letter, a digit and a character that is neither a word
// character nor whitespace.
func CheckPasswordPolicy(password string) error {
	var upper, lower, digit, special bool
	length := 0
	for _, r := range password {
		length++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case r == '_' || unicode.IsLetter(r) || unicode.IsSpace(r):
		default:
			special = true
		}
	}
	if length < minPasswordLength || !upper || !lower || !digit || !special {
		return utils.ErrPasswordPolicy
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
