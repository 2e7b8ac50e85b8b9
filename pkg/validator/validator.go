package validator

import (
	"fmt"
	"regexp"
)

const (
	minEmailLength    = 3
	maxEmailLength    = 255
	minPasswordLength = 8
	maxPasswordLength = 128
	maxFullNameLen    = 255
	maxAddressLen     = 1024
	maxAge            = 150

	errEmailEmptyFmt        = "email cannot be empty"
	errEmailLengthFmt       = "email must be between %d and %d characters"
	errEmailInvalidFmt      = "invalid email format"
	errPasswordMinLengthFmt = "password must be at least %d characters"
	errPasswordMaxLengthFmt = "password must not exceed %d characters"
	errFullNameEmptyFmt     = "full name cannot be empty"
	errFullNameMaxLengthFmt = "full name must not exceed %d characters"
	errAddressMaxLengthFmt  = "address must not exceed %d characters"
	errAgeNegativeFmt       = "age cannot be negative"
	errAgeMaxFmt            = "age must not exceed %d"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(email string) error {
	if email == "" {
		return fmt.Errorf(errEmailEmptyFmt)
	}

	if len(email) < minEmailLength || len(email) > maxEmailLength {
		return fmt.Errorf(errEmailLengthFmt, minEmailLength, maxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf(errEmailInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

func FullName(name string) error {
	if name == "" {
		return fmt.Errorf(errFullNameEmptyFmt)
	}

	if len(name) > maxFullNameLen {
		return fmt.Errorf(errFullNameMaxLengthFmt, maxFullNameLen)
	}

	return nil
}

func Address(address string) error {
	if len(address) > maxAddressLen {
		return fmt.Errorf(errAddressMaxLengthFmt, maxAddressLen)
	}

	return nil
}

func Age(age int) error {
	if age < 0 {
		return fmt.Errorf(errAgeNegativeFmt)
	}

	if age > maxAge {
		return fmt.Errorf(errAgeMaxFmt, maxAge)
	}

	return nil
}
