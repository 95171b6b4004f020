package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNameEmpty   = errors.New("first and last name can't be empty")
	ErrNameTooLong = errors.New("name is too long")
	ErrBioTooLong  = errors.New("bio is too long")
)

func NameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if utf8.RuneCountInString(n) > 64 {
		return ErrNameTooLong
	}

	return nil
}

func BioValidator(b string) error {
	if utf8.RuneCountInString(b) > 1000 {
		return ErrBioTooLong
	}

	return nil
}
