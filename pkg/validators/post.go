package validators

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrTitleEmpty         = errors.New("post title can't be empty")
	ErrTitleTooLong       = errors.New("post title is too long")
	ErrDescriptionEmpty   = errors.New("post description can't be empty")
	ErrDescriptionTooLong = errors.New("post description is too long")
	ErrCategoryTooLong    = errors.New("category is too long")
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 20000
)

func TitleValidator(t string) error {
	if strings.TrimSpace(t) == "" {
		return ErrTitleEmpty
	}

	if utf8.RuneCountInString(t) > maxTitleLen {
		return ErrTitleTooLong
	}

	return nil
}

func DescriptionValidator(d string) error {
	if strings.TrimSpace(d) == "" {
		return ErrDescriptionEmpty
	}

	if utf8.RuneCountInString(d) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}

	return nil
}

func CategoryValidator(c string) error {
	if utf8.RuneCountInString(c) > 64 {
		return ErrCategoryTooLong
	}

	return nil
}
