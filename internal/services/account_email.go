package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/anhhh1801/Capstone-ECM/internal/models"
)

var asciiFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// foldToASCII strips Vietnamese diacritics from a name. The đ runes decompose
// to nothing under NFD, so they are mapped by hand.
func foldToASCII(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}, s)

	folded, _, err := transform.String(asciiFolder, s)
	if err != nil {
		return s
	}
	return folded
}

// emailPrefix builds the local part of an institutional address from a name,
// last name first, lowercased, with all whitespace removed.
func emailPrefix(firstName, lastName string) string {
	join := func(s string) string {
		return strings.Join(strings.Fields(foldToASCII(s)), "")
	}
	return strings.ToLower(join(lastName) + join(firstName))
}

// nextInstitutionalEmail probes prefix@domain, prefix1@domain, prefix2@domain
// and so on against the login-email column until a free address is found.
func nextInstitutionalEmail(ctx context.Context, db *gorm.DB, firstName, lastName, domain string) (string, error) {
	prefix := emailPrefix(firstName, lastName)
	if prefix == "" {
		return "", errors.New("account email: empty name")
	}

	for i := 0; ; i++ {
		candidate := prefix
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", prefix, i)
		}
		candidate = candidate + "@" + domain

		var count int64
		if err := db.WithContext(ctx).
			Model(&models.User{}).
			Where("email = ?", candidate).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("account email: probe %s: %w", candidate, err)
		}
		if count == 0 {
			return candidate, nil
		}
	}
}
