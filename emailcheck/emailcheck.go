// SPDX-License-Identifier: GPL-3.0-only

// Package emailcheck answers "is this email known?" and "did you mean …?" for signup forms.
package emailcheck

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"aventrada-server/commons"
	"aventrada-server/models"
	"aventrada-server/registrations"

	"github.com/agnivade/levenshtein"
	"gorm.io/gorm"
)

const (
	// MaxDistance is the largest edit distance still reported as similar.
	MaxDistance = 2

	// shortDomainLength is the length below which a provider domain only
	// counts as a typo at distance 1.
	shortDomainLength = 8
)

var KnownDomains = []string{
	"gmail.com",
	"googlemail.com",
	"yahoo.com",
	"yahoo.co.uk",
	"hotmail.com",
	"hotmail.co.uk",
	"outlook.com",
	"live.com",
	"msn.com",
	"icloud.com",
	"me.com",
	"aol.com",
	"proton.me",
	"protonmail.com",
	"gmx.com",
}

type ExistsResult struct {
	Exists     bool
	Registered bool
	Status     models.RegistrationStatus
}

type SimilarResult struct {
	Exists     bool
	Suggestion string
	Similar    []string
}

// Exists reports whether a registration and an auth user exist for email.
func Exists(ctx context.Context, conn *gorm.DB, email string) (ExistsResult, error) {
	var result ExistsResult
	email = commons.NormalizeEmail(email)

	reg, err := registrations.FindByEmail(ctx, conn, email)
	switch {
	case err == nil:
		result.Exists = true
		result.Status = reg.Status
	case errors.Is(err, registrations.ErrNotFound):
	default:
		return result, err
	}

	var users int64
	if err := conn.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&users).Error; err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}
	result.Registered = users > 0
	return result, nil
}

// SuggestDomain returns a corrected address when the domain looks like a typo of a
// well-known mailbox provider, or "" when nothing better is known. A domain under a
// different two-letter country TLD is taken as a real domain, not a typo.
func SuggestDomain(email string) string {
	local, domain := commons.SplitEmail(commons.NormalizeEmail(email))
	if local == "" || domain == "" {
		return ""
	}
	tld := topLevelDomain(domain)
	best, bestDist := "", MaxDistance+1
	for _, known := range KnownDomains {
		if domain == known {
			return ""
		}
		if tld != topLevelDomain(known) && len(tld) == 2 {
			continue
		}
		d := levenshtein.ComputeDistance(domain, known)
		if d > 1 && (len(domain) < shortDomainLength || len(known) < shortDomainLength) {
			continue
		}
		if d < bestDist {
			best, bestDist = known, d
		}
	}
	if best == "" {
		return ""
	}
	return local + "@" + best
}

func topLevelDomain(domain string) string {
	return domain[strings.LastIndex(domain, ".")+1:]
}

// Similar lists registered emails within MaxDistance of email, or sharing its local
// part on another domain. Distance candidates are narrowed to rows with the same
// first character and a length within MaxDistance, and are streamed without a cap.
func Similar(ctx context.Context, conn *gorm.DB, email string, limit int) (SimilarResult, error) {
	email = commons.NormalizeEmail(email)
	result := SimilarResult{Suggestion: SuggestDomain(email)}
	if email == "" {
		return result, nil
	}

	_, err := registrations.FindByEmail(ctx, conn, email)
	switch {
	case err == nil:
		result.Exists = true
	case !errors.Is(err, registrations.ErrNotFound):
		return result, err
	}

	local, _ := commons.SplitEmail(email)
	first, _ := utf8.DecodeRuneInString(email)
	length := utf8.RuneCountInString(email)

	rows, err := conn.WithContext(ctx).Model(&models.Registration{}).
		Select("email").
		Where("email <> ?", email).
		Where("(SUBSTR(email, 1, 1) = ? AND LENGTH(email) BETWEEN ? AND ?) OR SUBSTR(email, 1, ?) = ?",
			string(first), length-MaxDistance, length+MaxDistance,
			utf8.RuneCountInString(local)+1, local+"@").
		Rows()
	if err != nil {
		return result, fmt.Errorf("load candidates: %w", err)
	}
	defer rows.Close()

	type match struct {
		email string
		dist  int
	}
	var matches []match
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return result, fmt.Errorf("scan candidate: %w", err)
		}
		d := levenshtein.ComputeDistance(email, c)
		cl, _ := commons.SplitEmail(c)
		if d <= MaxDistance || cl == local {
			matches = append(matches, match{c, d})
		}
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("load candidates: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].email < matches[j].email
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	for _, m := range matches {
		result.Similar = append(result.Similar, m.email)
	}
	return result, nil
}
