// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"aventrada-server/commons"
)

var (
	ErrTooShort      = errors.New("password must be at least 8 characters long")
	ErrNoUppercase   = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase   = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit       = errors.New("password must contain at least one digit")
	ErrNoSpecialChar = errors.New("password must contain at least one special character (e.g., !@#$%)")
	ErrPwned         = errors.New("password has been found in data breaches (pwned); choose a different one")
)

const defaultRangeAPI = "https://api.pwnedpasswords.com/range/"

// Policy decides which passwords are acceptable at signup.
type Policy struct {
	MinLength   int
	CheckPwned  bool
	RangeAPIURL string
	HTTPClient  *http.Client
}

func DefaultPolicy() Policy {
	return Policy{
		MinLength:   8,
		CheckPwned:  commons.GetEnvBool("PWNED_PASSWORDS_ENABLED", true),
		RangeAPIURL: commons.GetEnv("PWNED_PASSWORDS_API_URL", defaultRangeAPI),
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func ValidatePassword(ctx context.Context, password string) error {
	return DefaultPolicy().Validate(ctx, password)
}

// Validate returns the first failed rule. A failing breach lookup is logged and
// does not reject the password.
func (p Policy) Validate(ctx context.Context, password string) error {
	if len([]rune(password)) < p.MinLength {
		return ErrTooShort
	}
	if !containsAny(password, unicode.IsUpper) {
		return ErrNoUppercase
	}
	if !containsAny(password, unicode.IsLower) {
		return ErrNoLowercase
	}
	if !containsAny(password, unicode.IsDigit) {
		return ErrNoDigit
	}
	if !containsAny(password, func(r rune) bool { return unicode.IsSymbol(r) || unicode.IsPunct(r) }) {
		return ErrNoSpecialChar
	}

	if p.CheckPwned {
		pwned, err := p.isPwned(ctx, password)
		if err != nil {
			commons.Logger.Error("Error checking pwned passwords:", err)
		}
		if pwned {
			return ErrPwned
		}
	}
	return nil
}

// isPwned uses the k-anonymity range API: only the first five hex chars of the SHA-1 leave the process.
func (p Policy) isPwned(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hash[:5], hash[5:]

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.RangeAPIURL, "/")+"/"+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Add-Padding", "true")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("HIBP API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("HIBP API returned %s", resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		candidate, count, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if ok && candidate == suffix && count != "0" {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read HIBP response: %w", err)
	}
	return false, nil
}

func containsAny(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if pred(r) {
			return true
		}
	}
	return false
}
