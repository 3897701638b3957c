// SPDX-License-Identifier: GPL-3.0-only

package passwordcheck

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRules(t *testing.T) {
	p := Policy{MinLength: 8}
	ctx := context.Background()

	assert.ErrorIs(t, p.Validate(ctx, "Ab1!"), ErrTooShort)
	assert.ErrorIs(t, p.Validate(ctx, "abcdefg1!"), ErrNoUppercase)
	assert.ErrorIs(t, p.Validate(ctx, "ABCDEFG1!"), ErrNoLowercase)
	assert.ErrorIs(t, p.Validate(ctx, "Abcdefgh!"), ErrNoDigit)
	assert.ErrorIs(t, p.Validate(ctx, "Abcdefgh1"), ErrNoSpecialChar)
	assert.NoError(t, p.Validate(ctx, "Abcdefg1!"))
}

func rangeServer(t *testing.T, password string) *httptest.Server {
	t.Helper()
	sum := sha1.Sum([]byte(password))
	hash := strings.ToUpper(hex.EncodeToString(sum[:]))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/"+hash[:5]) {
			w.WriteHeader(http.StatusOK)
			return
		}
		fmt.Fprintf(w, "0000000000000000000000000000000000A:0\r\n%s:42\r\n", hash[5:])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidatePwned(t *testing.T) {
	pwned := "Passw0rd!"
	srv := rangeServer(t, pwned)
	p := Policy{MinLength: 8, CheckPwned: true, RangeAPIURL: srv.URL + "/range/", HTTPClient: srv.Client()}

	assert.ErrorIs(t, p.Validate(context.Background(), pwned), ErrPwned)
	assert.NoError(t, p.Validate(context.Background(), "Unl1kely-Tick3t-Phrase"))
}

func TestValidateIgnoresLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	p := Policy{MinLength: 8, CheckPwned: true, RangeAPIURL: srv.URL, HTTPClient: srv.Client()}

	assert.NoError(t, p.Validate(context.Background(), "Abcdefg1!"))
}
