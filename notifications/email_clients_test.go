// SPDX-License-Identifier: GPL-3.0-only

package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outgoing() OutgoingEmail {
	return OutgoingEmail{
		From:     "no-reply@aventrada.com",
		FromName: "Aventrada",
		To:       "ada@example.com",
		ToName:   "Ada",
		Subject:  "Hello",
		HTML:     "<p>hi</p>",
	}
}

func TestZeptoMailClientSend(t *testing.T) {
	var got ZeptoMailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Zoho-enczapikey secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":[{"code":"EM_104","message":"Email request received"}],"message":"OK","request_id":"zm-req-1","object":"email"}`))
	}))
	defer srv.Close()

	client := &ZeptoMailClient{APIURL: srv.URL, Token: "secret", HTTPClient: srv.Client()}
	id, err := client.Send(context.Background(), outgoing())
	require.NoError(t, err)
	assert.Equal(t, "zm-req-1", id)
	assert.Equal(t, "Hello", got.Subject)
	require.Len(t, got.To, 1)
	assert.Equal(t, "ada@example.com", got.To[0].EmailAddress.Address)
}

func TestZeptoMailClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"TM_102","message":"Invalid API Token found"}}`))
	}))
	defer srv.Close()

	client := &ZeptoMailClient{APIURL: srv.URL, Token: "Zoho-enczapikey bad"}
	_, err := client.Send(context.Background(), outgoing())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API Token")
}

func TestMailgunClientSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		assert.Equal(t, "ada@example.com", r.FormValue("to"))
		assert.Equal(t, "<p>hi</p>", r.FormValue("html"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<20261018.1@mg.aventrada.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	client := NewMailgunClient("mg.aventrada.com", "key-test", srv.URL+"/v3")
	id, err := client.Send(context.Background(), outgoing())
	require.NoError(t, err)
	assert.Equal(t, "<20261018.1@mg.aventrada.com>", id)
}

func TestMessageIDDomain(t *testing.T) {
	assert.Equal(t, "aventrada.com", messageIDDomain("no-reply@aventrada.com"))
	assert.Equal(t, "localhost", messageIDDomain("broken"))
}

func TestRenderTemplate(t *testing.T) {
	html, err := RenderTemplate("verification", map[string]any{
		"name":             "Ada",
		"verification_url": "https://aventrada.com/verify?token=abc",
		"expires_in":       "15 minutes",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Hi Ada")
	assert.Contains(t, html, "https://aventrada.com/verify?token=abc")
	assert.Contains(t, html, "Aventrada")
}
