package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"testing"
	"time"
)

const testBotToken = "123456:TEST-TOKEN"

func fixedVerifier(now time.Time) *TelegramVerifier {
	v := NewTelegramVerifier(testBotToken)
	v.Now = func() time.Time { return now }
	return v
}

func signedParams(t *testing.T, v *TelegramVerifier, params map[string]string) map[string]string {
	t.Helper()
	hash, ok := v.Sign(params)
	if !ok {
		t.Fatalf("Sign(%v) failed", params)
	}
	out := map[string]string{"hash": hash}
	for k, val := range params {
		out[k] = val
	}
	return out
}

func TestTelegramVerifier_Verify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := fixedVerifier(now)
	authDate := strconv.FormatInt(now.Add(-time.Hour).Unix(), 10)

	base := map[string]string{
		"id":         "42",
		"first_name": "Ada",
		"username":   "ada",
		"auth_date":  authDate,
	}

	t.Run("valid payload", func(t *testing.T) {
		user, ok := v.Verify(signedParams(t, v, base))
		if !ok {
			t.Fatal("expected verification to succeed")
		}
		if user["id"] != "42" || user["username"] != "ada" {
			t.Fatalf("unexpected user: %v", user)
		}
		if _, ok := user["hash"]; ok {
			t.Fatal("hash must be removed from the user")
		}
		if _, ok := user["auth_date"]; ok {
			t.Fatal("auth_date must be removed from the user")
		}
	})

	t.Run("tampered field", func(t *testing.T) {
		params := signedParams(t, v, base)
		params["username"] = "eve"
		if _, ok := v.Verify(params); ok {
			t.Fatal("tampered payload verified")
		}
	})

	t.Run("wrong bot token", func(t *testing.T) {
		other := NewTelegramVerifier("999:OTHER")
		other.Now = v.Now
		if _, ok := v.Verify(signedParams(t, other, base)); ok {
			t.Fatal("payload signed with another token verified")
		}
	})

	t.Run("expired", func(t *testing.T) {
		params := map[string]string{"id": "42", "auth_date": strconv.FormatInt(now.Add(-AuthDataMaxAge-time.Second).Unix(), 10)}
		if _, ok := v.Verify(signedParams(t, v, params)); ok {
			t.Fatal("expired payload verified")
		}
	})

	t.Run("exactly max age", func(t *testing.T) {
		params := map[string]string{"id": "42", "auth_date": strconv.FormatInt(now.Add(-AuthDataMaxAge).Unix(), 10)}
		if _, ok := v.Verify(signedParams(t, v, params)); !ok {
			t.Fatal("payload at the age limit should verify")
		}
	})

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"missing hash", map[string]string{"id": "42", "auth_date": authDate}},
		{"missing auth_date", map[string]string{"id": "42", "hash": "00"}},
		{"non numeric auth_date", map[string]string{"id": "42", "auth_date": "yesterday", "hash": "00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := v.Verify(tt.params); ok {
				t.Fatalf("Verify(%v) succeeded", tt.params)
			}
		})
	}
}

func TestTelegramVerifier_UTF8Name(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := fixedVerifier(now)
	params := map[string]string{
		"id":         "7",
		"first_name": "Иван",
		"auth_date":  strconv.FormatInt(now.Unix(), 10),
	}

	// The provider signs the raw UTF-8 bytes.
	data := "auth_date=" + params["auth_date"] + "\nfirst_name=Иван\nid=7"
	secret := sha256.Sum256([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(data))
	params["hash"] = hex.EncodeToString(mac.Sum(nil))

	user, ok := v.Verify(params)
	if !ok {
		t.Fatal("UTF-8 payload failed verification")
	}
	if user["first_name"] != "Иван" {
		t.Fatalf("first_name = %q", user["first_name"])
	}
}

func TestLatin1Unescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`plain`, "plain", true},
		{`a\nb`, "a\nb", true},
		{`tab\tend`, "tab\tend", true},
		{`quote\'s`, "quote's", true},
		{`back\\slash`, `back\slash`, true},
		{`\x41\101`, "AA", true},
		{`é`, "é", true},
		{`Ж`, "Ж", true},
		{`\xe9`, "\xe9", true},
		{`keep\q`, `keep\q`, true},
		{`\u0416`, "", false},
		{`trailing\`, "", false},
		{`\xZZ`, "", false},
		{`\N{DASH}`, "", false},
	}
	for _, tt := range tests {
		got, ok := latin1Unescape(tt.in)
		if ok != tt.ok {
			t.Fatalf("latin1Unescape(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && string(got) != tt.want {
			t.Fatalf("latin1Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
