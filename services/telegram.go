package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// AuthDataMaxAge is how long a login widget payload stays valid after auth_date.
const AuthDataMaxAge = 86400 * time.Second

// TelegramVerifier checks login widget callbacks against the bot token.
// See https://core.telegram.org/widgets/login#checking-authorization
type TelegramVerifier struct {
	BotToken string
	Now      func() time.Time
}

func NewTelegramVerifier(botToken string) *TelegramVerifier {
	return &TelegramVerifier{BotToken: botToken, Now: time.Now}
}

// Verify returns the payload without hash and auth_date when params were
// signed with the bot token and are at most AuthDataMaxAge old.
func (v *TelegramVerifier) Verify(params map[string]string) (map[string]string, bool) {
	receivedHash, ok := params["hash"]
	if !ok {
		return nil, false
	}
	rawAuthDate, ok := params["auth_date"]
	if !ok {
		return nil, false
	}
	authDate, err := strconv.ParseInt(strings.TrimSpace(rawAuthDate), 10, 64)
	if err != nil {
		return nil, false
	}

	data, ok := dataCheckBytes(params)
	if !ok {
		return nil, false
	}
	expected := v.sign(data)

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if now().Unix()-authDate > int64(AuthDataMaxAge/time.Second) {
		return nil, false
	}

	if !hmac.Equal([]byte(expected), []byte(receivedHash)) {
		return nil, false
	}

	user := make(map[string]string, len(params))
	for k, val := range params {
		if k == "hash" || k == "auth_date" {
			continue
		}
		user[k] = val
	}
	return user, true
}

// Sign computes the hash the identity provider would attach to params.
func (v *TelegramVerifier) Sign(params map[string]string) (string, bool) {
	data, ok := dataCheckBytes(params)
	if !ok {
		return "", false
	}
	return v.sign(data), true
}

func (v *TelegramVerifier) sign(data []byte) string {
	secret := sha256.Sum256([]byte(v.BotToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// dataCheckBytes builds the sorted "key=value" lines and converts them to
// the byte sequence the provider signs.
func dataCheckBytes(params map[string]string) ([]byte, bool) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + "=" + params[k]
	}
	return latin1Unescape(strings.Join(lines, "\n"))
}

// latin1Unescape reads the UTF-8 bytes of s one byte per Latin-1 character,
// resolves backslash escapes and encodes the result back to ISO-8859-1.
// Escapes that are malformed or produce code points above U+00FF fail.
func latin1Unescape(s string) ([]byte, bool) {
	b := []byte(s)
	out := make([]rune, 0, len(b))

	for i := 0; i < len(b); {
		c := b[i]
		if c != '\\' {
			out = append(out, rune(c))
			i++
			continue
		}
		if i+1 >= len(b) {
			return nil, false
		}
		n := b[i+1]
		i += 2

		switch n {
		case '\n':
			// line continuation
		case '\\', '\'', '"':
			out = append(out, rune(n))
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'v':
			out = append(out, '\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			value := rune(n - '0')
			for digits := 1; digits < 3 && i < len(b) && b[i] >= '0' && b[i] <= '7'; digits++ {
				value = value*8 + rune(b[i]-'0')
				i++
			}
			out = append(out, value)
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[n]
			if i+width > len(b) {
				return nil, false
			}
			value, err := strconv.ParseUint(string(b[i:i+width]), 16, 32)
			if err != nil {
				return nil, false
			}
			out = append(out, rune(value))
			i += width
		case 'N':
			return nil, false
		default:
			out = append(out, '\\', rune(n))
		}
	}

	for _, r := range out {
		if r > 0xFF {
			return nil, false
		}
	}
	encoded, err := charmap.ISO8859_1.NewEncoder().String(string(out))
	if err != nil {
		return nil, false
	}
	return []byte(encoded), true
}
