// Package session implements the restart-surviving session mechanism: a
// signed, expiring token carrying identity and navigation state, and a
// single-file persister for it.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTTL is how long an issued token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// State is the logical session as seen by request handlers. The zero
// value is the anonymous state.
type State struct {
	Authenticated  bool
	Username       string
	IsAdmin        bool
	CurrentPage    string
	CurrentSection string
}

// payload is the wire form of a token: a JSON object, base64-encoded.
type payload struct {
	Username       string  `json:"username"`
	IsAdmin        bool    `json:"is_admin"`
	CurrentPage    string  `json:"current_page"`
	CurrentSection *string `json:"current_section"`
	Expiry         string  `json:"expiry"`
	Signature      string  `json:"signature"`
}

// Codec issues and validates session tokens. The signature is an
// HMAC-SHA256 over the whole payload, so changing any field invalidates
// the token.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, ttl: DefaultTTL, now: time.Now}
}

// Issue builds a token for the given identity and navigation state.
// An empty section is carried as null.
func (c *Codec) Issue(username string, isAdmin bool, page, section string) (string, error) {
	p := payload{
		Username:    username,
		IsAdmin:     isAdmin,
		CurrentPage: page,
		Expiry:      c.now().Add(c.ttl).Format(time.RFC3339),
	}
	if section != "" {
		p.CurrentSection = &section
	}

	sig, err := c.sign(p)
	if err != nil {
		return "", err
	}
	p.Signature = sig

	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Parse validates a token. Every failure mode (malformed, expired, bad
// signature) reports ok=false; callers treat that as "no session".
func (c *Codec) Parse(token string) (State, bool) {
	if token == "" {
		return State{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return State{}, false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return State{}, false
	}

	expiry, err := time.Parse(time.RFC3339, p.Expiry)
	if err != nil || c.now().After(expiry) {
		return State{}, false
	}

	provided := p.Signature
	want, err := c.sign(p)
	if err != nil || !hmac.Equal([]byte(provided), []byte(want)) {
		return State{}, false
	}

	st := State{
		Authenticated: true,
		Username:      p.Username,
		IsAdmin:       p.IsAdmin,
		CurrentPage:   p.CurrentPage,
	}
	if p.CurrentSection != nil {
		st.CurrentSection = *p.CurrentSection
	}
	return st, true
}

// sign returns the hex HMAC of p with its signature field cleared, so the
// signature covers every other field.
func (c *Codec) sign(p payload) (string, error) {
	p.Signature = ""
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encoding payload for signing: %w", err)
	}
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(b)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
