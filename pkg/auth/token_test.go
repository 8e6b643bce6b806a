package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lmorand/brasserie-backend/pkg/config"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{Secret: "0123456789abcdef0123456789abcdef", TTLHours: 24}
}

func testClaims() Claims {
	return Claims{
		UserID: uuid.New(),
		Email:  "demo@example.com",
		Role:   "staff",
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	in := testClaims()

	token, err := MintAccessToken(cfg, now, in)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token must have exactly three segments, got %q", token)
	}

	out, err := ParseAccessToken(cfg, token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if out.UserID != in.UserID || out.Email != in.Email || out.Role != in.Role {
		t.Fatalf("claims changed over the round trip: %+v", out)
	}
	if out.IssuedAt != now.Unix() {
		t.Fatalf("expected iat %d, got %d", now.Unix(), out.IssuedAt)
	}
	if out.ExpiresAt != now.Add(24*time.Hour).Unix() {
		t.Fatalf("expected exp 24h after issue, got %d", out.ExpiresAt)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Now().UTC()

	claims := testClaims()
	claims.ExpiresAt = now.Add(-time.Minute).Unix()

	token, err := MintAccessToken(cfg, now.Add(-2*time.Hour), claims)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token, now); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	// Expired but well-signed tokens are still acceptable on the
	// refresh path.
	if _, err := ParseAccessTokenAllowExpired(cfg, token, now); err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired: %v", err)
	}
}

func TestParseRejectsFlippedSignatureByte(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, testClaims())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	parts := strings.Split(token, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	for i := range sig {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(mutated)
		if _, err := ParseAccessToken(cfg, tampered, now); !errors.Is(err, ErrTokenSignature) {
			t.Fatalf("flipping signature byte %d did not fail verification: %v", i, err)
		}
	}
}

func TestParseRejectsMalformedTokens(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Now().UTC()

	good, err := MintAccessToken(cfg, now, testClaims())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	parts := strings.Split(good, ".")

	cases := map[string]string{
		"empty":             "",
		"one segment":       parts[0],
		"two segments":      parts[0] + "." + parts[1],
		"four segments":     good + ".extra",
		"bad header base64": "!!!." + parts[1] + "." + parts[2],
		"bad claims base64": parts[0] + ".!!!." + parts[2],
		"bad sig base64":    parts[0] + "." + parts[1] + ".!!!",
		"header not json":   base64.RawURLEncoding.EncodeToString([]byte("nope")) + "." + parts[1] + "." + parts[2],
	}

	for name, token := range cases {
		if _, err := ParseAccessToken(cfg, token, now); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("%s: expected ErrTokenMalformed, got %v", name, err)
		}
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	now := time.Now().UTC()
	token, err := MintAccessToken(testTokenConfig(), now, testClaims())
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := config.TokenConfig{Secret: "another-secret-entirely-of-32-byt", TTLHours: 24}
	if _, err := ParseAccessToken(other, token, now); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature under a foreign secret, got %v", err)
	}
}

// The wire format must stay bit-compatible with standard HS256 JWTs: a token
// minted here parses under golang-jwt with the shared secret, and vice versa.
func TestWireCompatibilityWithJWTLibrary(t *testing.T) {
	cfg := testTokenConfig()
	now := time.Now().UTC().Truncate(time.Second)
	in := testClaims()

	minted, err := MintAccessToken(cfg, now, in)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	parsed, err := jwtlib.Parse(minted, func(tok *jwtlib.Token) (any, error) {
		if tok.Method.Alg() != "HS256" {
			t.Fatalf("unexpected alg %s", tok.Method.Alg())
		}
		return []byte(cfg.Secret), nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("golang-jwt rejected our token: %v", err)
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if mapClaims["email"] != in.Email {
		t.Fatalf("email claim lost in translation: %v", mapClaims["email"])
	}
	if mapClaims["user_id"] != in.UserID.String() {
		t.Fatalf("user_id claim lost in translation: %v", mapClaims["user_id"])
	}

	// Reverse direction: a token signed by the library verifies here.
	libToken := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"user_id": in.UserID.String(),
		"email":   in.Email,
		"role":    in.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	})
	signed, err := libToken.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("signing with golang-jwt: %v", err)
	}

	out, err := ParseAccessToken(cfg, signed, now)
	if err != nil {
		t.Fatalf("our parser rejected a library-minted token: %v", err)
	}
	if out.UserID != in.UserID || out.Email != in.Email || out.Role != in.Role {
		t.Fatalf("claims mismatch from library token: %+v", out)
	}
}

func TestMintRequiresSecretAndSubject(t *testing.T) {
	now := time.Now().UTC()
	if _, err := MintAccessToken(config.TokenConfig{}, now, testClaims()); err == nil {
		t.Fatalf("expected error without a secret")
	}
	if _, err := MintAccessToken(testTokenConfig(), now, Claims{Email: "x@y.z"}); err == nil {
		t.Fatalf("expected error without a subject")
	}
}
