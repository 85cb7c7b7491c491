package jwt_test

import (
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/jrsteele09/community-client/token/jwt"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	claims["jti"] = uuid.New().String()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secretStr))
	require.NoError(t, err)
	return token
}

func TestIsExpired(t *testing.T) {
	t.Run("one second in the past", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(-time.Second).Unix()})
		require.True(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("one hour in the future", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(time.Hour).Unix()})
		require.False(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("exactly now", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Unix()})
		require.True(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("missing exp", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"sub": "user-1"})
		require.True(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("exp of the wrong type", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": "tomorrow"})
		require.True(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("two segments", func(t *testing.T) {
		require.True(t, jwt.IsExpired("header.payload", fixedNow))
	})

	t.Run("payload not base64url json", func(t *testing.T) {
		require.True(t, jwt.IsExpired("aaa.!!not-base64!!.ccc", fixedNow))
		notJSON := base64.RawURLEncoding.EncodeToString([]byte("hello"))
		require.True(t, jwt.IsExpired("aaa."+notJSON+".ccc", fixedNow))
	})

	t.Run("empty", func(t *testing.T) {
		require.True(t, jwt.IsExpired("", fixedNow))
	})

	t.Run("fractional exp compares in milliseconds", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": 1000.5})
		require.False(t, jwt.IsExpired(token, time.UnixMilli(1000200)))
		require.False(t, jwt.IsExpired(token, time.UnixMilli(1000499)))
		require.True(t, jwt.IsExpired(token, time.UnixMilli(1000500)))
	})

	t.Run("exp beyond the time range never expires", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"exp": 1e300})
		require.False(t, jwt.IsExpired(token, fixedNow))
	})

	t.Run("unsigned payload", func(t *testing.T) {
		payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":1000.5}`))
		require.False(t, jwt.IsExpired("e30."+payload+".sig", time.UnixMilli(1000200)))
	})
}

func TestIsTokenExpired_UsesNowTimeFunc(t *testing.T) {
	orig := jwt.NowTimeFunc
	t.Cleanup(func() { jwt.NowTimeFunc = orig })
	jwt.NowTimeFunc = func() time.Time { return fixedNow }

	token := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Add(time.Minute).Unix()})
	require.False(t, jwt.IsTokenExpired(token))

	jwt.NowTimeFunc = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	require.True(t, jwt.IsTokenExpired(token))
}

func TestDecodePayload(t *testing.T) {
	t.Run("reads claims without verifying the signature", func(t *testing.T) {
		token := signedToken(t, jwtlib.MapClaims{"sub": "user-1", "exp": fixedNow.Unix()})
		claims, err := jwt.DecodePayload(token + "tampered")
		require.NoError(t, err)
		require.Equal(t, "user-1", claims["sub"])
		require.Equal(t, float64(fixedNow.Unix()), claims["exp"])
	})

	t.Run("accepts the standard alphabet and padding", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte(`{"note":"??>","exp":1}`))
		require.Contains(t, payload, "+")
		require.Contains(t, payload, "==")
		claims, err := jwt.DecodePayload("h." + payload + ".s")
		require.NoError(t, err)
		require.Equal(t, "??>", claims["note"])
	})

	t.Run("wrong segment count", func(t *testing.T) {
		_, err := jwt.DecodePayload("a.b.c.d")
		require.ErrorIs(t, err, clienterrors.ErrMalformedToken)
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := jwt.DecodePayload("a.$$$.c")
		require.ErrorIs(t, err, clienterrors.ErrDecode)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := jwt.DecodePayload("a." + base64.RawURLEncoding.EncodeToString([]byte("{oops")) + ".c")
		require.ErrorIs(t, err, clienterrors.ErrDecode)
	})
}

func TestExpiresAt(t *testing.T) {
	token := signedToken(t, jwtlib.MapClaims{"exp": fixedNow.Unix()})
	exp, err := jwt.ExpiresAt(token)
	require.NoError(t, err)
	require.True(t, exp.Equal(fixedNow))

	_, err = jwt.ExpiresAt(signedToken(t, jwtlib.MapClaims{}))
	require.ErrorIs(t, err, clienterrors.ErrDecode)

	exp, err = jwt.ExpiresAt(signedToken(t, jwtlib.MapClaims{"exp": 1000.5}))
	require.NoError(t, err)
	require.Equal(t, int64(1000500), exp.UnixMilli())

	_, err = jwt.ExpiresAt(signedToken(t, jwtlib.MapClaims{"exp": 1e300}))
	require.ErrorIs(t, err, clienterrors.ErrDecode)
}

func TestSubject(t *testing.T) {
	require.Equal(t, "a", jwt.Subject(signedToken(t, jwtlib.MapClaims{"sub": "a"})))
	require.Equal(t, "b", jwt.Subject(signedToken(t, jwtlib.MapClaims{"userId": "b"})))
	require.Equal(t, "c", jwt.Subject(signedToken(t, jwtlib.MapClaims{"id": "c"})))
	require.Equal(t, "", jwt.Subject("garbage"))
}
