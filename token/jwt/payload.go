package jwt

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/pkg/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Claims are the decoded key/value pairs of a token payload.
type Claims = jwtlib.MapClaims

// segmentParser decodes base64url segments and tolerates trailing padding.
var segmentParser = jwtlib.NewParser(jwtlib.WithPaddingAllowed())

// standard base64 characters are mapped onto the url alphabet before decoding
var toURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

// DecodePayload reads the claims out of the middle segment of a three part
// token. The signature is not checked: this is a claims reader, never an
// authenticity check.
func DecodePayload(rawToken string) (Claims, error) {
	parts := strings.Split(rawToken, ".")
	if len(parts) != 3 {
		return nil, errors.Wrapf(clienterrors.ErrMalformedToken, "expected 3 segments, got %d", len(parts))
	}

	payload, err := segmentParser.DecodeSegment(toURLAlphabet.Replace(parts[1]))
	if err != nil {
		return nil, errors.Wrap(clienterrors.ErrDecode, err.Error())
	}

	claims := Claims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errors.Wrap(clienterrors.ErrDecode, err.Error())
	}
	return claims, nil
}

// ExpiresAt returns the time held in the exp claim. An exp too far in the
// future to represent is a decode error; IsExpired still treats such a token
// as unexpired.
func ExpiresAt(rawToken string) (time.Time, error) {
	exp, err := expSeconds(rawToken)
	if err != nil {
		return time.Time{}, err
	}
	if math.Abs(exp) > maxExpSeconds {
		return time.Time{}, errors.Wrapf(clienterrors.ErrDecode, "exp %g out of range", exp)
	}
	sec, frac := math.Modf(exp)
	return time.Unix(int64(sec), int64(frac*1e9)), nil
}

// IsExpired reports whether the token is unusable at now, i.e. exp*1000 is at
// or before now in milliseconds. A missing or non-numeric exp claim, or a
// token that can't be decoded, counts as expired.
func IsExpired(rawToken string, now time.Time) bool {
	exp, err := expSeconds(rawToken)
	if err != nil {
		return true
	}
	return exp*1000 <= float64(now.UnixMilli())
}

// maxExpSeconds keeps ExpiresAt within what time.Time.UnixNano can represent.
const maxExpSeconds = float64(math.MaxInt64) / 1e9

// expSeconds reads the raw exp claim, keeping any fractional part.
func expSeconds(rawToken string) (float64, error) {
	claims, err := DecodePayload(rawToken)
	if err != nil {
		return 0, err
	}
	var exp float64
	switch v := claims["exp"].(type) {
	case float64:
		exp = v
	case json.Number:
		if exp, err = v.Float64(); err != nil {
			return 0, errors.Wrap(clienterrors.ErrDecode, "exp is not a number")
		}
	case nil:
		return 0, errors.Wrap(clienterrors.ErrDecode, "missing exp claim")
	default:
		return 0, errors.Wrapf(clienterrors.ErrDecode, "exp has type %T", v)
	}
	if math.IsNaN(exp) || math.IsInf(exp, 0) {
		return 0, errors.Wrap(clienterrors.ErrDecode, "exp is not a finite number")
	}
	return exp, nil
}

// IsTokenExpired is IsExpired against NowTimeFunc.
func IsTokenExpired(rawToken string) bool {
	return IsExpired(rawToken, NowTimeFunc())
}

// Subject returns the user id carried in the token, checking "sub", then
// "userId", then "id".
func Subject(rawToken string) string {
	claims, err := DecodePayload(rawToken)
	if err != nil {
		return ""
	}
	for _, key := range []string{"sub", "userId", "id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
