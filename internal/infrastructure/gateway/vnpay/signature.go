package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	secureHashParam     = "vnp_SecureHash"
	secureHashTypeParam = "vnp_SecureHashType"
)

// canonicalize serializes params into the form both sides sign: keys sorted
// in bytewise order, values percent-encoded (space as %20, never +), joined
// as key=value pairs with &. Empty values are left out. The ordering and
// encoding are part of the protocol contract; the verification step must
// reproduce them exactly.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(encodeValue(params[k]))
	}
	return b.String()
}

func encodeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}

// HashParams computes the HMAC-SHA512 signature over the canonical form of
// params, returned as lowercase hex.
func HashParams(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyParams recomputes the signature of a callback parameter set and
// compares it to the supplied one. The hash fields themselves are excluded
// from the canonical form. Comparison is case-insensitive since the digest
// is hex text. Fails closed: a missing signature is a failed verification.
func VerifyParams(params map[string]string, secret string) bool {
	supplied := params[secureHashParam]
	if supplied == "" {
		return false
	}

	unsigned := make(map[string]string, len(params))
	for k, v := range params {
		if k == secureHashParam || k == secureHashTypeParam {
			continue
		}
		unsigned[k] = v
	}

	return strings.EqualFold(HashParams(unsigned, secret), supplied)
}
