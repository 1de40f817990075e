// Package dedupe derives the stable identity key for a job listing.
// The key is the uniqueness constraint behind the opportunities table, so
// ingesting the same listing twice always lands on the same row.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// trackingParams are query parameters that sites rotate per page view and
// that must not influence listing identity.
var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"refId",
	"trackingId",
	"trk",
}

// Key returns a 64-hex-char SHA-256 digest identifying a listing.
// When the site supplies an external ID it wins over the URL: two
// tracking-laden URLs for the same posting collapse to one record.
func Key(source, rawURL, externalID string) string {
	if externalID != "" {
		return hashKey(fmt.Sprintf("%s:ext:%s", source, externalID))
	}
	return hashKey(fmt.Sprintf("%s:url:%s", source, normalizeURL(rawURL)))
}

// normalizeURL strips tracking parameters and the fragment. If the URL does
// not parse it is used as-is; key generation never fails.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" {
		return rawURL
	}

	query := parsed.Query()
	for _, param := range trackingParams {
		query.Del(param)
	}
	parsed.RawQuery = query.Encode()
	parsed.Fragment = ""

	return parsed.String()
}

func hashKey(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
