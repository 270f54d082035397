// Package etag implements the cache-validation side of the API: a
// deterministic content fingerprint per resource representation, served as
// ETag and checked against If-None-Match on reads and If-Match on updates.
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

// Fingerprint computes the digest of the canonical JSON encoding of v.
// Stable for identical content; changes whenever any visible field changes.
func Fingerprint(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		// representations are always marshalable maps/structs; an error here
		// means a programming bug, surface it as a never-matching tag
		return ""
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// headerValues splits a conditional header into its listed tags, tolerating
// both comma-separated lists and repeated headers. Quotes are stripped so
// clients may send either quoted or bare tags.
func headerValues(r *http.Request, name string) []string {
	var tags []string
	for _, line := range r.Header.Values(name) {
		for _, tag := range strings.Split(line, ",") {
			tag = strings.Trim(strings.TrimSpace(tag), `"`)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// NoneMatch reports whether the request's If-None-Match header lists the
// current fingerprint, in which case the read path answers 304.
func NoneMatch(r *http.Request, current string) bool {
	for _, tag := range headerValues(r, "If-None-Match") {
		if tag == current {
			return true
		}
	}
	return false
}

// Match reports whether the request carries an If-Match header listing the
// current fingerprint. Updates without a matching precondition are rejected
// with 412 before any mutation.
func Match(r *http.Request, current string) bool {
	tags := headerValues(r, "If-Match")
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if tag == current {
			return true
		}
	}
	return false
}

// SetHeaders decorates a cacheable read response.
func SetHeaders(w http.ResponseWriter, fingerprint string) {
	w.Header().Set("ETag", fingerprint)
	w.Header().Set("Cache-Control", "private")
}
