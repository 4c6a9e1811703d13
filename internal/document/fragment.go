package document

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URL fragment prefixes understood by the resolver.
const (
	SamplePrefix = "#sample/"
	CodePrefix   = "#code/"
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// EncodeFragment returns the #code/ fragment carrying d: the JSON is base64
// encoded and the result percent-encoded.
func EncodeFragment(d Document) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return CodePrefix + url.QueryEscape(base64.StdEncoding.EncodeToString(b)), nil
}

// DecodePayload reverses EncodeFragment for the part after the prefix.
// Payloads produced by percent-encoding the JSON before base64 are accepted too.
func DecodePayload(payload string) (Document, error) {
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("percent-decode payload: %w", err)
	}
	raw, err := decodeBase64(unescaped)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(raw)
	if err == nil || errors.Is(err, ErrNoRoot) {
		return doc, err
	}
	inner, uerr := url.PathUnescape(string(raw))
	if uerr != nil {
		return nil, err
	}
	return Parse([]byte(inner))
}

// FragmentOf returns the raw "#..." fragment of an editor URL, or "" if it has none.
func FragmentOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Fragment == "" {
		return "", nil
	}
	return "#" + u.EscapedFragment(), nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, enc := range base64Encodings {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, fmt.Errorf("base64-decode payload: %w", firstErr)
}
