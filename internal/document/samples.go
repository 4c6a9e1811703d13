package document

import (
	"embed"
	"maps"
	"slices"
)

//go:embed samples/*.json
var sampleFS embed.FS

// samples maps the #sample/ name to its embedded file.
var samples = map[string]string{
	"welcome":              "samples/welcome.json",
	"one-time-password":    "samples/one-time-passcode.json",
	"order-ecomerce":       "samples/order-ecommerce.json",
	"post-metrics-report":  "samples/post-metrics-report.json",
	"reservation-reminder": "samples/reservation-reminder.json",
	"reset-password":       "samples/reset-password.json",
	"respond-to-message":   "samples/respond-to-message.json",
	"subscription-receipt": "samples/subscription-receipt.json",
}

// Sample returns a fresh copy of the named built-in sample. Names are
// matched exactly.
func Sample(name string) (Document, bool) {
	file, ok := samples[name]
	if !ok {
		return nil, false
	}
	b, err := sampleFS.ReadFile(file)
	if err != nil {
		return nil, false
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, false
	}
	return doc, true
}

// SampleNames lists the built-in sample names in sorted order.
func SampleNames() []string {
	return slices.Sorted(maps.Keys(samples))
}
