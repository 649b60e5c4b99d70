// Package upi builds UPI payment URIs from form fields.
package upi

import (
	"net/url"
	"strings"
)

const (
	// Prefix is the scheme and action of every payment URI.
	Prefix = "upi://pay"
	// Currency is sent alongside the amount and never on its own.
	Currency = "INR"
)

// PaymentRequest holds the raw payment fields as typed by the user.
type PaymentRequest struct {
	PayeeID   string `json:"payeeId"`
	PayeeName string `json:"payeeName"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
}

// URI is Build applied to the request fields.
func (r PaymentRequest) URI() string {
	return Build(r.PayeeID, r.PayeeName, r.Amount, r.Note)
}

// HasPayee reports whether the mandatory payee identifier is present.
func (r PaymentRequest) HasPayee() bool {
	return strings.TrimSpace(r.PayeeID) != ""
}

// Build returns the payment URI for the given fields, or "" when payeeID is
// blank. Parameters appear in the fixed order pa, pn, am, cu, tn; optional
// ones are left out when empty, and an amount that does not clean up into a
// positive number is dropped together with its currency.
func Build(payeeID, payeeName, amount, note string) string {
	payeeID = strings.TrimSpace(payeeID)
	if payeeID == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(Prefix)
	sep := byte('?')
	add := func(key, value string) {
		b.WriteByte(sep)
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(escape(value))
		sep = '&'
	}

	add("pa", payeeID)
	if name := strings.TrimSpace(payeeName); name != "" {
		add("pn", name)
	}
	if am, ok := ParseAmount(amount); ok {
		add("am", FormatAmount(am))
		add("cu", Currency)
	}
	if tn := strings.TrimSpace(note); tn != "" {
		add("tn", tn)
	}
	return b.String()
}

// escape percent-encodes a query value the way encodeURIComponent does for
// the characters that matter here: spaces become %20, not '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
