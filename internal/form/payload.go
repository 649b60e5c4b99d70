// Package form models the QR form: what the user typed, which input mode is
// active, and the pure transitions between those states.
package form

import (
	"strings"

	"github.com/harrylevesque/qrpay/internal/upi"
	"github.com/harrylevesque/qrpay/internal/utils"
)

// Payload is what the form hands to the QR renderer. It is either FreeForm
// or Payment.
type Payload interface {
	isPayload()
}

// FreeForm text is encoded verbatim.
type FreeForm struct {
	Text string
}

// Payment is encoded as a UPI payment URI.
type Payment struct {
	Request upi.PaymentRequest
}

func (FreeForm) isPayload() {}
func (Payment) isPayload()  {}

// Content returns the string to encode for p. A payment without payee yields "".
func Content(p Payload) string {
	switch v := p.(type) {
	case FreeForm:
		return v.Text
	case Payment:
		return v.Request.URI()
	default:
		return ""
	}
}

// Validate checks p with the messages shown when the user asks to generate.
func Validate(p Payload) error {
	return validate(p, false)
}

// ValidateExport checks p with the messages shown when the user asks to download.
func ValidateExport(p Payload) error {
	return validate(p, true)
}

func validate(p Payload, export bool) error {
	switch v := p.(type) {
	case FreeForm:
		if strings.TrimSpace(v.Text) != "" {
			return nil
		}
		if export {
			return utils.ErrEmptyExport
		}
		return utils.ErrEmptyInput
	case Payment:
		if v.Request.HasPayee() {
			return nil
		}
		if export {
			return utils.ErrMissingPayeeExport
		}
		return utils.ErrMissingPayee
	default:
		return utils.ErrEmptyInput
	}
}
