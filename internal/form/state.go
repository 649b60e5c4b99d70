package form

import (
	"github.com/harrylevesque/qrpay/internal/upi"
	"github.com/harrylevesque/qrpay/internal/utils"
)

type Mode int

const (
	ModeText Mode = iota
	ModePayment
)

// ParseMode maps the wire names "text" and "payment"; anything else is text.
func ParseMode(s string) Mode {
	if s == "payment" {
		return ModePayment
	}
	return ModeText
}

func (m Mode) String() string {
	if m == ModePayment {
		return "payment"
	}
	return "text"
}

// Field names a payment input.
type Field int

const (
	FieldPayeeID Field = iota
	FieldPayeeName
	FieldAmount
	FieldNote
)

// State is everything the form shows. The zero value is an empty text form.
type State struct {
	Mode       Mode
	Text       string
	Payment    upi.PaymentRequest
	Error      string
	Generating bool
}

// Payload returns the payload for the active mode.
func (s State) Payload() Payload {
	if s.Mode == ModePayment {
		return Payment{Request: s.Payment}
	}
	return FreeForm{Text: s.Text}
}

// Content is the string the renderer would encode right now.
func (s State) Content() string {
	return Content(s.Payload())
}

// Action is one user event.
type Action interface {
	apply(State) State
}

type (
	SetMode  struct{ Mode Mode }
	SetText  struct{ Value string }
	SetField struct {
		Field Field
		Value string
	}
	Generate       struct{}
	ExportStarted  struct{ Format string }
	ExportFailed   struct{ Err error }
	ExportFinished struct{}
	Reset          struct{}
)

// Update returns the state after a. It never mutates s.
func Update(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SetMode) apply(s State) State {
	s.Mode = a.Mode
	s.Error = ""
	return s
}

func (a SetText) apply(s State) State {
	s.Text = a.Value
	s.Error = ""
	return s
}

func (a SetField) apply(s State) State {
	switch a.Field {
	case FieldPayeeID:
		s.Payment.PayeeID = a.Value
	case FieldPayeeName:
		s.Payment.PayeeName = a.Value
	case FieldAmount:
		s.Payment.Amount = FilterAmount(s.Payment.Amount, a.Value)
	case FieldNote:
		s.Payment.Note = a.Value
	}
	s.Error = ""
	return s
}

func (Generate) apply(s State) State {
	s.Error = ""
	if err := Validate(s.Payload()); err != nil {
		s.Error = utils.UserMessage(err)
	}
	return s
}

func (ExportStarted) apply(s State) State {
	// buttons are disabled while an export runs
	if s.Generating {
		return s
	}
	if err := ValidateExport(s.Payload()); err != nil {
		s.Error = utils.UserMessage(err)
		return s
	}
	s.Error = ""
	s.Generating = true
	return s
}

func (ExportFailed) apply(s State) State {
	s.Error = utils.UserMessage(utils.ErrExportFailed)
	s.Generating = false
	return s
}

func (ExportFinished) apply(s State) State {
	s.Generating = false
	return s
}

func (Reset) apply(State) State {
	return State{}
}

// FilterAmount is the entry-time filter for the amount field: next replaces
// prev only if it holds nothing but digits and at most one decimal point.
func FilterAmount(prev, next string) string {
	if upi.ValidAmountInput(next) {
		return next
	}
	return prev
}
