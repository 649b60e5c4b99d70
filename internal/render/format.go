package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrylevesque/qrpay/internal/utils"
)

// Format is an export file format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("format %q: %w", s, utils.ErrUnsupportedFormat)
	}
}

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml;charset=utf-8"
	}
	return "image/png"
}

func (f Format) Extension() string {
	return string(f)
}

// Filename is the suggested download name, qrcode-<unix millis>.<ext>.
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("qrcode-%d.%s", t.UnixMilli(), f.Extension())
}
