package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harrylevesque/qrpay/internal/api"
	"github.com/harrylevesque/qrpay/internal/files"
	"github.com/harrylevesque/qrpay/internal/form"
	"github.com/harrylevesque/qrpay/internal/render"
	"github.com/harrylevesque/qrpay/internal/utils"
)

// Default server base URL; empty renders locally. Override with
// QRPAY_SERVER or --server.
var serverBaseURL = ""

type options struct {
	Text      string
	PayeeID   string
	PayeeName string
	Amount    string
	Note      string
	Format    string
	OutDir    string
	Server    string
	URIOnly   bool
	Render    render.Options
}

func main() {
	var o options
	flag.StringVar(&o.Text, "text", "", "Free-form text, URL or number to encode")
	flag.StringVar(&o.PayeeID, "pa", "", "UPI ID of the payee (switches to payment mode)")
	flag.StringVar(&o.PayeeName, "pn", "", "Payee display name")
	flag.StringVar(&o.Amount, "am", "", "Amount in INR")
	flag.StringVar(&o.Note, "tn", "", "Payment note")
	flag.StringVar(&o.Format, "format", "png", "Export format: png|svg")
	flag.StringVar(&o.OutDir, "out", "", "Output directory (default from config)")
	flag.BoolVar(&o.URIOnly, "uri", false, "Print the payment URI instead of exporting")
	serverFlag := flag.String("server", "", "Render on a qrpay server (e.g. http://localhost:8080)")
	configPath := flag.String("config", utils.DefaultConfigPath(), "Path to config.json")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if env := os.Getenv("QRPAY_SERVER"); env != "" {
		serverBaseURL = strings.TrimRight(env, "/")
	}
	if *serverFlag != "" {
		serverBaseURL = strings.TrimRight(*serverFlag, "/")
	}
	o.Server = serverBaseURL
	if o.OutDir == "" {
		o.OutDir = cfg.OutputDir
	}
	o.Render = render.Options{
		Width:      cfg.PNGWidth,
		Margin:     cfg.Margin,
		SVGSize:    cfg.SVGSize,
		Level:      cfg.Level,
		Foreground: cfg.Foreground,
		Background: cfg.Background,
	}

	if err := run(context.Background(), o, os.Stdout); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// state replays the flags through the form, so the CLI accepts exactly
// what the web form accepts.
func (o options) state() form.State {
	mode := form.ModeText
	if o.PayeeID != "" || o.PayeeName != "" || o.Amount != "" || o.Note != "" {
		mode = form.ModePayment
	}
	s := form.State{}
	for _, a := range []form.Action{
		form.SetMode{Mode: mode},
		form.SetText{Value: o.Text},
		form.SetField{Field: form.FieldPayeeID, Value: o.PayeeID},
		form.SetField{Field: form.FieldPayeeName, Value: o.PayeeName},
		form.SetField{Field: form.FieldAmount, Value: o.Amount},
		form.SetField{Field: form.FieldNote, Value: o.Note},
	} {
		s = form.Update(s, a)
	}
	return s
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	s := o.state()
	if o.URIOnly {
		if s.Mode != form.ModePayment {
			return errors.New("--uri needs payment fields (-pa)")
		}
		if s = form.Update(s, form.Generate{}); s.Error != "" {
			return errors.New(s.Error)
		}
		fmt.Fprintln(stdout, s.Content())
		return nil
	}

	f, err := render.ParseFormat(o.Format)
	if err != nil {
		return errors.New(utils.UserMessage(err))
	}
	if s = form.Update(s, form.ExportStarted{Format: string(f)}); !s.Generating {
		return errors.New(s.Error)
	}

	var (
		data []byte
		name string
	)
	if o.Server != "" {
		data, name, err = exportRemote(ctx, o.Server, f, s)
	} else {
		data, name, err = exportLocal(o.Render, f, s.Content())
	}
	if err != nil {
		s = form.Update(s, form.ExportFailed{Err: err})
		return fmt.Errorf("%s (%w)", s.Error, err)
	}

	store, err := files.NewExportStore(o.OutDir)
	if err != nil {
		return err
	}
	path, err := store.Save(name, data)
	if err != nil {
		s = form.Update(s, form.ExportFailed{Err: err})
		return fmt.Errorf("%s (%w)", s.Error, err)
	}
	form.Update(s, form.ExportFinished{})
	fmt.Fprintln(stdout, "Saved", path)
	return nil
}

func exportLocal(opts render.Options, f render.Format, content string) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := render.NewRenderer(opts).Render(&buf, f, content); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), render.Filename(f, time.Now()), nil
}

type apiError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func exportRemote(ctx context.Context, server string, f render.Format, s form.State) ([]byte, string, error) {
	client := resty.New().
		SetBaseURL(server).
		SetTimeout(30 * time.Second)

	var apiErr apiError
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(api.ExportRequest{Mode: s.Mode.String(), Text: s.Text, Payment: s.Payment}).
		SetError(&apiErr).
		Post("/api/export/" + string(f))
	if err != nil {
		return nil, "", fmt.Errorf("call server: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return nil, "", fmt.Errorf("server: %s", apiErr.Message)
		}
		return nil, "", fmt.Errorf("server returned %s", resp.Status())
	}

	name := render.Filename(f, time.Now())
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return resp.Body(), name, nil
}
