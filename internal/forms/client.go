// Package forms relays site form submissions to Contact Form 7 on the CMS.
package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 10 * time.Second
	defaultLocale  = "zh_CN"
	defaultVersion = "5.9.3"
	statusMailSent = "mail_sent"
	maxResponse    = 64 << 10

	msgConfig   = "Configuration Error: API URL or Form ID missing."
	msgNetwork  = "Network error. Please try again later."
	msgRejected = "Submission failed. Please check your inputs."
)

// Kind classifies submission failures so the UI can word its retry hint.
type Kind string

const (
	KindConfig   Kind = "config"
	KindNetwork  Kind = "network"
	KindRejected Kind = "rejected"
	KindInvalid  Kind = "invalid"
)

// Error is a failed submission.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("forms: %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("forms: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not a forms error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Result is a successful submission.
type Result struct {
	Message string
}

// Consultation is the business enquiry form.
type Consultation struct {
	Name    string
	Email   string
	Mobile  string
	WeChat  string
	Message string
}

// Config identifies the CMS and the two forms.
type Config struct {
	BaseURL          string
	ContactFormID    string
	NewsletterFormID string
	Locale           string
	Version          string
}

// Client posts multipart submissions to the Contact Form 7 feedback endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient constructs a relay client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Locale == "" {
		cfg.Locale = defaultLocale
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: defaultTimeout}}
}

// SetHTTPClient overrides the transport, used in tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// SubmitConsultation relays the consultation form.
func (c *Client) SubmitConsultation(ctx context.Context, in Consultation) (Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Message == "" {
		return Result{}, &Error{Kind: KindInvalid, Message: msgRejected}
	}
	if !validEmail(in.Email) {
		return Result{}, &Error{Kind: KindInvalid, Message: msgRejected}
	}
	fields := [][2]string{
		{"your-name", in.Name},
		{"your-email", in.Email},
		{"mobile", strings.TrimSpace(in.Mobile)},
		{"wechat", strings.TrimSpace(in.WeChat)},
		{"your-message", in.Message},
		{"your-subject", "Consultation Request: " + in.Name},
	}
	return c.submit(ctx, c.cfg.ContactFormID, fields)
}

// SubmitNewsletter relays a newsletter sign-up.
func (c *Client) SubmitNewsletter(ctx context.Context, email string) (Result, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return Result{}, &Error{Kind: KindInvalid, Message: msgRejected}
	}
	fields := [][2]string{
		{"your-email", email},
		{"your-subject", "New Newsletter Subscription"},
	}
	return c.submit(ctx, c.cfg.NewsletterFormID, fields)
}

type feedback struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) submit(ctx context.Context, formID string, fields [][2]string) (Result, error) {
	formID = strings.TrimSpace(formID)
	if c == nil || c.cfg.BaseURL == "" || formID == "" {
		return Result{}, &Error{Kind: KindConfig, Message: msgConfig}
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "wp-json", "contact-form-7", "v1", "contact-forms", formID, "feedback")
	if err != nil {
		return Result{}, &Error{Kind: KindConfig, Message: msgConfig, Err: err}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hidden := [][2]string{
		{"_wpcf7", formID},
		{"_wpcf7_version", c.cfg.Version},
		{"_wpcf7_locale", c.cfg.Locale},
		{"_wpcf7_unit_tag", "wpcf7-f" + formID + "-p0-o1"},
		{"_wpcf7_container_post", "0"},
	}
	for _, f := range append(fields, hidden...) {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return Result{}, &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return Result{}, &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Result{}, &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
	defer resp.Body.Close()

	var fb feedback
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&fb); err != nil {
		return Result{}, &Error{Kind: KindNetwork, Message: msgNetwork, Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}
	if fb.Status != statusMailSent {
		msg := strings.TrimSpace(fb.Message)
		if msg == "" {
			msg = msgRejected
		}
		return Result{}, &Error{Kind: KindRejected, Message: msg}
	}
	return Result{Message: fb.Message}, nil
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
