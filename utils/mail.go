package utils

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/nuthu-archive/storefront-api/logger"
	"go.uber.org/zap"
)

const storeName = "Nuthu Archive"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"currencyLabel": CurrencyLabel,
	"money":         func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"lineTotal":     func(price float64, qty int) string { return fmt.Sprintf("%.2f", price*float64(qty)) },
}).ParseFS(templateFS, "templates/*.html"))

// Mailer delivers an HTML email
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
}

func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	from := fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", `"`+storeName+`"`), m.Username)
	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		from,
		to,
		mime.QEncoding.Encode("utf-8", subject),
		htmlBody,
	)

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.Username, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer stands in when no SMTP account is configured; it only logs.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, _ string) error {
	logger.Warn(ctx, "Email not sent, mailer is not configured", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// EmailData feeds the account emails that carry a call-to-action link
type EmailData struct {
	Name            string
	Message         string
	VerificationURL string
	Year            int
}

type OrderEmailItem struct {
	ProductName string
	Quantity    int
	Price       float64
}

type OrderEmailData struct {
	Email       string
	OrderID     uint
	TotalAmount float64
	Currency    string
	Items       []OrderEmailItem
	ShopURL     string
	Year        int
}

func render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// RenderOrderConfirmation returns the subject and body of an order confirmation
func RenderOrderConfirmation(data OrderEmailData) (string, string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	for i := range data.Items {
		if strings.TrimSpace(data.Items[i].ProductName) == "" {
			data.Items[i].ProductName = "Product"
		}
	}
	body, err := render("order_confirmation.html", data)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("Order Confirmation #%d - %s", data.OrderID, storeName), body, nil
}

// RenderVerificationEmail returns the subject and body of a verification code email
func RenderVerificationEmail(code string) (string, string, error) {
	body, err := render("verify_email.html", struct {
		Code string
		Year int
	}{Code: code, Year: time.Now().Year()})
	if err != nil {
		return "", "", err
	}
	return "Email Verification - " + storeName, body, nil
}

// RenderPasswordReset returns the subject and body of a password reset email
func RenderPasswordReset(data EmailData) (string, string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	body, err := render("reset_password.html", data)
	if err != nil {
		return "", "", err
	}
	return storeName + " Password Reset", body, nil
}
