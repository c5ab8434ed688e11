// Package mailer はメールアドレス確認メールの送信を提供する。
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// Config はSMTP送信の設定。
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// BaseURL は確認リンクの生成に使用する公開URL
	BaseURL string

	// PerSecond は1秒あたりの送信上限。0以下の場合はデフォルト値を使用する。
	PerSecond float64
}

const defaultPerSecond = 1.0

// dialer はgomail.DialerのDialAndSendを抽象化する。テストでの差し替え用。
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer はSMTP経由で確認メールを送信する。
// SMTPサーバーへの過剰な送信を防ぐため、送信レートを制限する。
type Mailer struct {
	config  Config
	dialer  dialer
	limiter *rate.Limiter
}

// New はMailerを生成する。
func New(config Config) *Mailer {
	perSecond := config.PerSecond
	if perSecond <= 0 {
		perSecond = defaultPerSecond
	}
	return &Mailer{
		config:  config,
		dialer:  gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// SendVerification は確認リンク付きのメールを送信する。
// レート上限に達している場合は枠が空くまで待機する。
func (m *Mailer) SendVerification(ctx context.Context, toEmail, toName, userID string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail rate limit wait canceled: %w", err)
	}

	link := m.verificationLink(userID)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "【もぐもぐ】メールアドレスの確認")
	msg.SetBody("text/html", buildVerificationBody(toName, link))

	start := time.Now()
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification mail: %w", err)
	}

	slog.Info("verification mail sent",
		slog.String("to", toEmail),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// verificationLink は確認用URLを組み立てる。
func (m *Mailer) verificationLink(userID string) string {
	return strings.TrimRight(m.config.BaseURL, "/") + "/api/verify-email/" + userID
}

// buildVerificationBody は確認メールのHTML本文を生成する。
func buildVerificationBody(name, link string) string {
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(name)
	b.WriteString(" 様</p>")
	b.WriteString("<p>もぐもぐへのご登録ありがとうございます。<br>")
	b.WriteString("以下のリンクを開いてメールアドレスの確認を完了してください。</p>")
	b.WriteString(`<p><a href="`)
	b.WriteString(link)
	b.WriteString(`">メールアドレスを確認する</a></p>`)
	b.WriteString("<p>このメールに心当たりがない場合は破棄してください。</p>")
	return b.String()
}
