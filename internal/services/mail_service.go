package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strings"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"gopkg.in/gomail.v2"
)

const reservationDateLayout = "02.01.2006"

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Insecure bool
}

type mailDialer interface {
	DialAndSend(messages ...*gomail.Message) error
}

// MailNotifier sends booking confirmations over SMTP.
type MailNotifier struct {
	dialer mailDialer
	from   string
}

func NewMailNotifier(cfg SMTPConfig) *MailNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Insecure {
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &MailNotifier{dialer: dialer, from: cfg.From}
}

func (n *MailNotifier) ReservationCreated(
	ctx context.Context,
	user *models.User,
	detail *models.ReservationDetail,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("user %d has no email", user.ID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", reservationSubject(detail))
	m.SetBody("text/html", reservationBody(user, detail))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reservation mail: %w", err)
	}
	return nil
}

func reservationSubject(detail *models.ReservationDetail) string {
	return fmt.Sprintf("Reservation #%d confirmed: %s", detail.ID, detail.Hotel.Title)
}

func reservationBody(user *models.User, detail *models.ReservationDetail) string {
	return fmt.Sprintf(`
	<h1>Your reservation is confirmed</h1>
	<p>Hello, %s!</p>
	<p>Hotel: <b>%s</b></p>
	<p>Room: %s</p>
	<p>Dates: %s - %s</p>
	<p>Reservation number: %d</p>
	`,
		html.EscapeString(user.Name),
		html.EscapeString(detail.Hotel.Title),
		html.EscapeString(detail.Room.Description),
		detail.DateStart.Format(reservationDateLayout),
		detail.DateEnd.Format(reservationDateLayout),
		detail.ID,
	)
}
