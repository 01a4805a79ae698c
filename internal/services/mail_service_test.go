package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AnnaShafeeva/hotel-diplom/internal/models"
	"gopkg.in/gomail.v2"
)

type stubDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *stubDialer) DialAndSend(messages ...*gomail.Message) error {
	d.sent = append(d.sent, messages...)
	return d.err
}

func testReservationDetail() *models.ReservationDetail {
	return &models.ReservationDetail{
		Reservation: models.Reservation{ID: 12, DateStart: date(2030, 8, 1), DateEnd: date(2030, 8, 4)},
		Hotel:       models.Hotel{Title: "Sea & Sun"},
		Room:        models.HotelRoom{Description: "Double room"},
	}
}

func TestMailNotifierSendsConfirmation(t *testing.T) {
	dialer := &stubDialer{}
	notifier := &MailNotifier{dialer: dialer, from: "booking@example.com"}
	user := &models.User{ID: 3, Email: "guest@example.com", Name: "<Guest>"}

	if err := notifier.ReservationCreated(context.Background(), user, testReservationDetail()); err != nil {
		t.Fatalf("ReservationCreated: %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(dialer.sent))
	}

	m := dialer.sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "guest@example.com" {
		t.Fatalf("unexpected To header %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || got[0] != "Reservation #12 confirmed: Sea & Sun" {
		t.Fatalf("unexpected Subject header %v", got)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "01.08.2030") {
		t.Fatalf("expected formatted start date in body:\n%s", buf.String())
	}
}

func TestReservationBodyEscapesHTML(t *testing.T) {
	body := reservationBody(&models.User{Name: "<Guest>"}, testReservationDetail())

	for _, want := range []string{"&lt;Guest&gt;", "Sea &amp; Sun", "01.08.2030 - 04.08.2030", "Reservation number: 12"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func TestMailNotifierErrors(t *testing.T) {
	dialer := &stubDialer{err: errors.New("connection refused")}
	notifier := &MailNotifier{dialer: dialer, from: "booking@example.com"}

	if err := notifier.ReservationCreated(context.Background(), &models.User{ID: 3}, testReservationDetail()); err == nil {
		t.Fatal("expected error for user without email")
	}
	if len(dialer.sent) != 0 {
		t.Fatal("nothing should be sent without a recipient")
	}

	err := notifier.ReservationCreated(context.Background(), &models.User{ID: 3, Email: "guest@example.com"}, testReservationDetail())
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := notifier.ReservationCreated(ctx, &models.User{ID: 3, Email: "guest@example.com"}, testReservationDetail()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
