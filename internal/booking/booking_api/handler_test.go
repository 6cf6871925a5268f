package booking_api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cricketbook/internal/auth"
	authdb "cricketbook/internal/auth/db"
	"cricketbook/internal/booking"
	"cricketbook/internal/booking/booking_api"
	bookingdb "cricketbook/internal/booking/db"
	"cricketbook/internal/feed"
	"cricketbook/internal/logger"
	"cricketbook/internal/mail"
	matchdb "cricketbook/internal/matches/db"
	"cricketbook/internal/models"
	"cricketbook/internal/sse"
	"cricketbook/internal/tickets/qr"
	tickettpl "cricketbook/internal/tickets/template"
	"cricketbook/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

type testEnv struct {
	router   http.Handler
	bookings *bookingdb.DB
}

var (
	fan   = &models.Session{SessionID: "s1", UserID: "u1", Email: "fan@example.com", Name: "Fan", Role: models.RoleUser}
	other = &models.Session{SessionID: "s2", UserID: "u2", Email: "other@example.com", Name: "Other", Role: models.RoleUser}
	admin = &models.Session{SessionID: "s3", UserID: "u3", Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin}
)

// withSession stands in for auth.Middleware: the X-Test-User header picks
// the caller.
func withSession(next http.Handler) http.Handler {
	sessions := map[string]*models.Session{"u1": fan, "u2": other, "u3": admin}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := sessions[r.Header.Get("X-Test-User")]; ok {
			r = r.WithContext(auth.WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

func setup(t *testing.T) *testEnv {
	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{(*models.Match)(nil), (*models.Booking)(nil), (*models.UserProfile)(nil)} {
		_, err := bunDB.NewCreateTable().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	matches := &matchdb.DB{Bun: bunDB}
	users := &authdb.DB{Bun: bunDB}
	bookings := &bookingdb.DB{Bun: bunDB}

	require.NoError(t, matches.CreateMatch(ctx, &models.Match{
		ID: "m1", Team1: "India", Team2: "Australia", MatchType: models.MatchT20, Venue: "Wankhede Stadium",
		Date: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC), BasePrice: 1500, AvailableSeats: 500,
		Status: models.MatchActive, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, users.CreateUser(ctx, &models.UserProfile{ID: "u1", Email: "fan@example.com", Name: "Fan", Role: models.RoleUser, CreatedAt: time.Now().UTC()}))

	log := logger.New(io.Discard)
	svc := booking.NewBookingService(bookings, matches, users, booking.NewSandboxGateway("inr"), mail.NewLogSender(log),
		qr.NewGenerator(128), tickettpl.NewTicketPDFGenerator("/nonexistent/font.ttf"),
		feed.NewBroadcaster(sse.NewHub(), nil, "test", log),
		booking.SeatRules{SeatMapSize: 50, MaxSeats: 10}, "INR", log)
	h := booking_api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/api/payments/stripe/webhook", h.HandleStripeWebhook)
	r.Group(func(r chi.Router) {
		r.Use(withSession)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Route("/api/bookings", h.Routes)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Route("/api/admin/bookings", h.AdminRoutes)
		})
	})
	return &testEnv{router: r, bookings: bookings}
}

func (e *testEnv) do(method, path, user, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) utils.APIResponse {
	t.Helper()
	var resp utils.APIResponse
	if data != nil {
		resp.Data = data
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func checkout(t *testing.T, e *testEnv, seats string) booking.CheckoutResult {
	t.Helper()
	rec := e.do(http.MethodPost, "/api/bookings/", "u1", fmt.Sprintf(`{"matchId":"m1","seats":%s}`, seats))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res booking.CheckoutResult
	decode(t, rec, &res)
	return res
}

func TestCheckoutAndPay(t *testing.T) {
	e := setup(t)

	res := checkout(t, e, "[3,1,2]")
	assert.Equal(t, int64(4500), res.Booking.Amount)
	assert.Equal(t, []int{1, 2, 3}, res.Booking.Seats)
	assert.Equal(t, models.BookingPending, res.Booking.Status)
	assert.Equal(t, "sandbox", res.Checkout.Provider)

	path := "/api/bookings/" + res.Booking.ID + "/payment"
	rec := e.do(http.MethodPost, path, "u1", fmt.Sprintf(`{"status":"success","paymentId":"pay_1","orderId":%q}`, res.Checkout.OrderID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var confirmed models.Booking
	decode(t, rec, &confirmed)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.Equal(t, "pay_1", confirmed.PaymentID)

	rec = e.do(http.MethodGet, "/api/bookings/me", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []models.BookingDetails
	decode(t, rec, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, "India vs Australia", mine[0].Match.Name())

	rec = e.do(http.MethodGet, "/api/bookings/"+res.Booking.ID+"/qr.png", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = e.do(http.MethodGet, "/api/admin/bookings/", "u3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.BookingDetails
	decode(t, rec, &all)
	require.Len(t, all, 1)
	assert.Equal(t, "fan@example.com", all[0].User.Email)
}

func TestCancelledPaymentIs402AndStaysPending(t *testing.T) {
	e := setup(t)
	res := checkout(t, e, "[7]")

	rec := e.do(http.MethodPost, "/api/bookings/"+res.Booking.ID+"/payment", "u1", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decode(t, rec, nil)
	assert.Contains(t, resp.Error, booking.DefaultCancelReason)

	stored, err := e.bookings.GetBooking(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.Status)

	rec = e.do(http.MethodGet, "/api/bookings/"+res.Booking.ID+"/qr.png", "u1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckoutValidation(t *testing.T) {
	e := setup(t)

	rec := e.do(http.MethodPost, "/api/bookings/", "u1", `{"matchId":"m1","seats":[1,2,3,4,5,6,7,8,9,10,11]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/bookings/", "u1", `{"matchId":"missing","seats":[1]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(http.MethodPost, "/api/bookings/", "u1", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodPost, "/api/bookings/", "", `{"matchId":"m1","seats":[1]}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOtherUsersBookingIsForbidden(t *testing.T) {
	e := setup(t)
	res := checkout(t, e, "[9]")

	rec := e.do(http.MethodPost, "/api/bookings/"+res.Booking.ID+"/payment", "u2", `{"status":"success"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(http.MethodGet, "/api/admin/bookings/", "u1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookWithoutStripeIs404(t *testing.T) {
	e := setup(t)

	rec := e.do(http.MethodPost, "/api/payments/stripe/webhook", "", `{"type":"payment_intent.succeeded"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec, nil)
	assert.False(t, resp.Success)
	assert.Equal(t, "Webhooks are not enabled", resp.Message)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusPaymentRequired, booking_api.StatusFor(&booking.PaymentFailedError{BookingID: "b1", Reason: "declined"}))
	assert.Equal(t, http.StatusBadGateway, booking_api.StatusFor(&booking.ConfirmationError{BookingID: "b1", PaymentID: "pay_1", Err: errors.New("db down")}))
	assert.Equal(t, http.StatusBadGateway, booking_api.StatusFor(fmt.Errorf("%w: timeout", booking.ErrGateway)))
	assert.Equal(t, http.StatusConflict, booking_api.StatusFor(booking.ErrNotConfirmed))
	assert.Equal(t, http.StatusNotFound, booking_api.StatusFor(models.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, booking_api.StatusFor(models.Invalid("seats", "bad")))
}
