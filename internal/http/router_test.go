package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"
	"boatbooking/internal/drafts"
	h "boatbooking/internal/http/handlers"
	"boatbooking/internal/http/middleware"
	"boatbooking/internal/payments"
	"boatbooking/internal/services"
	"boatbooking/internal/slots"
	"boatbooking/internal/tickets"
	"boatbooking/internal/uploads"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Booking
	insertErr error
}

func (r *memRepo) Insert(_ context.Context, b models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows[b.BookingID] = b
	return nil
}

func (r *memRepo) GetByBookingID(_ context.Context, id string) (models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (r *memRepo) ListAllOrderedByCreatedDesc(context.Context) ([]models.BookingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.BookingSummary{}
	for _, b := range r.rows {
		out = append(out, models.BookingSummary{BookingID: b.BookingID, Name: b.Contact.Name, Amount: b.Amount})
	}
	return out, nil
}

type testApp struct {
	router     *gin.Engine
	repo       *memRepo
	ticketsDir string
}

func newTestApp(t *testing.T, opts ...func(*services.BookingService)) *testApp {
	t.Helper()
	dir := t.TempDir()
	repo := &memRepo{rows: map[string]models.Booking{}}
	renderer := tickets.Renderer{Store: tickets.FileStore{Dir: filepath.Join(dir, "tickets")}}

	svc := services.BookingService{
		Uploads:        uploads.LocalStore{Dir: filepath.Join(dir, "uploads"), MaxBytes: 1 << 20},
		Gateway:        payments.Simulated{},
		Drafts:         drafts.NewMemoryStore(0),
		Bookings:       repo,
		SideEffects:    services.SideEffects{Tickets: renderer},
		Tickets:        renderer,
		PricePerPerson: 500,
		Currency:       "INR",
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&svc)
	}
	handler := h.Handler{
		Bookings:       svc,
		Slots:          services.SlotService{Catalog: slots.NewCatalog(filepath.Join(dir, "slots.json"))},
		Admin:          middleware.AdminCredentials{Username: "owner", Password: "pw", JWTSecret: []byte("secret")},
		MaxUploadBytes: 1 << 20,
	}
	return &testApp{
		router:     NewRouter(handler, RouterOptions{CORSAllowedOrigins: []string{"http://localhost:3000"}}),
		repo:       repo,
		ticketsDir: filepath.Join(dir, "tickets"),
	}
}

func payRequest(t *testing.T, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withFile {
		fw, err := mw.CreateFormFile("id_file", "aadhaar.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/pay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func payFields() map[string]string {
	return map[string]string{
		"date":            "2026-10-20",
		"time":            "10:00",
		"route":           "Harbour loop",
		"persons":         "3",
		"children_under3": "1",
		"name":            "Meera Nair",
		"phone":           "9845000000",
		"email":           "meera@example.com",
		"address":         "12 Beach Road",
		"id_type":         "aadhaar",
	}
}

func do(app *testApp, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func jsonRequest(method, path string, v any) *http.Request {
	raw, _ := json.Marshal(v)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (app *testApp) pay(t *testing.T) (token, orderID string) {
	t.Helper()
	w, body := do(app, payRequest(t, payFields(), true))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["booking_token"].(string), body["order_id"].(string)
}

func TestBookingFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)

	w, body := do(app, payRequest(t, payFields(), true))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(150000), body["amount"])
	assert.Equal(t, "INR", body["currency"])
	assert.Equal(t, true, body["test_mode"])
	assert.Equal(t, "", body["key_id"])
	token := body["booking_token"].(string)
	orderID := body["order_id"].(string)

	verify := map[string]string{
		"booking_token":       token,
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": "pay_test_1",
		"razorpay_signature":  "",
	}
	w, body = do(app, jsonRequest(http.MethodPost, "/verify_payment", verify))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ok", body["status"])
	bookingID := body["booking_id"].(string)
	assert.Regexp(t, `^B[0-9A-F]{10}$`, bookingID)

	w, body = do(app, jsonRequest(http.MethodPost, "/verify_payment", verify))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "invalid_token", body["code"])
	assert.Len(t, app.repo.rows, 1)

	w, body = do(app, httptest.NewRequest(http.MethodGet, "/success?bid="+bookingID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Meera Nair", body["name"])
	assert.Equal(t, "meera@example.com", body["email"])

	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/"+bookingID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), bookingID+".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	require.NoError(t, os.RemoveAll(app.ticketsDir))
	w = httptest.NewRecorder()
	app.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/"+bookingID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

type stuckRenderer struct {
	release chan struct{}
}

func (r stuckRenderer) Render(context.Context, models.Booking) (string, error) {
	<-r.release
	return "", errors.New("released")
}

func (stuckRenderer) Path(string) (string, bool) { return "", false }

func TestVerifyRespondsWhileSideEffectsHang(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	app := newTestApp(t, func(svc *services.BookingService) {
		svc.SideEffects = services.SideEffects{
			Tickets:     stuckRenderer{release: release},
			StepTimeout: 200 * time.Millisecond,
			Budget:      300 * time.Millisecond,
		}
	})
	token, orderID := app.pay(t)

	srv := httptest.NewUnstartedServer(app.router)
	srv.Config.WriteTimeout = time.Second
	srv.Start()
	defer srv.Close()

	raw, err := json.Marshal(map[string]string{
		"booking_token":     token,
		"razorpay_order_id": orderID,
	})
	require.NoError(t, err)

	started := time.Now()
	resp, err := http.Post(srv.URL+"/verify_payment", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Less(t, time.Since(started), time.Second)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Regexp(t, `^B[0-9A-F]{10}$`, body["booking_id"])

	app.repo.mu.Lock()
	assert.Len(t, app.repo.rows, 1)
	app.repo.mu.Unlock()
}

func TestVerifyPaymentErrors(t *testing.T) {
	app := newTestApp(t)
	token, orderID := app.pay(t)

	w, body := do(app, jsonRequest(http.MethodPost, "/verify_payment", map[string]string{
		"booking_token": token, "razorpay_order_id": "order_someone_else",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order_mismatch", body["code"])

	app.repo.insertErr = errors.New("db gone")
	w, body = do(app, jsonRequest(http.MethodPost, "/verify_payment", map[string]string{
		"booking_token": token, "razorpay_order_id": orderID,
	}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "persistence_error", body["code"])

	app.repo.insertErr = nil
	w, body = do(app, jsonRequest(http.MethodPost, "/verify_payment", map[string]string{
		"booking_token": token, "razorpay_order_id": orderID,
	}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	req := httptest.NewRequest(http.MethodPost, "/verify_payment", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w, body = do(app, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestPayValidation(t *testing.T) {
	app := newTestApp(t)

	w, body := do(app, payRequest(t, payFields(), false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])

	fields := payFields()
	fields["persons"] = "many"
	w, body = do(app, payRequest(t, fields, true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])

	fields = payFields()
	fields["email"] = "nope"
	w, body = do(app, payRequest(t, fields, true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])
}

func TestSuccessAndTicketUnknownBooking(t *testing.T) {
	app := newTestApp(t)

	w, body := do(app, httptest.NewRequest(http.MethodGet, "/success?bid=B0000000000", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])

	w, _ = do(app, httptest.NewRequest(http.MethodGet, "/success", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(app, httptest.NewRequest(http.MethodGet, "/ticket/B0000000000", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	token, orderID := app.pay(t)
	w, body := do(app, jsonRequest(http.MethodPost, "/verify_payment", map[string]string{
		"booking_token": token, "razorpay_order_id": orderID,
	}))
	require.Equal(t, http.StatusOK, w.Code)
	bookingID := body["booking_id"].(string)

	w, _ = do(app, httptest.NewRequest(http.MethodGet, "/admin/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/bookings", nil)
	req.SetBasicAuth("owner", "pw")
	w, body = do(app, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["bookings"], 1)

	w, body = do(app, jsonRequest(http.MethodPost, "/admin/token", map[string]string{"username": "owner", "password": "bad"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = do(app, jsonRequest(http.MethodPost, "/admin/token", map[string]string{"username": "owner", "password": "pw"}))
	require.Equal(t, http.StatusOK, w.Code)
	bearer := "Bearer " + body["token"].(string)

	req = jsonRequest(http.MethodPost, "/admin/slots", map[string]any{"date": "2026-10-20", "times": []string{"09:00", "11:30"}})
	req.Header.Set("Authorization", bearer)
	w, _ = do(app, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = jsonRequest(http.MethodPost, "/admin/slots", map[string]any{"times": []string{"09:00"}})
	req.Header.Set("Authorization", bearer)
	w, _ = do(app, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(app, httptest.NewRequest(http.MethodGet, "/api/slots?date=2026-10-20", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"09:00", "11:30"}, body["slots"])

	w, body = do(app, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["all"], "2026-10-20")

	req = httptest.NewRequest(http.MethodPost, "/admin/bookings/"+bookingID+"/side-effects", nil)
	req.Header.Set("Authorization", bearer)
	w, body = do(app, req)
	require.Equal(t, http.StatusOK, w.Code)
	report := body["report"].(map[string]any)
	assert.Equal(t, bookingID, report["booking_id"])
	assert.Len(t, report["steps"], 3)

	req = httptest.NewRequest(http.MethodPost, "/admin/bookings/B9999999999/side-effects", nil)
	req.Header.Set("Authorization", bearer)
	w, _ = do(app, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndNoRoute(t *testing.T) {
	app := newTestApp(t)

	w, body := do(app, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not_configured", body["database"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, body = do(app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["code"])
}
