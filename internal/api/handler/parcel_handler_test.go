package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

type stubParcelService struct {
	quoteFn        func(ctx context.Context, input ports.QuoteInput) (*ports.QuoteResult, error)
	createFn       func(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error)
	trackFn        func(ctx context.Context, trackingID string) (*ports.TrackResult, error)
	updateStatusFn func(ctx context.Context, trackingID string, next domain.DeliveryStatus, riderEmail string) error
}

func (s *stubParcelService) Quote(ctx context.Context, input ports.QuoteInput) (*ports.QuoteResult, error) {
	return s.quoteFn(ctx, input)
}

func (s *stubParcelService) CreateParcel(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubParcelService) GetParcel(ctx context.Context, input ports.GetParcelInput) (*domain.Parcel, error) {
	return nil, domain.ErrParcelNotFound
}

func (s *stubParcelService) ListParcels(ctx context.Context, input ports.ListParcelsInput) (*ports.ListParcelsResult, error) {
	return &ports.ListParcelsResult{Page: input.Page, Limit: input.Limit}, nil
}

func (s *stubParcelService) DeleteParcel(ctx context.Context, trackingID, email string) (*domain.Parcel, error) {
	return nil, domain.ErrParcelNotFound
}

func (s *stubParcelService) AssignRider(ctx context.Context, trackingID, riderID, actor string) error {
	return nil
}

func (s *stubParcelService) UpdateDeliveryStatus(ctx context.Context, trackingID string, next domain.DeliveryStatus, riderEmail string) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, trackingID, next, riderEmail)
	}
	return nil
}

func (s *stubParcelService) RiderDeliveries(ctx context.Context, input ports.RiderDeliveriesInput) ([]*domain.Parcel, error) {
	return nil, nil
}

func (s *stubParcelService) Track(ctx context.Context, trackingID string) (*ports.TrackResult, error) {
	return s.trackFn(ctx, trackingID)
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, role, email string) echo.Context {
	c := e.NewContext(req, rec)
	c.Set("role", role)
	c.Set("email", email)
	c.Set("name", "Test User")
	return c
}

func TestParcelHandler_Quote_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubParcelService{
		quoteFn: func(ctx context.Context, input ports.QuoteInput) (*ports.QuoteResult, error) {
			if input.ParcelType != "non-document" || input.WeightKg != 5 {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &ports.QuoteResult{BaseCost: 150, ExtraCharges: 120, TotalCost: 270, Zone: "Outside District"}, nil
		},
	}
	handler := NewParcelHandler(stub)

	body := strings.NewReader(`{"parcel_name":"Books","parcel_type":"non-document","weight_kg":5,"sender_region":"Dhaka","receiver_region":"Khulna"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/parcels/quote", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleUser, "alice@example.com")

	if err := handler.Quote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total_cost"] != float64(270) || resp["zone"] != "Outside District" {
		t.Fatalf("unexpected quote payload: %+v", resp)
	}
}

func TestParcelHandler_Quote_UnknownType(t *testing.T) {
	e := newTestEcho()
	stub := &stubParcelService{
		quoteFn: func(ctx context.Context, input ports.QuoteInput) (*ports.QuoteResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewParcelHandler(stub)

	body := strings.NewReader(`{"parcel_name":"Books","parcel_type":"fragile","sender_region":"Dhaka","receiver_region":"Khulna"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/parcels/quote", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleUser, "alice@example.com")

	err := handler.Quote(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

const createParcelBody = `{
	"parcel_name": "Books",
	"parcel_type": "non-document",
	"weight_kg": 5,
	"sender": {"name":"Alice","contact":"01700000000","region":"Dhaka","district":"Dhaka","warehouse":"Mirpur","address":"House 1"},
	"receiver": {"name":"Bob","contact":"01800000000","region":"Khulna","district":"Khulna","warehouse":"Sonadanga","address":"House 2"}
}`

func TestParcelHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	now := time.Now().UTC()
	stub := &stubParcelService{
		createFn: func(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error) {
			if input.CreatedBy != "alice@example.com" {
				t.Fatalf("expected creator from claims, got %q", input.CreatedBy)
			}
			if input.IdempotencyKey != "key-1" {
				t.Fatalf("expected idempotency key from header, got %q", input.IdempotencyKey)
			}
			return &ports.ParcelResult{
				TrackingID:       "ZAP-12345678",
				ParcelStatus:     string(domain.StatusProcessing),
				DeliveryStatus:   string(domain.DeliveryNotDispatched),
				PaymentStatus:    string(domain.PaymentPending),
				DeliveryCost:     270,
				Zone:             "Outside District",
				CreatedAt:        now,
				ExpectedDelivery: now.AddDate(0, 0, 3),
			}, nil
		},
	}
	handler := NewParcelHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/parcels", strings.NewReader(createParcelBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleUser, "alice@example.com")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["tracking_id"] != "ZAP-12345678" {
		t.Fatalf("unexpected tracking id: %v", resp["tracking_id"])
	}
	links, ok := resp["_links"].(map[string]any)
	if !ok || links["track"] != "/v1/parcels/ZAP-12345678/track" {
		t.Fatalf("unexpected links: %+v", resp["_links"])
	}
}

func TestParcelHandler_Create_IdempotentReplayReturns200(t *testing.T) {
	e := newTestEcho()
	stub := &stubParcelService{
		createFn: func(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error) {
			return &ports.ParcelResult{TrackingID: "ZAP-12345678", AlreadyExisted: true}, nil
		},
	}
	handler := NewParcelHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/parcels", strings.NewReader(createParcelBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleUser, "alice@example.com")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay, got %d", rec.Code)
	}
}

func TestParcelHandler_Create_MissingReceiver(t *testing.T) {
	e := newTestEcho()
	stub := &stubParcelService{
		createFn: func(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewParcelHandler(stub)

	body := strings.NewReader(`{"parcel_name":"Books","parcel_type":"document","sender":{"name":"Alice","contact":"017","region":"Dhaka","district":"Dhaka","warehouse":"Mirpur","address":"H1"}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/parcels", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleUser, "alice@example.com")

	err := handler.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestParcelHandler_Create_MissingClaims(t *testing.T) {
	e := newTestEcho()
	stub := &stubParcelService{
		createFn: func(ctx context.Context, input ports.CreateParcelInput) (*ports.ParcelResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewParcelHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/v1/parcels", strings.NewReader(createParcelBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestParcelHandler_Track_Public(t *testing.T) {
	e := newTestEcho()
	now := time.Now().UTC()
	stub := &stubParcelService{
		trackFn: func(ctx context.Context, trackingID string) (*ports.TrackResult, error) {
			if trackingID != "ZAP-12345678" {
				t.Fatalf("unexpected tracking id: %s", trackingID)
			}
			return &ports.TrackResult{
				TrackingID:     trackingID,
				ParcelStatus:   string(domain.StatusInTransit),
				DeliveryStatus: string(domain.DeliveryInTransit),
				History: []domain.HistoryEntry{
					{Status: string(domain.DeliveryInTransit), Timestamp: now},
				},
			}, nil
		},
	}
	handler := NewParcelHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/v1/parcels/ZAP-12345678/track", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("tracking_id")
	c.SetParamValues("ZAP-12345678")

	if err := handler.Track(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	history, ok := resp["history"].([]any)
	if !ok || len(history) != 1 {
		t.Fatalf("expected one history entry, got %+v", resp["history"])
	}
}

func TestParcelHandler_UpdateStatus_InvalidStatus(t *testing.T) {
	e := newTestEcho()
	handler := NewParcelHandler(&stubParcelService{})

	body := strings.NewReader(`{"status":"teleported"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/parcels/ZAP-12345678/status", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleRider, "rider@example.com")
	c.SetParamNames("tracking_id")
	c.SetParamValues("ZAP-12345678")

	err := handler.UpdateStatus(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestParcelHandler_UpdateStatus_PassesRiderEmail(t *testing.T) {
	e := newTestEcho()
	var gotEmail string
	var gotStatus domain.DeliveryStatus
	stub := &stubParcelService{
		updateStatusFn: func(ctx context.Context, trackingID string, next domain.DeliveryStatus, riderEmail string) error {
			gotEmail = riderEmail
			gotStatus = next
			return nil
		},
	}
	handler := NewParcelHandler(stub)

	body := strings.NewReader(`{"status":"in_transit"}`)
	req := httptest.NewRequest(http.MethodPatch, "/v1/parcels/ZAP-12345678/status", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, domain.RoleRider, "rider@example.com")
	c.SetParamNames("tracking_id")
	c.SetParamValues("ZAP-12345678")

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotEmail != "rider@example.com" || gotStatus != domain.DeliveryInTransit {
		t.Fatalf("unexpected service args: %s %s", gotEmail, gotStatus)
	}
}
