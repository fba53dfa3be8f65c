package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zapshift/parcel-system/internal/core/directory"
	"github.com/zapshift/parcel-system/internal/core/domain"
	"github.com/zapshift/parcel-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubParcelRepo struct {
	byTracking     map[string]*domain.Parcel
	byIdempotency  map[string]*domain.Parcel
	lastFindFilter string // createdBy passed to the last FindByTrackingID call
	createErr      error  // if set, Create returns this error
	afterFind      func() // if set, runs after FindByTrackingID snapshots the parcel
}

func newStubParcelRepo() *stubParcelRepo {
	return &stubParcelRepo{
		byTracking:    make(map[string]*domain.Parcel),
		byIdempotency: make(map[string]*domain.Parcel),
	}
}

func idemKey(key, createdBy string) string {
	return key + "\x00" + createdBy
}

func (r *stubParcelRepo) Create(_ context.Context, p *domain.Parcel) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byTracking[p.TrackingID]; exists {
		return domain.ErrDuplicateTrackingID
	}
	clone := *p
	r.byTracking[p.TrackingID] = &clone
	if p.IdempotencyKey != "" {
		r.byIdempotency[idemKey(p.IdempotencyKey, p.CreatedBy)] = &clone
	}
	return nil
}

func (r *stubParcelRepo) FindByTrackingID(_ context.Context, trackingID, createdBy string) (*domain.Parcel, error) {
	r.lastFindFilter = createdBy
	p, ok := r.byTracking[trackingID]
	if !ok {
		return nil, domain.ErrParcelNotFound
	}
	// Enforce owner filter (mirrors the real Mongo query)
	if createdBy != "" && p.CreatedBy != createdBy {
		return nil, domain.ErrParcelNotFound
	}
	clone := *p
	// Snapshot first, then let the hook mutate the store: the caller holds a
	// read that may be stale by the time it writes back.
	if r.afterFind != nil {
		r.afterFind()
	}
	return &clone, nil
}

func (r *stubParcelRepo) FindByIdempotencyKey(_ context.Context, key, createdBy string) (*domain.Parcel, error) {
	p, ok := r.byIdempotency[idemKey(key, createdBy)]
	if !ok {
		return nil, domain.ErrParcelNotFound
	}
	clone := *p
	return &clone, nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubParcelRepo) List(_ context.Context, f ports.ListParcelsFilter) ([]*domain.Parcel, int64, error) {
	var matched []*domain.Parcel
	for _, p := range r.byTracking {
		if f.CreatedBy != "" && p.CreatedBy != f.CreatedBy {
			continue
		}
		if f.RiderEmail != "" && p.AssignedRiderEmail != f.RiderEmail {
			continue
		}
		if f.ParcelStatus != "" && string(p.ParcelStatus) != f.ParcelStatus {
			continue
		}
		if f.PaymentStatus != "" && string(p.PaymentStatus) != f.PaymentStatus {
			continue
		}
		if f.DeliveryStatus != "" {
			if string(p.DeliveryStatus) != f.DeliveryStatus {
				continue
			}
		} else if len(f.DeliveryStatusIn) > 0 {
			in := false
			for _, ds := range f.DeliveryStatusIn {
				if string(p.DeliveryStatus) == ds {
					in = true
					break
				}
			}
			if !in {
				continue
			}
		}
		if f.Search != "" {
			trackingMatch := strings.Contains(strings.ToLower(p.TrackingID), strings.ToLower(f.Search))
			nameMatch := strings.Contains(strings.ToLower(p.ParcelName), strings.ToLower(f.Search))
			if !trackingMatch && !nameMatch {
				continue
			}
		}
		clone := *p
		matched = append(matched, &clone)
	}

	total := int64(len(matched))

	limit := f.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	skip := (f.Page - 1) * limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []*domain.Parcel{}, total, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubParcelRepo) Delete(_ context.Context, trackingID, createdBy string) error {
	p, ok := r.byTracking[trackingID]
	if !ok || (createdBy != "" && p.CreatedBy != createdBy) {
		return domain.ErrParcelNotFound
	}
	delete(r.byTracking, trackingID)
	return nil
}

func (r *stubParcelRepo) AssignRider(_ context.Context, trackingID, riderID, riderEmail string, entry domain.HistoryEntry) error {
	p, ok := r.byTracking[trackingID]
	if !ok {
		return domain.ErrParcelNotFound
	}
	p.AssignedRiderID = riderID
	p.AssignedRiderEmail = riderEmail
	p.DeliveryStatus = domain.DeliveryRiderAssigned
	p.History = append(p.History, entry)
	return nil
}

func (r *stubParcelRepo) UpdateDeliveryStatus(_ context.Context, trackingID string, ds domain.DeliveryStatus, ps domain.ParcelStatus, deliveredAt *time.Time, entry domain.HistoryEntry) error {
	p, ok := r.byTracking[trackingID]
	if !ok {
		return domain.ErrParcelNotFound
	}
	p.DeliveryStatus = ds
	p.ParcelStatus = ps
	if deliveredAt != nil {
		p.DeliveredAt = deliveredAt
	}
	p.History = append(p.History, entry)
	return nil
}

// MarkPaid mirrors the conditional Mongo update: only a Pending parcel flips.
func (r *stubParcelRepo) MarkPaid(_ context.Context, trackingID, paymentMethod string, entry domain.HistoryEntry) error {
	p, ok := r.byTracking[trackingID]
	if !ok {
		return domain.ErrParcelNotFound
	}
	if p.PaymentStatus != domain.PaymentPending {
		return domain.ErrParcelAlreadyPaid
	}
	p.PaymentStatus = domain.PaymentPaid
	p.PaymentMethod = paymentMethod
	p.History = append(p.History, entry)
	return nil
}

// SetEarnings mirrors the conditional Mongo update: a credited parcel rejects.
func (r *stubParcelRepo) SetEarnings(_ context.Context, trackingID string, earnings domain.Earnings) error {
	p, ok := r.byTracking[trackingID]
	if !ok {
		return domain.ErrParcelNotFound
	}
	if p.Earnings != nil && p.Earnings.AddedToWallet {
		return domain.ErrEarningsAlreadyCredited
	}
	e := earnings
	p.Earnings = &e
	return nil
}

type stubRiderRepo struct {
	byID    map[string]*domain.Rider
	byEmail map[string]*domain.Rider
}

func newStubRiderRepo() *stubRiderRepo {
	return &stubRiderRepo{
		byID:    make(map[string]*domain.Rider),
		byEmail: make(map[string]*domain.Rider),
	}
}

func (r *stubRiderRepo) Create(_ context.Context, rider *domain.Rider) (*domain.Rider, error) {
	clone := *rider
	if clone.ID == "" {
		clone.ID = "rider_" + rider.Email
	}
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = &clone
	out := clone
	return &out, nil
}

func (r *stubRiderRepo) FindByID(_ context.Context, id string) (*domain.Rider, error) {
	rider, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRiderNotFound
	}
	clone := *rider
	return &clone, nil
}

func (r *stubRiderRepo) FindByEmail(_ context.Context, email string) (*domain.Rider, error) {
	rider, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrRiderNotFound
	}
	clone := *rider
	return &clone, nil
}

func (r *stubRiderRepo) List(_ context.Context, f ports.ListRidersFilter) ([]*domain.Rider, error) {
	var out []*domain.Rider
	for _, rider := range r.byID {
		if f.Status != "" && string(rider.Status) != f.Status {
			continue
		}
		if f.District != "" && rider.District != f.District {
			continue
		}
		clone := *rider
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubRiderRepo) UpdateStatus(_ context.Context, id string, status domain.RiderStatus, decidedAt time.Time) (*domain.Rider, error) {
	rider, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRiderNotFound
	}
	rider.Status = status
	rider.DecidedAt = &decidedAt
	clone := *rider
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir, err := directory.Load()
	if err != nil {
		t.Fatalf("load directory: %v", err)
	}
	return dir
}

func newParcelService(t *testing.T) (*ParcelService, *stubParcelRepo, *stubRiderRepo) {
	t.Helper()
	repo := newStubParcelRepo()
	riders := newStubRiderRepo()
	return NewParcelService(repo, riders, testDirectory(t), discardLogger), repo, riders
}

func bookingInput(createdBy string) ports.CreateParcelInput {
	return ports.CreateParcelInput{
		ParcelName: "Books",
		ParcelType: "non-document",
		WeightKg:   5,
		Sender: ports.PartyInput{
			Name: "Rahim", Contact: "01711111111",
			Region: "Dhaka", District: "Dhaka", Warehouse: "Mirpur",
			Address: "House 7, Road 2",
		},
		Receiver: ports.PartyInput{
			Name: "Karim", Contact: "01822222222",
			Region: "Khulna", District: "Khulna", Warehouse: "Sonadanga",
			Address: "Flat 3B",
		},
		CreatedBy: createdBy,
	}
}

func approvedRider(riders *stubRiderRepo, email, district string) *domain.Rider {
	rider, _ := riders.Create(context.Background(), &domain.Rider{
		Name: "Rider " + email, Email: email, Phone: "017", Region: "Khulna",
		District: district, Status: domain.RiderApproved,
	})
	return rider
}

// ---------------------------------------------------------------------------
// Quote tests
// ---------------------------------------------------------------------------

func TestParcelService_Quote_NonDocumentCrossRegion(t *testing.T) {
	svc, _, _ := newParcelService(t)

	res, err := svc.Quote(context.Background(), ports.QuoteInput{
		ParcelName: "Books", ParcelType: "non-document", WeightKg: 5,
		SenderRegion: "Dhaka", ReceiverRegion: "Khulna",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.BaseCost != 150 || res.ExtraCharges != 120 || res.TotalCost != 270 {
		t.Errorf("expected 150/120/270, got %d/%d/%d", res.BaseCost, res.ExtraCharges, res.TotalCost)
	}
	if res.Zone != string(domain.ZoneOutsideDistrict) {
		t.Errorf("expected zone %q, got %q", domain.ZoneOutsideDistrict, res.Zone)
	}
}

func TestParcelService_Quote_RejectsEmptyName(t *testing.T) {
	svc, _, _ := newParcelService(t)

	_, err := svc.Quote(context.Background(), ports.QuoteInput{
		ParcelType: "document", SenderRegion: "Dhaka", ReceiverRegion: "Dhaka",
	})
	if !errors.Is(err, domain.ErrInvalidBooking) {
		t.Errorf("expected ErrInvalidBooking for empty name, got %v", err)
	}
}

func TestParcelService_Quote_RejectsNonPositiveWeight(t *testing.T) {
	svc, _, _ := newParcelService(t)

	for _, w := range []float64{0, -1} {
		_, err := svc.Quote(context.Background(), ports.QuoteInput{
			ParcelName: "Books", ParcelType: "non-document", WeightKg: w,
			SenderRegion: "Dhaka", ReceiverRegion: "Dhaka",
		})
		if !errors.Is(err, domain.ErrInvalidBooking) {
			t.Errorf("weight %v: expected ErrInvalidBooking, got %v", w, err)
		}
	}
}

func TestParcelService_Quote_DocumentIgnoresWeight(t *testing.T) {
	svc, _, _ := newParcelService(t)

	res, err := svc.Quote(context.Background(), ports.QuoteInput{
		ParcelName: "Contract", ParcelType: "document", WeightKg: 0,
		SenderRegion: "Dhaka", ReceiverRegion: "Dhaka",
	})
	if err != nil {
		t.Fatalf("document with zero weight must be quotable: %v", err)
	}
	if res.TotalCost != 60 {
		t.Errorf("expected total 60, got %d", res.TotalCost)
	}
}

func TestParcelService_Quote_UnknownRegion(t *testing.T) {
	svc, _, _ := newParcelService(t)

	_, err := svc.Quote(context.Background(), ports.QuoteInput{
		ParcelName: "Books", ParcelType: "document",
		SenderRegion: "Atlantis", ReceiverRegion: "Dhaka",
	})
	if !errors.Is(err, domain.ErrInvalidBooking) {
		t.Errorf("expected ErrInvalidBooking for unknown region, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// CreateParcel tests
// ---------------------------------------------------------------------------

func TestParcelService_Create_Success(t *testing.T) {
	svc, repo, _ := newParcelService(t)

	result, err := svc.CreateParcel(context.Background(), bookingInput("user@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(result.TrackingID, "ZAP-") {
		t.Errorf("tracking id format wrong: %s", result.TrackingID)
	}
	if len(result.TrackingID) != len("ZAP-")+8 {
		t.Errorf("tracking id must carry an 8-digit suffix: %s", result.TrackingID)
	}
	if result.ParcelStatus != string(domain.StatusProcessing) {
		t.Errorf("expected status %q, got %q", domain.StatusProcessing, result.ParcelStatus)
	}
	if result.DeliveryStatus != string(domain.DeliveryNotDispatched) {
		t.Errorf("expected delivery status %q, got %q", domain.DeliveryNotDispatched, result.DeliveryStatus)
	}
	if result.PaymentStatus != string(domain.PaymentPending) {
		t.Errorf("expected payment status %q, got %q", domain.PaymentPending, result.PaymentStatus)
	}
	if result.DeliveryCost != 270 {
		t.Errorf("expected delivery cost 270, got %d", result.DeliveryCost)
	}
	if result.AlreadyExisted {
		t.Error("expected AlreadyExisted=false for new parcel")
	}

	stored := repo.byTracking[result.TrackingID]
	if stored.CreatedBy != "user@example.com" {
		t.Errorf("expected created_by %q, got %q", "user@example.com", stored.CreatedBy)
	}
	if len(stored.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(stored.History))
	}
	if stored.History[0].Status != string(domain.StatusProcessing) {
		t.Errorf("expected initial history status %q, got %q", domain.StatusProcessing, stored.History[0].Status)
	}
}

func TestParcelService_Create_ExpectedDeliveryThreeDaysOut(t *testing.T) {
	svc, _, _ := newParcelService(t)

	before := time.Now().UTC().AddDate(0, 0, 3).Add(-time.Minute)
	result, err := svc.CreateParcel(context.Background(), bookingInput("user@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC().AddDate(0, 0, 3).Add(time.Minute)

	if result.ExpectedDelivery.Before(before) || result.ExpectedDelivery.After(after) {
		t.Errorf("expected delivery ~3 days out, got %v", result.ExpectedDelivery)
	}
}

func TestParcelService_Create_RejectsInvalidWarehouse(t *testing.T) {
	svc, repo, _ := newParcelService(t)

	in := bookingInput("user@example.com")
	// Sonadanga belongs to Khulna, not Dhaka: stale cascading selection.
	in.Sender.Warehouse = "Sonadanga"

	_, err := svc.CreateParcel(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for mismatched warehouse, got %v", err)
	}
	if len(repo.byTracking) != 0 {
		t.Error("invalid booking must not be persisted")
	}
}

func TestParcelService_Create_RejectsMissingContact(t *testing.T) {
	svc, _, _ := newParcelService(t)

	in := bookingInput("user@example.com")
	in.Receiver.Contact = ""

	_, err := svc.CreateParcel(context.Background(), in)
	if !errors.Is(err, domain.ErrInvalidBooking) {
		t.Errorf("expected ErrInvalidBooking for missing contact, got %v", err)
	}
}

func TestParcelService_Create_IdempotencyReplay(t *testing.T) {
	svc, repo, _ := newParcelService(t)

	in := bookingInput("user@example.com")
	in.IdempotencyKey = "key-abc-123"

	first, err := svc.CreateParcel(context.Background(), in)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second, err := svc.CreateParcel(context.Background(), in)
	if err != nil {
		t.Fatalf("second create (replay) failed: %v", err)
	}

	if second.TrackingID != first.TrackingID {
		t.Errorf("replay must return same tracking id: got %q, want %q", second.TrackingID, first.TrackingID)
	}
	if !second.AlreadyExisted {
		t.Error("replay must set AlreadyExisted=true")
	}
	if len(repo.byTracking) != 1 {
		t.Errorf("expected 1 stored parcel, got %d", len(repo.byTracking))
	}
}

func TestParcelService_Create_IdempotencyKeyScopedToOwner(t *testing.T) {
	svc, repo, _ := newParcelService(t)

	first := bookingInput("a@example.com")
	first.IdempotencyKey = "key-abc-123"
	created, err := svc.CreateParcel(context.Background(), first)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Same key, different caller: must book a fresh parcel, never replay
	// someone else's booking back.
	second := bookingInput("b@example.com")
	second.IdempotencyKey = "key-abc-123"
	other, err := svc.CreateParcel(context.Background(), second)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if other.AlreadyExisted {
		t.Error("a foreign key must not replay")
	}
	if other.TrackingID == created.TrackingID {
		t.Error("each owner must get their own parcel")
	}
	if len(repo.byTracking) != 2 {
		t.Errorf("expected 2 stored parcels, got %d", len(repo.byTracking))
	}
}

func TestParcelService_Create_NoIdempotencyKey_AlwaysCreates(t *testing.T) {
	svc, repo, _ := newParcelService(t)

	_, _ = svc.CreateParcel(context.Background(), bookingInput("user@example.com"))
	_, _ = svc.CreateParcel(context.Background(), bookingInput("user@example.com"))

	if len(repo.byTracking) != 2 {
		t.Errorf("without idempotency key, each call must create a new parcel; got %d", len(repo.byTracking))
	}
}

func TestParcelService_Create_RepoError(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	repo.createErr = errors.New("db unavailable")

	_, err := svc.CreateParcel(context.Background(), bookingInput("user@example.com"))
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetParcel tests
// ---------------------------------------------------------------------------

func seedParcel(t *testing.T, svc *ParcelService, createdBy string) string {
	t.Helper()
	result, err := svc.CreateParcel(context.Background(), bookingInput(createdBy))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return result.TrackingID
}

func TestParcelService_Get_AdminSeesAll(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	_, err := svc.GetParcel(context.Background(), ports.GetParcelInput{
		TrackingID: id, Role: domain.RoleAdmin, Email: "admin@example.com",
	})
	if err != nil {
		t.Fatalf("admin should see any parcel, got error: %v", err)
	}
	if repo.lastFindFilter != "" {
		t.Errorf("admin query must not pass owner filter, got %q", repo.lastFindFilter)
	}
}

func TestParcelService_Get_OwnerScoped(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	_, err := svc.GetParcel(context.Background(), ports.GetParcelInput{
		TrackingID: id, Role: domain.RoleUser, Email: "owner@example.com",
	})
	if err != nil {
		t.Fatalf("owner should see own parcel, got error: %v", err)
	}
	if repo.lastFindFilter != "owner@example.com" {
		t.Errorf("expected owner filter %q, got %q", "owner@example.com", repo.lastFindFilter)
	}
}

func TestParcelService_Get_UserCannotSeeOthersParcel(t *testing.T) {
	svc, _, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	_, err := svc.GetParcel(context.Background(), ports.GetParcelInput{
		TrackingID: id, Role: domain.RoleUser, Email: "other@example.com",
	})
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Errorf("expected ErrParcelNotFound for foreign owner, got %v", err)
	}
}

func TestParcelService_Get_RiderMustBeAssigned(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	_, err := svc.GetParcel(context.Background(), ports.GetParcelInput{
		TrackingID: id, Role: domain.RoleRider, Email: "rider@example.com",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("unassigned rider must be forbidden, got %v", err)
	}

	repo.byTracking[id].AssignedRiderEmail = "rider@example.com"
	if _, err := svc.GetParcel(context.Background(), ports.GetParcelInput{
		TrackingID: id, Role: domain.RoleRider, Email: "rider@example.com",
	}); err != nil {
		t.Errorf("assigned rider should see the parcel, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListParcels tests
// ---------------------------------------------------------------------------

func TestParcelService_List_AdminSeesAll(t *testing.T) {
	svc, _, _ := newParcelService(t)
	seedParcel(t, svc, "a@example.com")
	seedParcel(t, svc, "b@example.com")

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleAdmin, Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Errorf("admin: expected 2 total, got %d", res.Total)
	}
}

func TestParcelService_List_UserSeesOwn(t *testing.T) {
	svc, _, _ := newParcelService(t)
	seedParcel(t, svc, "a@example.com")
	seedParcel(t, svc, "b@example.com")

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleUser, Email: "a@example.com", Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 {
		t.Errorf("user: expected 1, got %d", res.Total)
	}
}

func TestParcelService_List_LimitCappedAt100(t *testing.T) {
	svc, _, _ := newParcelService(t)

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleAdmin, Limit: 999, Page: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 100 {
		t.Errorf("expected limit 100, got %d", res.Limit)
	}
}

func TestParcelService_List_DefaultLimit(t *testing.T) {
	svc, _, _ := newParcelService(t)

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleAdmin, Limit: 0, Page: 0,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Limit != 20 {
		t.Errorf("expected default limit 20, got %d", res.Limit)
	}
	if res.Page != 1 {
		t.Errorf("expected page normalized to 1, got %d", res.Page)
	}
}

func TestParcelService_List_PaginationMath(t *testing.T) {
	svc, _, _ := newParcelService(t)
	for i := 0; i < 5; i++ {
		seedParcel(t, svc, "a@example.com")
	}

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleAdmin, Limit: 2, Page: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 5 {
		t.Errorf("total: expected 5, got %d", res.Total)
	}
	if res.TotalPages != 3 {
		t.Errorf("total_pages: expected 3, got %d", res.TotalPages)
	}
	if len(res.Items) != 2 {
		t.Errorf("items: expected 2, got %d", len(res.Items))
	}
}

func TestParcelService_List_SearchByName(t *testing.T) {
	svc, _, _ := newParcelService(t)

	in := bookingInput("a@example.com")
	in.ParcelName = "Winter jacket"
	if _, err := svc.CreateParcel(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	seedParcel(t, svc, "a@example.com") // "Books"

	res, err := svc.ListParcels(context.Background(), ports.ListParcelsInput{
		Role: domain.RoleAdmin, Search: "jacket", Page: 1, Limit: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 {
		t.Errorf("search: expected 1, got %d", res.Total)
	}
}

// ---------------------------------------------------------------------------
// DeleteParcel tests
// ---------------------------------------------------------------------------

func TestParcelService_Delete_UnpaidByOwner(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	deleted, err := svc.DeleteParcel(context.Background(), id, "owner@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.TrackingID != id {
		t.Errorf("expected deleted parcel %q, got %q", id, deleted.TrackingID)
	}
	if _, ok := repo.byTracking[id]; ok {
		t.Error("parcel must be removed from the store")
	}
}

func TestParcelService_Delete_PaidIsRejected(t *testing.T) {
	svc, repo, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")
	repo.byTracking[id].PaymentStatus = domain.PaymentPaid

	_, err := svc.DeleteParcel(context.Background(), id, "owner@example.com")
	if !errors.Is(err, domain.ErrParcelNotDeletable) {
		t.Errorf("expected ErrParcelNotDeletable for paid parcel, got %v", err)
	}
}

func TestParcelService_Delete_ForeignOwnerNotFound(t *testing.T) {
	svc, _, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	_, err := svc.DeleteParcel(context.Background(), id, "other@example.com")
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Errorf("expected ErrParcelNotFound for foreign owner, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// AssignRider tests
// ---------------------------------------------------------------------------

func paidParcel(t *testing.T, svc *ParcelService, repo *stubParcelRepo) string {
	t.Helper()
	id := seedParcel(t, svc, "owner@example.com")
	repo.byTracking[id].PaymentStatus = domain.PaymentPaid
	return id
}

func TestParcelService_Assign_Success(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := paidParcel(t, svc, repo)
	rider := approvedRider(riders, "rider@example.com", "Khulna")

	if err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.byTracking[id]
	if stored.AssignedRiderEmail != "rider@example.com" {
		t.Errorf("expected assigned rider email, got %q", stored.AssignedRiderEmail)
	}
	if stored.DeliveryStatus != domain.DeliveryRiderAssigned {
		t.Errorf("expected delivery status %q, got %q", domain.DeliveryRiderAssigned, stored.DeliveryStatus)
	}
}

func TestParcelService_Assign_RequiresPayment(t *testing.T) {
	svc, _, riders := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com") // unpaid
	rider := approvedRider(riders, "rider@example.com", "Khulna")

	err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for unpaid parcel, got %v", err)
	}
}

func TestParcelService_Assign_RequiresApprovedRider(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := paidParcel(t, svc, repo)
	rider, _ := riders.Create(context.Background(), &domain.Rider{
		Name: "Pending", Email: "pending@example.com", District: "Khulna",
		Status: domain.RiderPending,
	})

	err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com")
	if !errors.Is(err, domain.ErrRiderNotApproved) {
		t.Errorf("expected ErrRiderNotApproved, got %v", err)
	}
}

func TestParcelService_Assign_RiderMustCoverReceiverDistrict(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := paidParcel(t, svc, repo) // receiver warehouse Sonadanga -> Khulna district
	rider := approvedRider(riders, "rider@example.com", "Jashore")

	err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com")
	if !errors.Is(err, domain.ErrInvalidBooking) {
		t.Errorf("expected ErrInvalidBooking for district mismatch, got %v", err)
	}
}

func TestParcelService_Assign_AlreadyDispatchedRejected(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := paidParcel(t, svc, repo)
	repo.byTracking[id].DeliveryStatus = domain.DeliveryRiderAssigned
	rider := approvedRider(riders, "rider@example.com", "Khulna")

	err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for dispatched parcel, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdateDeliveryStatus tests
// ---------------------------------------------------------------------------

func assignedParcel(t *testing.T, svc *ParcelService, repo *stubParcelRepo, riders *stubRiderRepo, riderEmail string) string {
	t.Helper()
	id := paidParcel(t, svc, repo)
	rider := approvedRider(riders, riderEmail, "Khulna")
	if err := svc.AssignRider(context.Background(), id, rider.ID, "admin@example.com"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	return id
}

func TestParcelService_UpdateDeliveryStatus_HappyPath(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := assignedParcel(t, svc, repo, riders, "rider@example.com")

	steps := []struct {
		next   domain.DeliveryStatus
		parcel domain.ParcelStatus
	}{
		{domain.DeliveryInTransit, domain.StatusInTransit},
		{domain.DeliveryOutForDelivery, domain.StatusOutForDelivery},
		{domain.DeliveryDelivered, domain.StatusDelivered},
	}
	for _, step := range steps {
		if err := svc.UpdateDeliveryStatus(context.Background(), id, step.next, "rider@example.com"); err != nil {
			t.Fatalf("transition to %s: %v", step.next, err)
		}
		stored := repo.byTracking[id]
		if stored.DeliveryStatus != step.next {
			t.Errorf("delivery status: expected %q, got %q", step.next, stored.DeliveryStatus)
		}
		if stored.ParcelStatus != step.parcel {
			t.Errorf("cascaded parcel status: expected %q, got %q", step.parcel, stored.ParcelStatus)
		}
	}
	if repo.byTracking[id].DeliveredAt == nil {
		t.Error("DeliveredAt must be stamped on delivery")
	}
}

func TestParcelService_UpdateDeliveryStatus_OnlyAssignedRider(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := assignedParcel(t, svc, repo, riders, "rider@example.com")

	err := svc.UpdateDeliveryStatus(context.Background(), id, domain.DeliveryInTransit, "other@example.com")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-assigned rider, got %v", err)
	}
}

func TestParcelService_UpdateDeliveryStatus_InvalidTransition(t *testing.T) {
	svc, repo, riders := newParcelService(t)
	id := assignedParcel(t, svc, repo, riders, "rider@example.com")

	// rider_assigned cannot jump straight to delivered
	err := svc.UpdateDeliveryStatus(context.Background(), id, domain.DeliveryDelivered, "rider@example.com")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// RiderDeliveries tests
// ---------------------------------------------------------------------------

func TestParcelService_RiderDeliveries_PendingAndCompleted(t *testing.T) {
	svc, repo, riders := newParcelService(t)

	active := assignedParcel(t, svc, repo, riders, "rider@example.com")
	done := paidParcel(t, svc, repo)
	repo.byTracking[done].AssignedRiderEmail = "rider@example.com"
	repo.byTracking[done].DeliveryStatus = domain.DeliveryDelivered

	pending, err := svc.RiderDeliveries(context.Background(), ports.RiderDeliveriesInput{
		RiderEmail: "rider@example.com", State: "pending",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].TrackingID != active {
		t.Errorf("pending: expected [%s], got %d items", active, len(pending))
	}

	completed, err := svc.RiderDeliveries(context.Background(), ports.RiderDeliveriesInput{
		RiderEmail: "rider@example.com", State: "completed",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 1 || completed[0].TrackingID != done {
		t.Errorf("completed: expected [%s], got %d items", done, len(completed))
	}
}

// ---------------------------------------------------------------------------
// Track tests
// ---------------------------------------------------------------------------

func TestParcelService_Track_ReturnsHistory(t *testing.T) {
	svc, _, _ := newParcelService(t)
	id := seedParcel(t, svc, "owner@example.com")

	res, err := svc.Track(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TrackingID != id {
		t.Errorf("expected tracking id %q, got %q", id, res.TrackingID)
	}
	if res.ParcelStatus != string(domain.StatusProcessing) {
		t.Errorf("expected status %q, got %q", domain.StatusProcessing, res.ParcelStatus)
	}
	if len(res.History) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(res.History))
	}
}

func TestParcelService_Track_NotFound(t *testing.T) {
	svc, _, _ := newParcelService(t)

	_, err := svc.Track(context.Background(), "ZAP-00000000")
	if !errors.Is(err, domain.ErrParcelNotFound) {
		t.Errorf("expected ErrParcelNotFound, got %v", err)
	}
}
