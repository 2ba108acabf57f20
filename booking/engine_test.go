package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servease/marketplace/models"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type stubStore struct {
	services  map[string]*models.Service  // by service id
	providers map[string]*models.Provider // by owning user id
	bookings  map[string]*models.Booking  // by booking id

	createErr  error // if set, CreateBooking returns this error
	paymentErr error // if set, UpdatePaymentStatus returns this error
}

func newStubStore() *stubStore {
	return &stubStore{
		services:  make(map[string]*models.Service),
		providers: make(map[string]*models.Provider),
		bookings:  make(map[string]*models.Booking),
	}
}

// InTransaction mirrors a real rollback: bookings written inside fn are
// discarded wholesale when fn errors.
func (s *stubStore) InTransaction(_ context.Context, fn func(Store) error) error {
	snapshot := make(map[string]*models.Booking, len(s.bookings))
	for id, b := range s.bookings {
		clone := *b
		snapshot[id] = &clone
	}
	if err := fn(s); err != nil {
		s.bookings = snapshot
		return err
	}
	return nil
}

func (s *stubStore) ServiceByID(_ context.Context, id string) (*models.Service, error) {
	svc, ok := s.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *svc
	return &clone, nil
}

func (s *stubStore) ProviderByUserID(_ context.Context, userID string) (*models.Provider, error) {
	p, ok := s.providers[userID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *stubStore) BookingByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *stubStore) BookingForProvider(_ context.Context, id, providerID string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok || b.ProviderID != providerID {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (s *stubStore) CreateBooking(_ context.Context, b *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	clone := *b
	s.bookings[b.ID] = &clone
	return nil
}

func (s *stubStore) UpdateBookingStatus(_ context.Context, id string, status models.BookingStatus) error {
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	return nil
}

func (s *stubStore) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) error {
	if s.paymentErr != nil {
		return s.paymentErr
	}
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.PaymentStatus = status
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(store *stubStore) *Engine {
	e := NewEngine(store)
	e.now = func() time.Time { return baseTime }
	return e
}

func seedCatalog(s *stubStore) {
	s.providers["user-prov"] = &models.Provider{ID: "prov-1", UserID: "user-prov", IsApproved: true}
	s.providers["user-other"] = &models.Provider{ID: "prov-2", UserID: "user-other", IsApproved: true}
	s.services["svc-1"] = &models.Service{ID: "svc-1", ProviderID: "prov-1", Title: "Deep Cleaning", BasePrice: 50, IsActive: true}
	s.services["svc-off"] = &models.Service{ID: "svc-off", ProviderID: "prov-1", Title: "Old Offer", BasePrice: 30, IsActive: false}
}

func validInput() CreateInput {
	return CreateInput{
		ServiceID:   "svc-1",
		ProviderID:  "prov-1",
		BookingDate: baseTime.Add(72 * time.Hour),
		Address:     "12 Jubilee Hills",
		TotalAmount: 50,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreateBooking(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	b, err := e.Create(context.Background(), "cust-1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)

	stored := store.bookings[b.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "cust-1", stored.UserID)
	assert.Equal(t, "prov-1", stored.ProviderID)
}

func TestCreateBookingProviderMismatch(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	in := validInput()
	in.ProviderID = "prov-2"

	_, err := e.Create(context.Background(), "cust-1", in)
	assert.ErrorIs(t, err, ErrProviderMismatch)
	assert.Empty(t, store.bookings, "no row may be persisted on mismatch")
}

func TestCreateBookingInactiveService(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	in := validInput()
	in.ServiceID = "svc-off"

	_, err := e.Create(context.Background(), "cust-1", in)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
	assert.Empty(t, store.bookings)
}

func TestCreateBookingServiceNotFound(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	in := validInput()
	in.ServiceID = "svc-missing"

	_, err := e.Create(context.Background(), "cust-1", in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBookingValidation(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	cases := map[string]func(*CreateInput){
		"missing service":  func(in *CreateInput) { in.ServiceID = "" },
		"missing provider": func(in *CreateInput) { in.ProviderID = "" },
		"blank address":    func(in *CreateInput) { in.Address = "   " },
		"zero amount":      func(in *CreateInput) { in.TotalAmount = 0 },
		"negative amount":  func(in *CreateInput) { in.TotalAmount = -5 },
		"past date":        func(in *CreateInput) { in.BookingDate = baseTime.Add(-time.Hour) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := e.Create(context.Background(), "cust-1", in)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, store.bookings)
		})
	}
}

func TestCreateBookingStoreFailureRollsBack(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	store.createErr = errors.New("connection reset")
	e := newTestEngine(store)

	_, err := e.Create(context.Background(), "cust-1", validInput())
	assert.Error(t, err)
	assert.Empty(t, store.bookings)
}

// ---------------------------------------------------------------------------
// Provider transitions
// ---------------------------------------------------------------------------

func seedBooking(s *stubStore, status models.BookingStatus, payment models.PaymentStatus, date time.Time) *models.Booking {
	b := &models.Booking{
		ID:            "bk-1",
		UserID:        "cust-1",
		ServiceID:     "svc-1",
		ProviderID:    "prov-1",
		BookingDate:   date,
		Address:       "12 Jubilee Hills",
		Status:        status,
		PaymentStatus: payment,
		TotalAmount:   50,
	}
	s.bookings[b.ID] = b
	return b
}

func TestProviderLifecycleWalk(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)
	ctx := context.Background()

	b, err := e.ProviderAction(ctx, "user-prov", "bk-1", ActionConfirm)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, b.Status)

	b, err = e.ProviderAction(ctx, "user-prov", "bk-1", ActionComplete)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, b.Status)

	// Terminal: any further attempt reports the attempted pair and changes nothing.
	_, err = e.ProviderAction(ctx, "user-prov", "bk-1", ActionCancel)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StatusCompleted, te.From)
	assert.Equal(t, models.StatusCancelled, te.To)
	assert.Equal(t, models.StatusCompleted, store.bookings["bk-1"].Status)
}

func TestProviderActionInvalidAction(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	_, err := e.ProviderAction(context.Background(), "user-prov", "bk-1", Action("approve"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProviderActionForeignBookingHidden(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	// prov-2 does not own bk-1; existence must not leak.
	_, err := e.ProviderAction(context.Background(), "user-other", "bk-1", ActionConfirm)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.StatusPending, store.bookings["bk-1"].Status)
}

func TestProviderActionWithoutProviderRecord(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	_, err := e.ProviderAction(context.Background(), "cust-1", "bk-1", ActionConfirm)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestProviderSkipConfirmRejected(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	_, err := e.ProviderAction(context.Background(), "user-prov", "bk-1", ActionComplete)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StatusPending, te.From)
	assert.Equal(t, models.StatusCompleted, te.To)
	assert.Equal(t, models.StatusPending, store.bookings["bk-1"].Status)
}

// Two racing transitions on the same pending booking: the first commits, the
// second observes the already-updated state and fails the table check.
func TestConcurrentConfirmAndCancelExactlyOneWins(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)
	ctx := context.Background()

	_, err := e.CustomerCancel(ctx, "cust-1", "bk-1")
	require.NoError(t, err)

	_, err = e.ProviderAction(ctx, "user-prov", "bk-1", ActionConfirm)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.StatusCancelled, te.From)
	assert.Equal(t, models.StatusCancelled, store.bookings["bk-1"].Status)
}

// ---------------------------------------------------------------------------
// Customer cancellation
// ---------------------------------------------------------------------------

func TestCustomerCancelInsideWindowRejected(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(10*time.Hour))
	e := newTestEngine(store)

	_, err := e.CustomerCancel(context.Background(), "cust-1", "bk-1")
	assert.ErrorIs(t, err, ErrCancellationWindow)
	assert.Equal(t, models.StatusPending, store.bookings["bk-1"].Status)
}

func TestCustomerCancelAtWindowBoundary(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	// Exactly 24h of notice is sufficient; strictly less is not.
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(24*time.Hour))
	e := newTestEngine(store)

	b, err := e.CustomerCancel(context.Background(), "cust-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
}

func TestCustomerCancelPaidFlagsRefund(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusConfirmed, models.PaymentPaid, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	b, err := e.CustomerCancel(context.Background(), "cust-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, b.Status)
	assert.Equal(t, models.PaymentRefundPending, b.PaymentStatus)

	stored := store.bookings["bk-1"]
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Equal(t, models.PaymentRefundPending, stored.PaymentStatus)
}

func TestCustomerCancelUnpaidKeepsPaymentStatus(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	b, err := e.CustomerCancel(context.Background(), "cust-1", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
}

// A failed refund flag must roll the status change back with it.
func TestCustomerCancelRefundAtomicity(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusConfirmed, models.PaymentPaid, baseTime.Add(72*time.Hour))
	store.paymentErr = errors.New("connection reset")
	e := newTestEngine(store)

	_, err := e.CustomerCancel(context.Background(), "cust-1", "bk-1")
	assert.Error(t, err)

	stored := store.bookings["bk-1"]
	assert.Equal(t, models.StatusConfirmed, stored.Status, "status write must roll back with the payment write")
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
}

func TestCustomerCancelNotOwner(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	seedBooking(store, models.StatusPending, models.PaymentPending, baseTime.Add(72*time.Hour))
	e := newTestEngine(store)

	_, err := e.CustomerCancel(context.Background(), "cust-2", "bk-1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.StatusPending, store.bookings["bk-1"].Status)
}

func TestCustomerCancelTerminalStates(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)
	ctx := context.Background()

	seedBooking(store, models.StatusCancelled, models.PaymentPending, baseTime.Add(72*time.Hour))
	_, err := e.CustomerCancel(ctx, "cust-1", "bk-1")
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	seedBooking(store, models.StatusCompleted, models.PaymentPaid, baseTime.Add(72*time.Hour))
	_, err = e.CustomerCancel(ctx, "cust-1", "bk-1")
	assert.ErrorIs(t, err, ErrTerminalState)
}

func TestCustomerCancelNotFound(t *testing.T) {
	store := newStubStore()
	seedCatalog(store)
	e := newTestEngine(store)

	_, err := e.CustomerCancel(context.Background(), "cust-1", "bk-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
