package payment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/booking"
	paymentRepo "github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/database/repository/payment"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/booking"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/services/gateway"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

var sessionNow = time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)

var (
	payOwner    = models.AuthContext{UserID: "cust-1", Role: models.RoleCustomer}
	payStranger = models.AuthContext{UserID: "cust-2", Role: models.RoleCustomer}
	payStaff    = models.AuthContext{UserID: "staff-1", Role: models.RoleStaff}
)

// memPayments mirrors the mongo repository: unique transaction ids and
// conditional status flips, so replayed webhooks surface as ErrWrongStatus.
type memPayments struct {
	mu    sync.Mutex
	items map[string]*models.Payment

	// dupFirst fails this many Creates with ErrDuplicateTransaction to
	// exercise the order-code retry loop.
	dupFirst int
}

func newMemPayments() *memPayments {
	return &memPayments{items: map[string]*models.Payment{}}
}

func (m *memPayments) add(p models.Payment) *models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := p
	m.items[p.ID] = &cp
	return &cp
}

func (m *memPayments) Create(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dupFirst > 0 {
		m.dupFirst--
		return paymentRepo.ErrDuplicateTransaction
	}
	for _, other := range m.items {
		if other.TransactionID == p.TransactionID {
			return paymentRepo.ErrDuplicateTransaction
		}
	}
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memPayments) AttachCheckout(ctx context.Context, id, checkoutURL, qrCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return paymentRepo.ErrNotFound
	}
	p.CheckoutURL = checkoutURL
	p.QRCode = qrCode
	return nil
}

func (m *memPayments) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, paymentRepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) GetByTransactionID(ctx context.Context, txID int64) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.TransactionID == txID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentRepo.ErrNotFound
}

func (m *memPayments) ListByBooking(ctx context.Context, bookingID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.items {
		if p.BookingID == bookingID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memPayments) FindPendingByKind(ctx context.Context, bookingID string, kind models.PaymentKind) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *models.Payment
	for _, p := range m.items {
		if p.BookingID != bookingID || p.Kind != kind || p.Status != models.PaymentPending {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	if newest == nil {
		return nil, paymentRepo.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *memPayments) SumPaidByBooking(ctx context.Context, bookingID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, p := range m.items {
		if p.BookingID == bookingID && p.Status == models.PaymentPaid {
			total += p.Amount
		}
	}
	return total, nil
}

func (m *memPayments) flip(id string, from models.PaymentStatus, mutate func(*models.Payment)) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, paymentRepo.ErrNotFound
	}
	if p.Status != from {
		return nil, paymentRepo.ErrWrongStatus
	}
	mutate(p)
	cp := *p
	return &cp, nil
}

func (m *memPayments) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*models.Payment, error) {
	return m.flip(id, models.PaymentPending, func(p *models.Payment) {
		p.Status = models.PaymentPaid
		p.PaidAt = &paidAt
	})
}

func (m *memPayments) MarkFailed(ctx context.Context, id string, failedAt time.Time) (*models.Payment, error) {
	return m.flip(id, models.PaymentPending, func(p *models.Payment) {
		p.Status = models.PaymentFailed
		p.FailedAt = &failedAt
	})
}

func (m *memPayments) MarkCancelled(ctx context.Context, id string) (*models.Payment, error) {
	return m.flip(id, models.PaymentPending, func(p *models.Payment) {
		p.Status = models.PaymentCancelled
	})
}

func (m *memPayments) MarkRefunded(ctx context.Context, id string, info models.RefundInfo) (*models.Payment, error) {
	return m.flip(id, models.PaymentPaid, func(p *models.Payment) {
		p.Status = models.PaymentRefunded
		p.Refund = &info
	})
}

func (m *memPayments) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.items {
		if p.Status == models.PaymentPending && p.ExpiresAt.Before(now) {
			p.Status = models.PaymentExpired
			n++
		}
	}
	return n, nil
}

// stubEngine covers the two engine methods the orchestrator calls; anything
// else panics via the embedded nil interface.
type stubEngine struct {
	booking.Engine
	bookings  map[string]*models.Booking
	confirmed []string
}

func (e *stubEngine) Get(ctx context.Context, auth models.AuthContext, id string) (*models.Booking, error) {
	b, ok := e.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	if !auth.IsStaff() && !auth.Owns(b.CustomerID) {
		return nil, booking.ErrNotYours
	}
	cp := *b
	return &cp, nil
}

func (e *stubEngine) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, ok := e.bookings[bookingID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	e.confirmed = append(e.confirmed, bookingID)
	b.Status = models.BookingConfirmed
	cp := *b
	return &cp, nil
}

type stubBookings struct {
	bookingRepo.BookingRepository
	items map[string]*models.Booking
}

func (s *stubBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := s.items[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

type stubGateway struct {
	createReqs []gateway.CreateLinkRequest
	createErr  error
	cancelled  []int64
	sigOK      bool
}

func (g *stubGateway) CreateLink(ctx context.Context, req gateway.CreateLinkRequest) (*gateway.CreateLinkResponse, error) {
	g.createReqs = append(g.createReqs, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &gateway.CreateLinkResponse{
		PaymentLinkID: fmt.Sprintf("plink-%d", req.OrderCode),
		CheckoutURL:   fmt.Sprintf("https://pay.test/%d", req.OrderCode),
		QRCode:        "qr-data",
	}, nil
}

func (g *stubGateway) CancelLink(ctx context.Context, orderCode int64, reason string) error {
	g.cancelled = append(g.cancelled, orderCode)
	return nil
}

func (g *stubGateway) VerifySignature(body []byte, signature string) bool { return g.sigOK }

type recorderNotify struct{ kinds []models.NotificationKind }

func (r *recorderNotify) Notify(ctx context.Context, userID string, kind models.NotificationKind, data map[string]any) {
	r.kinds = append(r.kinds, kind)
}

func (r *recorderNotify) count(kind models.NotificationKind) int {
	n := 0
	for _, k := range r.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

var (
	_ paymentRepo.PaymentRepository = (*memPayments)(nil)
	_ gateway.Client                = (*stubGateway)(nil)
)

type payFixture struct {
	payments *memPayments
	engine   *stubEngine
	gateway  *stubGateway
	notify   *recorderNotify
	orch     *DefaultOrchestrator
}

// newPayFixture wires the orchestrator against booking b-1: pending,
// deposit_30, final amount 1,000,000 VND. b-full pays in full at 500,000.
func newPayFixture() *payFixture {
	bookings := map[string]*models.Booking{
		"b-1": {
			ID:         "b-1",
			CustomerID: "cust-1",
			StudioID:   "studio-1",
			SlotID:     "slot-1",
			StartTime:  sessionNow.Add(28 * time.Hour),
			EndTime:    sessionNow.Add(30 * time.Hour),
			Status:     models.BookingPending,
			PayType:    models.PayDeposit30,
			Totals:     models.BookingTotals{BeforeDiscount: 1_000_000, FinalAmount: 1_000_000},
			Version:    1,
		},
		"b-full": {
			ID:         "b-full",
			CustomerID: "cust-1",
			StudioID:   "studio-1",
			SlotID:     "slot-2",
			StartTime:  sessionNow.Add(50 * time.Hour),
			EndTime:    sessionNow.Add(52 * time.Hour),
			Status:     models.BookingPending,
			PayType:    models.PayFull,
			Totals:     models.BookingTotals{BeforeDiscount: 500_000, FinalAmount: 500_000},
			Version:    1,
		},
	}
	engine := &stubEngine{bookings: bookings}
	payments := newMemPayments()
	gw := &stubGateway{sigOK: true}
	notify := &recorderNotify{}
	orch := NewDefaultOrchestrator(
		payments,
		&stubBookings{items: bookings},
		engine,
		gw,
		notify,
		utils.FixedClock{Instant: sessionNow},
	)
	return &payFixture{payments: payments, engine: engine, gateway: gw, notify: notify, orch: orch}
}

func (f *payFixture) seedPayment(id string, txID int64, kind models.PaymentKind, status models.PaymentStatus, amount int64, createdAt time.Time) *models.Payment {
	p := models.Payment{
		ID:            id,
		BookingID:     "b-1",
		Amount:        amount,
		Kind:          kind,
		Status:        status,
		TransactionID: txID,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(models.PaymentSessionTTL),
	}
	if status == models.PaymentPaid {
		paidAt := createdAt.Add(time.Minute)
		p.PaidAt = &paidAt
	}
	return f.payments.add(p)
}

func TestOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing paid yet offers deposit and full", func(t *testing.T) {
		f := newPayFixture()
		opts, err := f.orch.Options(ctx, payOwner, "b-1")
		require.NoError(t, err)
		require.Len(t, opts, 2)
		assert.Equal(t, models.PaymentOption{Kind: models.PaymentDeposit, Percentage: 30, Amount: 300_000}, opts[0])
		assert.Equal(t, models.PaymentOption{Kind: models.PaymentFull, Percentage: 100, Amount: 1_000_000}, opts[1])
	})

	t.Run("pay in full bookings get no deposit option", func(t *testing.T) {
		f := newPayFixture()
		opts, err := f.orch.Options(ctx, payOwner, "b-full")
		require.NoError(t, err)
		require.Len(t, opts, 1)
		assert.Equal(t, models.PaymentOption{Kind: models.PaymentFull, Percentage: 100, Amount: 500_000}, opts[0])
	})

	t.Run("after the deposit only the remainder is offered", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-dep", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))
		opts, err := f.orch.Options(ctx, payOwner, "b-1")
		require.NoError(t, err)
		require.Len(t, opts, 1)
		assert.Equal(t, models.PaymentOption{Kind: models.PaymentRemainder, Percentage: 70, Amount: 700_000}, opts[0])
	})

	t.Run("settled booking has nothing to offer", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-full", 5002, models.PaymentFull, models.PaymentPaid, 1_000_000, sessionNow.Add(-time.Hour))
		opts, err := f.orch.Options(ctx, payOwner, "b-1")
		require.NoError(t, err)
		assert.Empty(t, opts)
	})

	t.Run("terminal booking has nothing to offer", func(t *testing.T) {
		f := newPayFixture()
		f.engine.bookings["b-1"].Status = models.BookingCancelled
		opts, err := f.orch.Options(ctx, payOwner, "b-1")
		require.NoError(t, err)
		assert.Empty(t, opts)
	})

	t.Run("strangers cannot probe", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.Options(ctx, payStranger, "b-1")
		assert.ErrorIs(t, err, booking.ErrNotYours)
	})
}

func TestResolveSession(t *testing.T) {
	deposit30 := &models.Booking{PayType: models.PayDeposit30, Totals: models.BookingTotals{FinalAmount: 1_000_000}}
	payFull := &models.Booking{PayType: models.PayFull, Totals: models.BookingTotals{FinalAmount: 1_000_000}}

	cases := []struct {
		name       string
		b          *models.Booking
		req        models.CreatePaymentRequest
		paid       int64
		wantKind   models.PaymentKind
		wantPct    int
		wantAmount int64
		wantErr    error
		wantErrKnd utils.ErrorKind
	}{
		{
			name: "defaults to the deposit before any payment",
			b:    deposit30, paid: 0,
			wantKind: models.PaymentDeposit, wantPct: 30, wantAmount: 300_000,
		},
		{
			name: "defaults to the remainder once money landed",
			b:    deposit30, paid: 300_000,
			wantKind: models.PaymentRemainder, wantPct: 70, wantAmount: 700_000,
		},
		{
			name: "pay in full defaults to the full amount",
			b:    payFull, paid: 0,
			wantKind: models.PaymentFull, wantPct: 100, wantAmount: 1_000_000,
		},
		{
			name: "deposit percentage can be raised",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentDeposit, Percentage: 50},
			wantKind: models.PaymentDeposit, wantPct: 50, wantAmount: 500_000,
		},
		{
			name: "second deposit is a conflict",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentDeposit}, paid: 300_000,
			wantErrKnd: utils.KindConflict,
		},
		{
			name: "full payment after a partial is a conflict",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentFull}, paid: 300_000,
			wantErrKnd: utils.KindConflict,
		},
		{
			name: "remainder needs a settled deposit",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentRemainder}, paid: 0,
			wantErr: ErrNoDeposit,
		},
		{
			name: "hundred percent is not a deposit",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentDeposit, Percentage: 100},
			wantErrKnd: utils.KindValidation,
		},
		{
			name: "negative percentage is rejected",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: models.PaymentDeposit, Percentage: -5},
			wantErrKnd: utils.KindValidation,
		},
		{
			name: "unknown kind is rejected",
			b:    deposit30, req: models.CreatePaymentRequest{Kind: "tip"},
			wantErrKnd: utils.KindValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outstanding := tc.b.Totals.FinalAmount - tc.paid
			kind, pct, amount, err := resolveSession(tc.b, tc.req, tc.paid, outstanding)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			if tc.wantErrKnd != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErrKnd, utils.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantPct, pct)
			assert.Equal(t, tc.wantAmount, amount)
		})
	}
}

func TestCreateSession_MintsSessionAndCheckoutLink(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()

	p, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
	require.NoError(t, err)

	assert.Equal(t, "b-1", p.BookingID)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, models.PaymentDeposit, p.Kind)
	assert.Equal(t, int64(300_000), p.Amount)
	assert.Equal(t, 30, p.Percentage)
	assert.Positive(t, p.TransactionID)
	assert.Equal(t, sessionNow.Add(models.PaymentSessionTTL), p.ExpiresAt)

	require.Len(t, f.gateway.createReqs, 1)
	linkReq := f.gateway.createReqs[0]
	assert.Equal(t, p.TransactionID, linkReq.OrderCode)
	assert.Equal(t, int64(300_000), linkReq.Amount)
	assert.Equal(t, "Studio b-1", linkReq.Description)
	require.Len(t, linkReq.Items, 1)
	assert.Equal(t, int64(300_000), linkReq.Items[0].Price)

	// The checkout handle is on the response and persisted on the doc.
	assert.Equal(t, fmt.Sprintf("https://pay.test/%d", p.TransactionID), p.CheckoutURL)
	stored, err := f.payments.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.CheckoutURL, stored.CheckoutURL)
	assert.Equal(t, "qr-data", stored.QRCode)
}

func TestCreateSession_ReusesLivePendingSession(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()

	first, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
	require.NoError(t, err)
	second, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.gateway.createReqs, 1, "a live session must not mint a second link")
}

func TestCreateSession_RetiresDeadSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("expired session is cancelled and replaced", func(t *testing.T) {
		f := newPayFixture()
		stale := f.seedPayment("p-old", 111, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow.Add(-20*time.Minute))

		p, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
		require.NoError(t, err)
		assert.NotEqual(t, stale.ID, p.ID)

		old, err := f.payments.GetByID(ctx, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCancelled, old.Status)
		assert.Equal(t, []int64{111}, f.gateway.cancelled, "the stale checkout link must be voided")
	})

	t.Run("mispriced session is replaced even while live", func(t *testing.T) {
		f := newPayFixture()
		// Amount no longer matches the booking's 30% deposit.
		stale := f.seedPayment("p-old", 112, models.PaymentDeposit, models.PaymentPending, 250_000, sessionNow.Add(-5*time.Minute))

		p, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
		require.NoError(t, err)
		assert.NotEqual(t, stale.ID, p.ID)
		assert.Equal(t, int64(300_000), p.Amount)

		old, err := f.payments.GetByID(ctx, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentCancelled, old.Status)
	})
}

func TestCreateSession_GatewayFailureCancelsSession(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.gateway.createErr = utils.NewError(utils.KindGateway, "GATEWAY_REJECTED", "gateway rejected the request")

	_, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
	require.Error(t, err)
	assert.Equal(t, utils.KindGateway, utils.KindOf(err))

	// The orphaned session must not stay payable.
	list, err := f.payments.ListByBooking(ctx, "b-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.PaymentCancelled, list[0].Status)
}

func TestCreateSession_RegeneratesCollidingOrderCodes(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.payments.dupFirst = 2

	p, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{Kind: models.PaymentDeposit})
	require.NoError(t, err)
	assert.Positive(t, p.TransactionID)

	list, err := f.payments.ListByBooking(ctx, "b-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateSession_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("terminal booking", func(t *testing.T) {
		f := newPayFixture()
		f.engine.bookings["b-1"].Status = models.BookingCancelled
		_, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{})
		assert.ErrorIs(t, err, ErrBookingClosed)
	})

	t.Run("fully paid booking", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-full", 5003, models.PaymentFull, models.PaymentPaid, 1_000_000, sessionNow.Add(-time.Hour))
		_, err := f.orch.CreateSession(ctx, payOwner, "b-1", models.CreatePaymentRequest{})
		assert.ErrorIs(t, err, ErrAlreadySettled)
	})

	t.Run("stranger", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.CreateSession(ctx, payStranger, "b-1", models.CreatePaymentRequest{})
		assert.ErrorIs(t, err, booking.ErrNotYours)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.CreateSession(ctx, payOwner, "ghost", models.CreatePaymentRequest{})
		assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	})
}

func TestCreateRemainderSession(t *testing.T) {
	ctx := context.Background()

	t.Run("covers everything still owed", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-dep", 5004, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))

		p, err := f.orch.CreateRemainderSession(ctx, payOwner, "b-1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRemainder, p.Kind)
		assert.Equal(t, int64(700_000), p.Amount)
		assert.Equal(t, 70, p.Percentage)
	})

	t.Run("rejected before any deposit settles", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.CreateRemainderSession(ctx, payOwner, "b-1")
		assert.ErrorIs(t, err, ErrNoDeposit)
	})
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("live session reads back as pending", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5005, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow.Add(-5*time.Minute))
		p, err := f.orch.GetStatus(ctx, payOwner, "p-1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, p.Status)
	})

	t.Run("overdue session presents as expired before the sweep runs", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5006, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow.Add(-time.Hour))
		p, err := f.orch.GetStatus(ctx, payOwner, "p-1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentExpired, p.Status)

		stored, err := f.payments.GetByID(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, stored.Status, "GetStatus must not mutate the doc")
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.GetStatus(ctx, payOwner, "ghost")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("strangers are walled off via the booking", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5007, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow)
		_, err := f.orch.GetStatus(ctx, payStranger, "p-1")
		assert.ErrorIs(t, err, booking.ErrNotYours)
	})
}

func TestListForBooking(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.seedPayment("p-old", 5008, models.PaymentDeposit, models.PaymentFailed, 300_000, sessionNow.Add(-2*time.Hour))
	f.seedPayment("p-new", 5009, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))

	list, err := f.orch.ListForBooking(ctx, payOwner, "b-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p-new", list[0].ID, "newest first")

	_, err = f.orch.ListForBooking(ctx, payStranger, "b-1")
	assert.ErrorIs(t, err, booking.ErrNotYours)
}

func TestSweepExpired(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.seedPayment("p-dead-1", 6001, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow.Add(-time.Hour))
	f.seedPayment("p-dead-2", 6002, models.PaymentFull, models.PaymentPending, 1_000_000, sessionNow.Add(-16*time.Minute))
	f.seedPayment("p-live", 6003, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow.Add(-5*time.Minute))
	f.seedPayment("p-paid", 6004, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))

	n, err := f.orch.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for id, want := range map[string]models.PaymentStatus{
		"p-dead-1": models.PaymentExpired,
		"p-dead-2": models.PaymentExpired,
		"p-live":   models.PaymentPending,
		"p-paid":   models.PaymentPaid,
	} {
		p, err := f.payments.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, p.Status, id)
	}
}
