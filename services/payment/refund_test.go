package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/models"
	"github.com/datquang03/StudioForRent-FA25SE219-BE-sub001/utils"
)

func TestRequestRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("staff refund a paid payment in full", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))

		p, err := f.orch.RequestRefund(ctx, payStaff, "p-1", "double charge")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRefunded, p.Status)
		require.NotNil(t, p.Refund)
		assert.Equal(t, int64(300_000), p.Refund.Amount)
		assert.Equal(t, "double charge", p.Refund.Reason)
		assert.Equal(t, sessionNow, p.Refund.RefundedAt)
		assert.Equal(t, 1, f.notify.count(models.NotifyRefundIssued))
	})

	t.Run("customers cannot issue refunds", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow)
		_, err := f.orch.RequestRefund(ctx, payOwner, "p-1", "please")
		assert.Equal(t, utils.KindForbidden, utils.KindOf(err))
	})

	t.Run("only paid payments are refundable", func(t *testing.T) {
		f := newPayFixture()
		f.seedPayment("p-1", 5001, models.PaymentDeposit, models.PaymentPending, 300_000, sessionNow)
		_, err := f.orch.RequestRefund(ctx, payStaff, "p-1", "not settled yet")
		assert.ErrorIs(t, err, ErrNotRefundable)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newPayFixture()
		_, err := f.orch.RequestRefund(ctx, payStaff, "ghost", "whatever")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestRefundForBooking_ChunksNewestFirst(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.seedPayment("p-dep", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-3*time.Hour))
	f.seedPayment("p-rem", 5002, models.PaymentRemainder, models.PaymentPaid, 700_000, sessionNow.Add(-time.Hour))
	f.seedPayment("p-open", 5003, models.PaymentFine, models.PaymentPending, 100_000, sessionNow)

	require.NoError(t, f.orch.RefundForBooking(ctx, "b-1", 800_000, "cancelled 72h ahead"))

	// The newest paid payment absorbs 700k, the older one the remaining 100k.
	rem, err := f.payments.GetByID(ctx, "p-rem")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, rem.Status)
	assert.Equal(t, int64(700_000), rem.Refund.Amount)

	dep, err := f.payments.GetByID(ctx, "p-dep")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, dep.Status)
	assert.Equal(t, int64(100_000), dep.Refund.Amount)

	open, err := f.payments.GetByID(ctx, "p-open")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, open.Status, "pending sessions hold no money to refund")
}

func TestRefundForBooking_ShortBalanceIsAnError(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.seedPayment("p-dep", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow.Add(-time.Hour))

	err := f.orch.RefundForBooking(ctx, "b-1", 500_000, "cancelled")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short by 200000")

	// What could be refunded, was.
	dep, getErr := f.payments.GetByID(ctx, "p-dep")
	require.NoError(t, getErr)
	assert.Equal(t, models.PaymentRefunded, dep.Status)
	assert.Equal(t, int64(300_000), dep.Refund.Amount)
}

func TestRefundForBooking_NonPositiveAmountIsANoop(t *testing.T) {
	f := newPayFixture()
	ctx := context.Background()
	f.seedPayment("p-dep", 5001, models.PaymentDeposit, models.PaymentPaid, 300_000, sessionNow)

	require.NoError(t, f.orch.RefundForBooking(ctx, "b-1", 0, "nothing owed"))
	require.NoError(t, f.orch.RefundForBooking(ctx, "b-1", -50, "negative"))

	dep, err := f.payments.GetByID(ctx, "p-dep")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, dep.Status)
}
