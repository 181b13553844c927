package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/notify"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeBoxRepo struct {
	boxes map[uuid.UUID]*model.Box
}

func newFakeBoxRepo() *fakeBoxRepo {
	return &fakeBoxRepo{boxes: map[uuid.UUID]*model.Box{}}
}

func (f *fakeBoxRepo) Create(ctx context.Context, box *model.Box) error {
	if box.ID == uuid.Nil {
		box.ID = uuid.New()
	}
	f.boxes[box.ID] = box
	return nil
}

func (f *fakeBoxRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Box, error) {
	box, ok := f.boxes[id]
	if !ok {
		return nil, fmt.Errorf("box %s not found", id)
	}
	copied := *box
	return &copied, nil
}

func (f *fakeBoxRepo) FindByIDWithDocuments(ctx context.Context, id uuid.UUID) (*model.Box, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeBoxRepo) List(ctx context.Context, filter repository.BoxFilter, page, limit int) ([]model.Box, int64, error) {
	var out []model.Box
	for _, b := range f.boxes {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBoxRepo) ListPending(ctx context.Context, boxType string) ([]model.Box, error) {
	return nil, nil
}

func (f *fakeBoxRepo) Update(ctx context.Context, box *model.Box) error {
	copied := *box
	f.boxes[box.ID] = &copied
	return nil
}

func (f *fakeBoxRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.boxes, id)
	return nil
}

type fakePaymentRepo struct {
	payments map[uuid.UUID]*model.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uuid.UUID]*model.Payment{}}
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment *model.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

func (f *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s not found", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentRepo) ListByBox(ctx context.Context, boxID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range f.payments {
		if p.BoxID == boxID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Update(ctx context.Context, payment *model.Payment) error {
	copied := *payment
	f.payments[payment.ID] = &copied
	return nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

// fakeBoxService only tracks checklist refreshes; the rest is unused by the
// payment paths under test.
type fakeBoxService struct {
	refreshed []uuid.UUID
}

func (f *fakeBoxService) CreateBox(ctx context.Context, userID string, req CreateBoxRequest) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) GetBox(ctx context.Context, id string) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) ListBoxes(ctx context.Context, filter repository.BoxFilter, page, limit int) ([]BoxResponse, int64, error) {
	return nil, 0, nil
}
func (f *fakeBoxService) UpdateBoxConfig(ctx context.Context, id, userID string, req UpdateBoxConfigRequest) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) SetNotApplicable(ctx context.Context, id, userID string, requirementIDs []string) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) SubmitBox(ctx context.Context, id, userID string) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) ReviewBox(ctx context.Context, id, userID string, req ReviewBoxRequest) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) DeleteBox(ctx context.Context, id, userID string) error { return nil }
func (f *fakeBoxService) MarkReimbursed(ctx context.Context, id, userID string) (BoxResponse, error) {
	return BoxResponse{}, nil
}
func (f *fakeBoxService) GetChecklist(ctx context.Context, id string) (rules.Checklist, error) {
	return rules.Checklist{}, nil
}
func (f *fakeBoxService) RefreshChecklist(ctx context.Context, boxID uuid.UUID) (*model.Box, rules.Checklist, error) {
	f.refreshed = append(f.refreshed, boxID)
	return &model.Box{ID: boxID}, rules.Checklist{}, nil
}

// --- Fixture ---

type paymentFixture struct {
	svc         PaymentService
	boxRepo     *fakeBoxRepo
	paymentRepo *fakePaymentRepo
	boxService  *fakeBoxService
}

func newPaymentFixture() *paymentFixture {
	boxRepo := newFakeBoxRepo()
	paymentRepo := newFakePaymentRepo()
	boxService := &fakeBoxService{}
	svc := NewPaymentService(boxRepo, paymentRepo, &fakeAuditRepo{}, &fakeTxManager{}, boxService, notify.NewHub())
	return &paymentFixture{svc: svc, boxRepo: boxRepo, paymentRepo: paymentRepo, boxService: boxService}
}

func (fx *paymentFixture) addBox(t *testing.T, total string, mutate func(*model.Box)) uuid.UUID {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	if err != nil {
		t.Fatal(err)
	}
	box := &model.Box{
		ID:            uuid.New(),
		BoxType:       model.BoxTypeExpense,
		Status:        model.BoxStatusDraft,
		PaymentStatus: model.PaymentStatusUnpaid,
		TotalAmount:   amount,
	}
	if mutate != nil {
		mutate(box)
	}
	if err := fx.boxRepo.Create(context.Background(), box); err != nil {
		t.Fatal(err)
	}
	return box.ID
}

// --- Tests ---

func TestRecordPaymentExplicitAmount(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "1070.00", nil)

	result, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "535.00"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped {
		t.Fatalf("unexpectedly skipped: %s", result.SkipReason)
	}
	if result.PaymentStatus != model.PaymentStatusPartial {
		t.Fatalf("status = %s, want %s", result.PaymentStatus, model.PaymentStatusPartial)
	}
	if result.PaidAmount != "535.00" {
		t.Fatalf("paid = %s, want 535.00", result.PaidAmount)
	}

	// Second installment settles the box exactly.
	result, err = fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "535.00"})
	if err != nil {
		t.Fatal(err)
	}
	if result.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("status = %s, want %s", result.PaymentStatus, model.PaymentStatusPaid)
	}
	if result.OverpaidAmount != nil {
		t.Fatalf("exact settlement reported overpaid %s", *result.OverpaidAmount)
	}
	if len(fx.boxService.refreshed) != 2 {
		t.Fatalf("checklist refreshed %d times, want 2", len(fx.boxService.refreshed))
	}
}

func TestRecordPaymentSkipsUnknownTotal(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "0", nil)

	result, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "535.00"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Skipped {
		t.Fatal("payment on a box without total must be skipped")
	}
	payments, _ := fx.paymentRepo.ListByBox(context.Background(), boxID)
	if len(payments) != 0 {
		t.Fatalf("skipped payment must not persist, found %d rows", len(payments))
	}
	if len(fx.boxService.refreshed) != 0 {
		t.Fatal("skipped payment must not refresh the checklist")
	}
}

func TestRecordPaymentDefaultsToShortfall(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "1070.00", nil)

	if _, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "70.00"}); err != nil {
		t.Fatal(err)
	}

	// No amount given: the shortfall of 1000.00 is recorded.
	result, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if result.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("status = %s, want %s", result.PaymentStatus, model.PaymentStatusPaid)
	}

	// Already settled: the next no-amount request resolves to zero and skips.
	result, err = fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Skipped {
		t.Fatal("settled box must skip a no-amount payment")
	}
}

func TestRecordFromProofUsesInstallmentAmount(t *testing.T) {
	fx := newPaymentFixture()
	installment := decimal.RequireFromString("356.67")
	boxID := fx.addBox(t, "1070.00", func(b *model.Box) {
		b.InstallmentCount = 3
		b.InstallmentAmount = &installment
	})

	result, err := fx.svc.RecordFromProof(context.Background(), boxID, uuid.New(), uuid.New(), model.PaymentMethodTransfer)
	if err != nil {
		t.Fatal(err)
	}
	if result.PaidAmount != "356.67" {
		t.Fatalf("paid = %s, want the installment amount 356.67", result.PaidAmount)
	}
	if result.PaymentStatus != model.PaymentStatusPartial {
		t.Fatalf("status = %s, want %s", result.PaymentStatus, model.PaymentStatusPartial)
	}

	payments, _ := fx.paymentRepo.ListByBox(context.Background(), boxID)
	if len(payments) != 1 || !payments[0].AutoCreated {
		t.Fatalf("want one auto-created payment, got %+v", payments)
	}
}

func TestOverpaymentIsWarningNotError(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "1000.00", nil)

	for i := 0; i < 2; i++ {
		if _, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "600.00"}); err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}

	result, err := fx.svc.RecalculateBoxPaymentStatus(context.Background(), boxID.String())
	if err != nil {
		t.Fatal(err)
	}
	if result.PaymentStatus != model.PaymentStatusOverpaid {
		t.Fatalf("status = %s, want %s", result.PaymentStatus, model.PaymentStatusOverpaid)
	}
	if result.OverpaidAmount == nil || *result.OverpaidAmount != "200.00" {
		t.Fatalf("overpaid = %v, want 200.00", result.OverpaidAmount)
	}
	if result.Warning == "" {
		t.Fatal("overpayment must surface a warning")
	}
}

func TestVoidPaymentRestoresStatus(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "1070.00", nil)

	if _, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "1070.00", Note: "invoice 42"}); err != nil {
		t.Fatal(err)
	}

	payments, _ := fx.paymentRepo.ListByBox(context.Background(), boxID)
	if len(payments) != 1 {
		t.Fatalf("want one payment, got %d", len(payments))
	}

	result, err := fx.svc.VoidPayment(context.Background(), payments[0].ID.String(), "", "duplicate slip")
	if err != nil {
		t.Fatal(err)
	}
	if result.PaymentStatus != model.PaymentStatusUnpaid {
		t.Fatalf("status after void = %s, want %s", result.PaymentStatus, model.PaymentStatusUnpaid)
	}
	if result.PaidAmount != "0.00" {
		t.Fatalf("paid after void = %s, want 0.00", result.PaidAmount)
	}

	// The original note survives; the reason lands in its own field.
	voided, err := fx.paymentRepo.FindByID(context.Background(), payments[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if voided.Note != "invoice 42" {
		t.Fatalf("note after void = %q, want the original note", voided.Note)
	}
	if voided.VoidReason != "duplicate slip" {
		t.Fatalf("void reason = %q, want %q", voided.VoidReason, "duplicate slip")
	}

	// Voiding twice is an error.
	if _, err := fx.svc.VoidPayment(context.Background(), payments[0].ID.String(), "", ""); err == nil {
		t.Fatal("second void must fail")
	}
}

func TestRecalculateIsIdempotent(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "1070.00", nil)

	if _, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "535.00"}); err != nil {
		t.Fatal(err)
	}

	first, err := fx.svc.RecalculateBoxPaymentStatus(context.Background(), boxID.String())
	if err != nil {
		t.Fatal(err)
	}
	second, err := fx.svc.RecalculateBoxPaymentStatus(context.Background(), boxID.String())
	if err != nil {
		t.Fatal(err)
	}
	if first.PaidAmount != second.PaidAmount || first.PaymentStatus != second.PaymentStatus {
		t.Fatalf("recalculate diverged: %+v vs %+v", first, second)
	}
}

func TestPaidEmployeeBoxFlagsReimbursement(t *testing.T) {
	fx := newPaymentFixture()
	boxID := fx.addBox(t, "500.00", func(b *model.Box) {
		b.PaidByEmployee = true
	})

	if _, err := fx.svc.RecordPayment(context.Background(), boxID.String(), "", RecordPaymentRequest{Amount: "500.00"}); err != nil {
		t.Fatal(err)
	}

	box, err := fx.boxRepo.FindByID(context.Background(), boxID)
	if err != nil {
		t.Fatal(err)
	}
	if box.ReimbursementStatus == nil || *box.ReimbursementStatus != model.ReimbursePending {
		t.Fatalf("reimbursement status = %v, want %s", box.ReimbursementStatus, model.ReimbursePending)
	}
}
