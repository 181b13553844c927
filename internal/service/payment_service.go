package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/metrics"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/notify"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	Amount   string `json:"amount"` // decimal string; "" resolves per the reconciler rules
	Method   string `json:"method" binding:"omitempty,oneof=TRANSFER CHEQUE CASH CARD OTHER"`
	PaidDate string `json:"paid_date"` // YYYY-MM-DD, defaults to today
	Note     string `json:"note"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	BoxID       string `json:"box_id"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	PaidDate    string `json:"paid_date"`
	AutoCreated bool   `json:"auto_created"`
	Voided      bool   `json:"voided"`
	VoidReason  string `json:"void_reason,omitempty"`
	Note        string `json:"note"`
	CreatedAt   string `json:"created_at"`
}

// ReconcileResult is the outcome of a payment mutation or recomputation.
// Overpayment is a warning for human reconciliation, never an error.
type ReconcileResult struct {
	BoxID          string  `json:"box_id"`
	PaidAmount     string  `json:"paid_amount"`
	TotalAmount    string  `json:"total_amount"`
	PaymentStatus  string  `json:"payment_status"`
	OverpaidAmount *string `json:"overpaid_amount,omitempty"`
	Skipped        bool    `json:"skipped"`
	SkipReason     string  `json:"skip_reason,omitempty"`
	Warning        string  `json:"warning,omitempty"`
}

// --- Interface ---

type PaymentService interface {
	RecordPayment(ctx context.Context, boxID, userID string, req RecordPaymentRequest) (ReconcileResult, error)
	RecordFromProof(ctx context.Context, boxID uuid.UUID, documentID, fileID uuid.UUID, method string) (ReconcileResult, error)
	VoidPayment(ctx context.Context, paymentID, userID, reason string) (ReconcileResult, error)
	RecalculateBoxPaymentStatus(ctx context.Context, boxID string) (ReconcileResult, error)
	ListPayments(ctx context.Context, boxID string) ([]PaymentResponse, error)
}

type paymentService struct {
	boxRepo     repository.BoxRepository
	paymentRepo repository.PaymentRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	boxService  BoxService
	hub         *notify.Hub
}

func NewPaymentService(
	boxRepo repository.BoxRepository,
	paymentRepo repository.PaymentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	boxService BoxService,
	hub *notify.Hub,
) PaymentService {
	return &paymentService{
		boxRepo:     boxRepo,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		boxService:  boxService,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *paymentService) RecordPayment(ctx context.Context, boxID, userID string, req RecordPaymentRequest) (ReconcileResult, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("invalid box id: %w", err)
	}

	var explicit *decimal.Decimal
	if req.Amount != "" {
		amt, parseErr := decimal.NewFromString(req.Amount)
		if parseErr != nil {
			return ReconcileResult{}, fmt.Errorf("invalid amount: %w", parseErr)
		}
		explicit = &amt
	}

	paidDate := time.Now()
	if req.PaidDate != "" {
		d, parseErr := time.Parse("2006-01-02", req.PaidDate)
		if parseErr != nil {
			return ReconcileResult{}, fmt.Errorf("invalid paid_date (expected YYYY-MM-DD): %w", parseErr)
		}
		paidDate = d
	}

	method := req.Method
	if method == "" {
		method = model.PaymentMethodTransfer
	}

	return s.record(ctx, id, parseUserID(userID), recordParams{
		explicit: explicit,
		method:   method,
		paidDate: paidDate,
		note:     req.Note,
	})
}

// RecordFromProof creates the automatic payment triggered by a payment-proof
// upload. On a multi-installment box the declared installment amount applies;
// otherwise the current shortfall.
func (s *paymentService) RecordFromProof(ctx context.Context, boxID uuid.UUID, documentID, fileID uuid.UUID, method string) (ReconcileResult, error) {
	if method == "" {
		method = model.PaymentMethodTransfer
	}
	return s.record(ctx, boxID, nil, recordParams{
		method:      method,
		paidDate:    time.Now(),
		autoCreated: true,
		sourceDoc:   &documentID,
		sourceFile:  &fileID,
	})
}

type recordParams struct {
	explicit    *decimal.Decimal
	method      string
	paidDate    time.Time
	note        string
	autoCreated bool
	sourceDoc   *uuid.UUID
	sourceFile  *uuid.UUID
}

// record runs the reconciliation algorithm: resolve target, resolve amount,
// no-op on non-positive resolutions, persist, then re-sum from the payment rows.
func (s *paymentService) record(ctx context.Context, boxID uuid.UUID, userID *uuid.UUID, p recordParams) (ReconcileResult, error) {
	var result ReconcileResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		box, findErr := s.boxRepo.FindByID(txCtx, boxID)
		if findErr != nil {
			return fmt.Errorf("box not found: %w", findErr)
		}

		// A box without a known total cannot be reconciled yet.
		if box.TotalAmount.LessThanOrEqual(decimal.Zero) {
			result = skippedResult(box, "box has no total amount yet")
			log.Info().Str("box_id", boxID.String()).Msg("payment skipped: unknown total")
			return nil
		}

		payments, listErr := s.paymentRepo.ListByBox(txCtx, boxID)
		if listErr != nil {
			return fmt.Errorf("failed to load payments: %w", listErr)
		}
		alreadyPaid := rules.SumPayments(payments)

		var installment *decimal.Decimal
		if p.autoCreated && box.InstallmentCount > 1 {
			installment = box.InstallmentAmount
		}

		amount := rules.ResolvePaymentAmount(p.explicit, installment, box.TotalAmount, alreadyPaid)
		if amount.LessThanOrEqual(decimal.Zero) {
			result = skippedResult(box, "resolved payment amount is not positive")
			log.Info().Str("box_id", boxID.String()).Str("amount", amount.String()).
				Msg("payment skipped: non-positive amount")
			return nil
		}

		payment := model.Payment{
			BoxID:            boxID,
			Amount:           amount,
			Method:           p.method,
			PaidDate:         p.paidDate,
			Note:             p.note,
			AutoCreated:      p.autoCreated,
			SourceDocumentID: p.sourceDoc,
			SourceFileID:     p.sourceFile,
		}
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to create payment: %w", createErr)
		}

		reconciled, recalcErr := s.recalculate(txCtx, box)
		if recalcErr != nil {
			return recalcErr
		}
		result = reconciled

		s.writeAudit(txCtx, userID, model.ActionRecordPayment, payment.ID.String(), box.Description,
			map[string]string{"amount": amount.StringFixed(2), "method": p.method, "status": result.PaymentStatus})
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if !result.Skipped {
		metrics.PaymentsRecorded.Inc()
		s.hub.Publish(notify.EventPaymentRecorded, boxID.String(), result)
		if result.OverpaidAmount != nil {
			metrics.PaymentsOverpaid.Inc()
			s.hub.Publish(notify.EventPaymentOverpaid, boxID.String(), result)
			log.Warn().Str("box_id", boxID.String()).Str("overpaid", *result.OverpaidAmount).
				Msg("box is overpaid")
		}
		// Payment status feeds the checklist's payment-proof flag.
		if _, _, refreshErr := s.boxService.RefreshChecklist(ctx, boxID); refreshErr != nil {
			log.Warn().Err(refreshErr).Str("box_id", boxID.String()).Msg("failed to refresh checklist after payment")
		}
	}
	return result, nil
}

func (s *paymentService) VoidPayment(ctx context.Context, paymentID, userID, reason string) (ReconcileResult, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("invalid payment id: %w", err)
	}

	var result ReconcileResult
	var boxID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		payment, findErr := s.paymentRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("payment not found: %w", findErr)
		}
		if payment.Voided {
			return fmt.Errorf("payment is already voided")
		}
		boxID = payment.BoxID

		payment.Voided = true
		payment.VoidReason = reason
		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to void payment: %w", updateErr)
		}

		box, findBoxErr := s.boxRepo.FindByID(txCtx, boxID)
		if findBoxErr != nil {
			return fmt.Errorf("box not found: %w", findBoxErr)
		}

		reconciled, recalcErr := s.recalculate(txCtx, box)
		if recalcErr != nil {
			return recalcErr
		}
		result = reconciled

		s.writeAudit(txCtx, parseUserID(userID), model.ActionVoidPayment, payment.ID.String(), reason, nil)
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if _, _, refreshErr := s.boxService.RefreshChecklist(ctx, boxID); refreshErr != nil {
		log.Warn().Err(refreshErr).Str("box_id", boxID.String()).Msg("failed to refresh checklist after void")
	}
	return result, nil
}

// RecalculateBoxPaymentStatus re-sums without adding a payment; the
// self-healing path after partial failures. Always safe, always idempotent.
func (s *paymentService) RecalculateBoxPaymentStatus(ctx context.Context, boxID string) (ReconcileResult, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("invalid box id: %w", err)
	}

	var result ReconcileResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		box, findErr := s.boxRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("box not found: %w", findErr)
		}
		reconciled, recalcErr := s.recalculate(txCtx, box)
		if recalcErr != nil {
			return recalcErr
		}
		result = reconciled
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return result, nil
}

func (s *paymentService) ListPayments(ctx context.Context, boxID string) ([]PaymentResponse, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return nil, fmt.Errorf("invalid box id: %w", err)
	}

	payments, err := s.paymentRepo.ListByBox(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, nil
}

// --- Helpers ---

// recalculate is the single write path for Box.PaidAmount and
// Box.PaymentStatus: always a full re-sum over the payment rows, never an
// in-place increment, so duplicate or out-of-order writes self-correct.
func (s *paymentService) recalculate(ctx context.Context, box *model.Box) (ReconcileResult, error) {
	payments, err := s.paymentRepo.ListByBox(ctx, box.ID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to load payments: %w", err)
	}

	paid := rules.SumPayments(payments)
	status := rules.DerivePaymentStatus(paid, box.TotalAmount)

	box.PaidAmount = paid
	box.PaymentStatus = status
	if box.PaidByEmployee && status == model.PaymentStatusPaid && box.ReimbursementStatus == nil {
		pending := model.ReimbursePending
		box.ReimbursementStatus = &pending
	}
	if err := s.boxRepo.Update(ctx, box); err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to store payment status: %w", err)
	}

	result := ReconcileResult{
		BoxID:         box.ID.String(),
		PaidAmount:    paid.StringFixed(2),
		TotalAmount:   box.TotalAmount.StringFixed(2),
		PaymentStatus: status,
	}
	if over := rules.OverpaidAmount(paid, box.TotalAmount); over.GreaterThan(decimal.Zero) {
		overStr := over.StringFixed(2)
		result.OverpaidAmount = &overStr
		result.Warning = fmt.Sprintf("box overpaid by %s", overStr)
	}
	return result, nil
}

func skippedResult(box *model.Box, reason string) ReconcileResult {
	return ReconcileResult{
		BoxID:         box.ID.String(),
		PaidAmount:    box.PaidAmount.StringFixed(2),
		TotalAmount:   box.TotalAmount.StringFixed(2),
		PaymentStatus: box.PaymentStatus,
		Skipped:       true,
		SkipReason:    reason,
	}
}

func (s *paymentService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		BoxID:       p.BoxID.String(),
		Amount:      p.Amount.StringFixed(2),
		Method:      p.Method,
		PaidDate:    p.PaidDate.Format("2006-01-02"),
		AutoCreated: p.AutoCreated,
		Voided:      p.Voided,
		VoidReason:  p.VoidReason,
		Note:        p.Note,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
