package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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

type CreateBoxRequest struct {
	BoxType     string  `json:"box_type" binding:"required,oneof=EXPENSE INCOME"`
	ExpenseType *string `json:"expense_type" binding:"omitempty,oneof=STANDARD NO_VAT FOREIGN"`

	HasVat  bool   `json:"has_vat"`
	HasWht  bool   `json:"has_wht"`
	WhtRate string `json:"wht_rate"` // decimal string, required when has_wht

	TotalAmount       string  `json:"total_amount"` // decimal string, "" = unknown yet
	InstallmentCount  int     `json:"installment_count"`
	InstallmentAmount *string `json:"installment_amount"`

	ContactID      string `json:"contact_id"`
	ContactName    string `json:"contact_name"`
	Description    string `json:"description"`
	DocumentDate   string `json:"document_date"` // YYYY-MM-DD
	DocumentNumber string `json:"document_number"`

	PaidByEmployee bool `json:"paid_by_employee"`

	// Set by the caller when the inbox matcher suggested adding to an existing
	// box but the user chose to create anyway.
	PossibleDuplicate bool   `json:"possible_duplicate"`
	DuplicateReason   string `json:"duplicate_reason"`
}

type UpdateBoxConfigRequest struct {
	ExpenseType *string `json:"expense_type" binding:"omitempty,oneof=STANDARD NO_VAT FOREIGN"`
	HasVat      *bool   `json:"has_vat"`
	HasWht      *bool   `json:"has_wht"`
	WhtRate     *string `json:"wht_rate"`
	TotalAmount *string `json:"total_amount"`
	Description *string `json:"description"`
}

type ReviewBoxRequest struct {
	Action string `json:"action" binding:"required,oneof=approve need_info reject"`
	Note   string `json:"note"`
}

type BoxResponse struct {
	ID                  string           `json:"id"`
	BoxType             string           `json:"box_type"`
	ExpenseType         *string          `json:"expense_type"`
	HasVat              bool             `json:"has_vat"`
	HasWht              bool             `json:"has_wht"`
	WhtRate             string           `json:"wht_rate"`
	TotalAmount         string           `json:"total_amount"`
	PaidAmount          string           `json:"paid_amount"`
	Status              string           `json:"status"`
	PaymentStatus       string           `json:"payment_status"`
	VatDocStatus        string           `json:"vat_doc_status"`
	WhtDocStatus        string           `json:"wht_doc_status"`
	CompletionPercent   int              `json:"completion_percent"`
	PossibleDuplicate   bool             `json:"possible_duplicate"`
	DuplicateReason     string           `json:"duplicate_reason,omitempty"`
	PaidByEmployee      bool             `json:"paid_by_employee"`
	ReimbursementStatus *string          `json:"reimbursement_status"`
	ContactID           *string          `json:"contact_id"`
	ContactName         string           `json:"contact_name"`
	Description         string           `json:"description"`
	DocumentDate        *string          `json:"document_date"`
	DocumentNumber      string           `json:"document_number"`
	Checklist           *rules.Checklist `json:"checklist,omitempty"`
	Warning             string           `json:"warning,omitempty"`
	CreatedAt           string           `json:"created_at"`
}

// --- Interface ---

type BoxService interface {
	CreateBox(ctx context.Context, userID string, req CreateBoxRequest) (BoxResponse, error)
	GetBox(ctx context.Context, id string) (BoxResponse, error)
	ListBoxes(ctx context.Context, filter repository.BoxFilter, page, limit int) ([]BoxResponse, int64, error)
	UpdateBoxConfig(ctx context.Context, id, userID string, req UpdateBoxConfigRequest) (BoxResponse, error)
	SetNotApplicable(ctx context.Context, id, userID string, requirementIDs []string) (BoxResponse, error)
	SubmitBox(ctx context.Context, id, userID string) (BoxResponse, error)
	ReviewBox(ctx context.Context, id, userID string, req ReviewBoxRequest) (BoxResponse, error)
	DeleteBox(ctx context.Context, id, userID string) error
	MarkReimbursed(ctx context.Context, id, userID string) (BoxResponse, error)
	GetChecklist(ctx context.Context, id string) (rules.Checklist, error)
	RefreshChecklist(ctx context.Context, boxID uuid.UUID) (*model.Box, rules.Checklist, error)
}

type boxService struct {
	boxRepo   repository.BoxRepository
	docRepo   repository.DocumentRepository
	whtRepo   repository.WhtRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	catalog   rules.Catalog
	hub       *notify.Hub
}

func NewBoxService(
	boxRepo repository.BoxRepository,
	docRepo repository.DocumentRepository,
	whtRepo repository.WhtRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	catalog rules.Catalog,
	hub *notify.Hub,
) BoxService {
	return &boxService{
		boxRepo:   boxRepo,
		docRepo:   docRepo,
		whtRepo:   whtRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		catalog:   catalog,
		hub:       hub,
	}
}

// --- Implementation ---

func (s *boxService) CreateBox(ctx context.Context, userID string, req CreateBoxRequest) (BoxResponse, error) {
	box := model.Box{
		BoxType:           req.BoxType,
		ExpenseType:       req.ExpenseType,
		HasVat:            req.HasVat,
		HasWht:            req.HasWht,
		Status:            model.BoxStatusDraft,
		PaymentStatus:     model.PaymentStatusUnpaid,
		VatDocStatus:      model.VatDocPending,
		WhtDocStatus:      model.WhtDocPending,
		ContactName:       req.ContactName,
		Description:       req.Description,
		DocumentNumber:    req.DocumentNumber,
		PaidByEmployee:    req.PaidByEmployee,
		PossibleDuplicate: req.PossibleDuplicate,
		DuplicateReason:   req.DuplicateReason,
		InstallmentCount:  req.InstallmentCount,
	}
	if box.InstallmentCount < 1 {
		box.InstallmentCount = 1
	}
	if !req.HasVat {
		box.VatDocStatus = model.VatDocNA
	}
	if !req.HasWht {
		box.WhtDocStatus = model.WhtDocNA
	}

	if req.TotalAmount != "" {
		total, err := decimal.NewFromString(req.TotalAmount)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("invalid total_amount: %w", err)
		}
		box.TotalAmount = total
	}
	if req.HasWht {
		if req.WhtRate == "" {
			return BoxResponse{}, fmt.Errorf("wht_rate is required when has_wht is true")
		}
		rate, err := decimal.NewFromString(req.WhtRate)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("invalid wht_rate: %w", err)
		}
		box.WhtRate = rate
	}
	if req.InstallmentAmount != nil && *req.InstallmentAmount != "" {
		amt, err := decimal.NewFromString(*req.InstallmentAmount)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("invalid installment_amount: %w", err)
		}
		box.InstallmentAmount = &amt
	}
	if req.ContactID != "" {
		parsed, err := uuid.Parse(req.ContactID)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("invalid contact_id: %w", err)
		}
		box.ContactID = &parsed
	}
	if req.DocumentDate != "" {
		d, err := time.Parse("2006-01-02", req.DocumentDate)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("invalid document_date (expected YYYY-MM-DD): %w", err)
		}
		box.DocumentDate = &d
	}
	if req.PaidByEmployee {
		pending := model.ReimbursePending
		box.ReimbursementStatus = &pending
	}

	userUUID := parseUserID(userID)

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.boxRepo.Create(txCtx, &box); createErr != nil {
			return fmt.Errorf("failed to create box: %w", createErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionCreateBox, box.ID.String(), req.Description, req)
		return nil
	})
	if err != nil {
		return BoxResponse{}, err
	}

	// Checklist starts from the declared configuration alone.
	_, checklist, err := s.RefreshChecklist(ctx, box.ID)
	if err != nil {
		return BoxResponse{}, err
	}
	box.CompletionPercent = checklist.CompletionPercent

	resp := toBoxResponse(box)
	resp.Checklist = &checklist
	return resp, nil
}

func (s *boxService) GetBox(ctx context.Context, id string) (BoxResponse, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByIDWithDocuments(ctx, boxID)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("box not found: %w", err)
	}

	checklist, err := s.evaluate(ctx, box)
	if err != nil {
		return BoxResponse{}, err
	}

	resp := toBoxResponse(*box)
	resp.Checklist = &checklist
	return resp, nil
}

func (s *boxService) ListBoxes(ctx context.Context, filter repository.BoxFilter, page, limit int) ([]BoxResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	boxes, total, err := s.boxRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch boxes: %w", err)
	}

	result := make([]BoxResponse, 0, len(boxes))
	for _, b := range boxes {
		result = append(result, toBoxResponse(b))
	}
	return result, total, nil
}

func (s *boxService) UpdateBoxConfig(ctx context.Context, id, userID string, req UpdateBoxConfigRequest) (BoxResponse, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("box not found: %w", err)
	}
	if rules.IsTerminalStatus(box.Status) {
		return BoxResponse{}, rules.NewInvalidTransition("box", box.Status, "update_config")
	}

	if req.ExpenseType != nil {
		box.ExpenseType = req.ExpenseType
	}
	if req.HasVat != nil {
		box.HasVat = *req.HasVat
		if box.HasVat && box.VatDocStatus == model.VatDocNA {
			box.VatDocStatus = model.VatDocPending
		}
		if !box.HasVat {
			box.VatDocStatus = model.VatDocNA
		}
	}
	if req.HasWht != nil {
		box.HasWht = *req.HasWht
		if box.HasWht && box.WhtDocStatus == model.WhtDocNA {
			box.WhtDocStatus = model.WhtDocPending
		}
		if !box.HasWht {
			box.WhtDocStatus = model.WhtDocNA
		}
	}
	if req.WhtRate != nil {
		rate, parseErr := decimal.NewFromString(*req.WhtRate)
		if parseErr != nil {
			return BoxResponse{}, fmt.Errorf("invalid wht_rate: %w", parseErr)
		}
		box.WhtRate = rate
	}
	totalChanged := false
	if req.TotalAmount != nil {
		total, parseErr := decimal.NewFromString(*req.TotalAmount)
		if parseErr != nil {
			return BoxResponse{}, fmt.Errorf("invalid total_amount: %w", parseErr)
		}
		totalChanged = !box.TotalAmount.Equal(total)
		box.TotalAmount = total
	}
	if req.Description != nil {
		box.Description = *req.Description
	}

	userUUID := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Payment status is a projection of the payment rows against the total;
		// a corrected total invalidates it, so re-derive before persisting.
		if totalChanged {
			payments, payErr := s.paymentsOf(txCtx, box.ID)
			if payErr != nil {
				return payErr
			}
			box.PaidAmount = rules.SumPayments(payments)
			box.PaymentStatus = rules.DerivePaymentStatus(box.PaidAmount, box.TotalAmount)
		}
		if updateErr := s.boxRepo.Update(txCtx, box); updateErr != nil {
			return fmt.Errorf("failed to update box: %w", updateErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionUpdateBoxConfig, box.ID.String(), box.Description, req)
		return nil
	})
	if err != nil {
		return BoxResponse{}, err
	}

	return s.refreshed(ctx, box.ID)
}

func (s *boxService) SetNotApplicable(ctx context.Context, id, userID string, requirementIDs []string) (BoxResponse, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("box not found: %w", err)
	}
	if rules.IsTerminalStatus(box.Status) {
		return BoxResponse{}, rules.NewInvalidTransition("box", box.Status, "set_not_applicable")
	}

	box.NADocTypes = strings.Join(requirementIDs, ",")

	userUUID := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.boxRepo.Update(txCtx, box); updateErr != nil {
			return fmt.Errorf("failed to update box: %w", updateErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionUpdateBoxConfig, box.ID.String(), box.Description,
			map[string]interface{}{"na_requirements": requirementIDs})
		return nil
	})
	if err != nil {
		return BoxResponse{}, err
	}

	return s.refreshed(ctx, box.ID)
}

func (s *boxService) SubmitBox(ctx context.Context, id, userID string) (BoxResponse, error) {
	return s.applyAction(ctx, id, userID, rules.ActionSubmit, "")
}

func (s *boxService) ReviewBox(ctx context.Context, id, userID string, req ReviewBoxRequest) (BoxResponse, error) {
	return s.applyAction(ctx, id, userID, req.Action, req.Note)
}

// applyAction runs one explicit lifecycle action through the state machine,
// persists the result, and emits the matching event.
func (s *boxService) applyAction(ctx context.Context, id, userID, action, note string) (BoxResponse, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("box not found: %w", err)
	}

	next, err := rules.Transition(box.Status, action)
	if err != nil {
		return BoxResponse{}, err
	}

	now := time.Now()
	box.Status = next
	switch next {
	case model.BoxStatusPending:
		if box.SubmittedAt == nil {
			box.SubmittedAt = &now
		}
	case model.BoxStatusCompleted:
		box.CompletedAt = &now
	}

	userUUID := parseUserID(userID)
	auditAction := model.ActionSubmitBox
	if action != rules.ActionSubmit {
		auditAction = model.ActionReviewBox
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.boxRepo.Update(txCtx, box); updateErr != nil {
			return fmt.Errorf("failed to update box: %w", updateErr)
		}
		s.writeAudit(txCtx, userUUID, auditAction, box.ID.String(), box.Description,
			map[string]string{"action": action, "note": note, "status": next})
		return nil
	})
	if err != nil {
		return BoxResponse{}, err
	}

	metrics.BoxStatusTransitions.WithLabelValues(next).Inc()
	s.publishStatusEvent(box, action)

	resp, err := s.refreshed(ctx, box.ID)
	if err != nil {
		return BoxResponse{}, err
	}

	// Approval is a human override: an incomplete checklist is surfaced, never
	// a blocker.
	if next == model.BoxStatusCompleted && resp.CompletionPercent < 100 {
		resp.Warning = fmt.Sprintf("approved with checklist at %d%%", resp.CompletionPercent)
		log.Info().Str("box_id", box.ID.String()).Int("completion", resp.CompletionPercent).
			Msg("box approved with incomplete checklist")
	}
	return resp, nil
}

func (s *boxService) DeleteBox(ctx context.Context, id, userID string) error {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		return fmt.Errorf("box not found: %w", err)
	}

	if _, err := rules.Transition(box.Status, rules.ActionDelete); err != nil {
		return err
	}

	payments, err := s.paymentsOf(ctx, boxID)
	if err != nil {
		return err
	}

	userUUID := parseUserID(userID)
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if len(payments) > 0 {
			// Referenced by payments: keep the row as a VOID tombstone.
			box.Status = model.BoxStatusVoid
			if updateErr := s.boxRepo.Update(txCtx, box); updateErr != nil {
				return fmt.Errorf("failed to void box: %w", updateErr)
			}
		} else if deleteErr := s.boxRepo.Delete(txCtx, boxID); deleteErr != nil {
			return fmt.Errorf("failed to delete box: %w", deleteErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionDeleteBox, boxID.String(), box.Description, nil)
		return nil
	})
}

func (s *boxService) MarkReimbursed(ctx context.Context, id, userID string) (BoxResponse, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, boxID)
	if err != nil {
		return BoxResponse{}, fmt.Errorf("box not found: %w", err)
	}
	if !box.PaidByEmployee {
		return BoxResponse{}, fmt.Errorf("box was not paid by an employee advance")
	}

	done := model.ReimburseDone
	box.ReimbursementStatus = &done

	userUUID := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.boxRepo.Update(txCtx, box); updateErr != nil {
			return fmt.Errorf("failed to update box: %w", updateErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionUpdateBoxConfig, box.ID.String(), box.Description,
			map[string]string{"reimbursement_status": done})
		return nil
	})
	if err != nil {
		return BoxResponse{}, err
	}

	return toBoxResponse(*box), nil
}

func (s *boxService) GetChecklist(ctx context.Context, id string) (rules.Checklist, error) {
	boxID, err := uuid.Parse(id)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("invalid box id: %w", err)
	}
	box, err := s.boxRepo.FindByIDWithDocuments(ctx, boxID)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("box not found: %w", err)
	}
	return s.evaluate(ctx, box)
}

// RefreshChecklist is the single write path for the derived checklist fields:
// it re-evaluates the full checklist from the actual uploads and flags, stores
// the completion percentage and doc statuses, and applies the completeness-driven
// PENDING <-> NEED_DOCS toggle. Idempotent; safe to re-run after any mutation.
func (s *boxService) RefreshChecklist(ctx context.Context, boxID uuid.UUID) (*model.Box, rules.Checklist, error) {
	box, err := s.boxRepo.FindByIDWithDocuments(ctx, boxID)
	if err != nil {
		return nil, rules.Checklist{}, fmt.Errorf("box not found: %w", err)
	}

	checklist, err := s.evaluate(ctx, box)
	if err != nil {
		return nil, rules.Checklist{}, err
	}

	box.CompletionPercent = checklist.CompletionPercent
	s.syncDocStatuses(ctx, box, checklist)

	prev := box.Status
	if next, changed := rules.AutoAdjust(box.Status, checklist.CompletionPercent); changed {
		box.Status = next
	}

	if err := s.boxRepo.Update(ctx, box); err != nil {
		return nil, rules.Checklist{}, fmt.Errorf("failed to store checklist state: %w", err)
	}

	if box.Status != prev {
		metrics.BoxStatusTransitions.WithLabelValues(box.Status).Inc()
		if box.Status == model.BoxStatusNeedDocs {
			s.hub.Publish(notify.EventBoxNeedDocs, box.ID.String(), checklist)
		} else {
			s.hub.Publish(notify.EventBoxResubmitted, box.ID.String(), checklist)
		}
		log.Info().Str("box_id", box.ID.String()).Str("from", prev).Str("to", box.Status).
			Int("completion", checklist.CompletionPercent).Msg("box status auto-adjusted")
	}

	return box, checklist, nil
}

// --- Helpers ---

// evaluate derives the checklist from the box's configuration, its uploaded
// document types, and its WHT tracking records. Pure apart from the reads.
func (s *boxService) evaluate(ctx context.Context, box *model.Box) (rules.Checklist, error) {
	reqs := s.catalog.RequiredDocuments(box.BoxType, box.ExpenseType, box.HasVat, box.HasWht)

	docs := box.Documents
	if docs == nil {
		loaded, err := s.docRepo.ListByBox(ctx, box.ID)
		if err != nil {
			return rules.Checklist{}, fmt.Errorf("failed to load documents: %w", err)
		}
		docs = loaded
	}

	docTypes := map[string]int{}
	for _, d := range docs {
		if len(d.Files) > 0 {
			docTypes[d.DocType] += len(d.Files)
		}
	}

	trackings, err := s.whtRepo.ListByBox(ctx, box.ID)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("failed to load wht trackings: %w", err)
	}

	flags := rules.DeriveWhtFlags(trackings)
	flags.VatVerified = box.VatDocStatus == model.VatDocVerified
	flags.IsPaid = box.PaymentStatus == model.PaymentStatusPaid

	return rules.EvaluateChecklist(reqs, docTypes, naSet(box.NADocTypes), flags), nil
}

// syncDocStatuses mirrors the checklist's WHT outcome onto the box's cached
// wht_doc_status so list views need no join.
func (s *boxService) syncDocStatuses(ctx context.Context, box *model.Box, checklist rules.Checklist) {
	if !box.HasWht {
		box.WhtDocStatus = model.WhtDocNA
		return
	}
	for _, item := range checklist.Items {
		if item.RequirementID != rules.ReqWhtSent && item.RequirementID != rules.ReqWhtReceived {
			continue
		}
		switch item.Status {
		case rules.ItemSatisfied:
			box.WhtDocStatus = model.WhtDocReceived
		case rules.ItemWaiting:
			box.WhtDocStatus = model.WhtDocRequested
		case rules.ItemNotApplicable:
			box.WhtDocStatus = model.WhtDocNA
		default:
			box.WhtDocStatus = model.WhtDocPending
		}
	}
}

func (s *boxService) refreshed(ctx context.Context, boxID uuid.UUID) (BoxResponse, error) {
	box, checklist, err := s.RefreshChecklist(ctx, boxID)
	if err != nil {
		return BoxResponse{}, err
	}
	resp := toBoxResponse(*box)
	resp.Checklist = &checklist
	return resp, nil
}

func (s *boxService) publishStatusEvent(box *model.Box, action string) {
	switch box.Status {
	case model.BoxStatusPending:
		if action == rules.ActionSubmit {
			s.hub.Publish(notify.EventBoxSubmitted, box.ID.String(), nil)
		} else {
			s.hub.Publish(notify.EventBoxResubmitted, box.ID.String(), nil)
		}
	case model.BoxStatusNeedDocs:
		s.hub.Publish(notify.EventBoxNeedDocs, box.ID.String(), nil)
	case model.BoxStatusCompleted:
		s.hub.Publish(notify.EventBoxCompleted, box.ID.String(), nil)
	case model.BoxStatusRejected:
		s.hub.Publish(notify.EventBoxRejected, box.ID.String(), nil)
	}
}

// paymentsOf avoids a hard dependency on the payment repository for the one
// delete guard that needs it.
func (s *boxService) paymentsOf(ctx context.Context, boxID uuid.UUID) ([]model.Payment, error) {
	box, err := s.boxRepo.FindByIDWithDocuments(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("box not found: %w", err)
	}
	return box.Payments, nil
}

func (s *boxService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	// Best-effort audit log; do not fail the operation if logging fails
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to write audit log")
	}
}

func naSet(naDocTypes string) map[string]bool {
	na := map[string]bool{}
	for _, id := range strings.Split(naDocTypes, ",") {
		if id = strings.TrimSpace(id); id != "" {
			na[id] = true
		}
	}
	return na
}

func parseUserID(userID string) *uuid.UUID {
	if userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

func toBoxResponse(b model.Box) BoxResponse {
	resp := BoxResponse{
		ID:                  b.ID.String(),
		BoxType:             b.BoxType,
		ExpenseType:         b.ExpenseType,
		HasVat:              b.HasVat,
		HasWht:              b.HasWht,
		WhtRate:             b.WhtRate.StringFixed(4),
		TotalAmount:         b.TotalAmount.StringFixed(2),
		PaidAmount:          b.PaidAmount.StringFixed(2),
		Status:              b.Status,
		PaymentStatus:       b.PaymentStatus,
		VatDocStatus:        b.VatDocStatus,
		WhtDocStatus:        b.WhtDocStatus,
		CompletionPercent:   b.CompletionPercent,
		PossibleDuplicate:   b.PossibleDuplicate,
		DuplicateReason:     b.DuplicateReason,
		PaidByEmployee:      b.PaidByEmployee,
		ReimbursementStatus: b.ReimbursementStatus,
		ContactName:         b.ContactName,
		Description:         b.Description,
		DocumentNumber:      b.DocumentNumber,
		CreatedAt:           b.CreatedAt.Format(time.RFC3339),
	}
	if b.ContactID != nil {
		id := b.ContactID.String()
		resp.ContactID = &id
	}
	if b.DocumentDate != nil {
		d := b.DocumentDate.Format("2006-01-02")
		resp.DocumentDate = &d
	}
	return resp
}
