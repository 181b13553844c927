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

type CreateWhtTrackingRequest struct {
	Type        string `json:"type" binding:"required,oneof=OUTGOING INCOMING"`
	WhtAmount   string `json:"wht_amount" binding:"required"`
	WhtRate     string `json:"wht_rate" binding:"required"`
	ContactID   string `json:"contact_id"`
	ContactName string `json:"contact_name"`
	Note        string `json:"note"`
}

type AdvanceWhtRequest struct {
	Target string `json:"target" binding:"required,oneof=ISSUED SENT CONFIRMED RECEIVED"`
}

type WhtTrackingResponse struct {
	ID            string   `json:"id"`
	BoxID         string   `json:"box_id"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	WhtAmount     string   `json:"wht_amount"`
	WhtRate       string   `json:"wht_rate"`
	ContactID     *string  `json:"contact_id"`
	ContactName   string   `json:"contact_name"`
	IssuedDate    *string  `json:"issued_date"`
	SentDate      *string  `json:"sent_date"`
	ConfirmedDate *string  `json:"confirmed_date"`
	ReceivedDate  *string  `json:"received_date"`
	CancelledDate *string  `json:"cancelled_date"`
	NextStatuses  []string `json:"next_statuses"`
	Note          string   `json:"note"`
	CreatedAt     string   `json:"created_at"`
}

// --- Interface ---

type WhtService interface {
	CreateTracking(ctx context.Context, boxID, userID string, req CreateWhtTrackingRequest) (WhtTrackingResponse, error)
	Advance(ctx context.Context, trackingID, userID string, req AdvanceWhtRequest) (WhtTrackingResponse, error)
	Cancel(ctx context.Context, trackingID, userID string) (WhtTrackingResponse, error)
	ListByBox(ctx context.Context, boxID string) ([]WhtTrackingResponse, error)
}

type whtService struct {
	whtRepo    repository.WhtRepository
	boxRepo    repository.BoxRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	boxService BoxService
	hub        *notify.Hub
}

func NewWhtService(
	whtRepo repository.WhtRepository,
	boxRepo repository.BoxRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	boxService BoxService,
	hub *notify.Hub,
) WhtService {
	return &whtService{
		whtRepo:    whtRepo,
		boxRepo:    boxRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		boxService: boxService,
		hub:        hub,
	}
}

// --- Implementation ---

func (s *whtService) CreateTracking(ctx context.Context, boxID, userID string, req CreateWhtTrackingRequest) (WhtTrackingResponse, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return WhtTrackingResponse{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, id)
	if err != nil {
		return WhtTrackingResponse{}, fmt.Errorf("box not found: %w", err)
	}
	if !box.HasWht {
		return WhtTrackingResponse{}, fmt.Errorf("box has no withholding tax configured")
	}

	amount, err := decimal.NewFromString(req.WhtAmount)
	if err != nil {
		return WhtTrackingResponse{}, fmt.Errorf("invalid wht_amount: %w", err)
	}
	rate, err := decimal.NewFromString(req.WhtRate)
	if err != nil {
		return WhtTrackingResponse{}, fmt.Errorf("invalid wht_rate: %w", err)
	}

	tracking := model.WhtTracking{
		BoxID:       id,
		Type:        req.Type,
		Status:      model.WhtStatusPending,
		WhtAmount:   amount,
		WhtRate:     rate,
		ContactName: req.ContactName,
		Note:        req.Note,
	}
	if req.ContactID != "" {
		parsed, parseErr := uuid.Parse(req.ContactID)
		if parseErr != nil {
			return WhtTrackingResponse{}, fmt.Errorf("invalid contact_id: %w", parseErr)
		}
		tracking.ContactID = &parsed
	}

	userUUID := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.whtRepo.Create(txCtx, &tracking); createErr != nil {
			return fmt.Errorf("failed to create wht tracking: %w", createErr)
		}
		s.writeAudit(txCtx, userUUID, model.ActionCreateWht, tracking.ID.String(), req.ContactName, req)
		return nil
	})
	if err != nil {
		return WhtTrackingResponse{}, err
	}

	if _, _, refreshErr := s.boxService.RefreshChecklist(ctx, id); refreshErr != nil {
		log.Warn().Err(refreshErr).Str("box_id", id.String()).Msg("failed to refresh checklist after wht create")
	}
	return toWhtResponse(tracking), nil
}

// Advance moves a tracking record one step forward, stamping the matching
// timestamp. Out-of-order targets are rejected with the current and attempted
// state named.
func (s *whtService) Advance(ctx context.Context, trackingID, userID string, req AdvanceWhtRequest) (WhtTrackingResponse, error) {
	return s.transition(ctx, trackingID, userID, req.Target)
}

func (s *whtService) Cancel(ctx context.Context, trackingID, userID string) (WhtTrackingResponse, error) {
	return s.transition(ctx, trackingID, userID, model.WhtStatusCancelled)
}

func (s *whtService) transition(ctx context.Context, trackingID, userID, target string) (WhtTrackingResponse, error) {
	id, err := uuid.Parse(trackingID)
	if err != nil {
		return WhtTrackingResponse{}, fmt.Errorf("invalid tracking id: %w", err)
	}

	var tracking *model.WhtTracking
	userUUID := parseUserID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		found, findErr := s.whtRepo.FindByID(txCtx, id)
		if findErr != nil {
			return fmt.Errorf("wht tracking not found: %w", findErr)
		}
		tracking = found

		if validateErr := rules.ValidateWhtTransition(tracking.Type, tracking.Status, target); validateErr != nil {
			return validateErr
		}

		now := time.Now()
		tracking.Status = target
		switch target {
		case model.WhtStatusIssued:
			tracking.IssuedDate = &now
		case model.WhtStatusSent:
			tracking.SentDate = &now
		case model.WhtStatusConfirmed:
			tracking.ConfirmedDate = &now
		case model.WhtStatusReceived:
			tracking.ReceivedDate = &now
		case model.WhtStatusCancelled:
			tracking.CancelledDate = &now
		}

		if updateErr := s.whtRepo.Update(txCtx, tracking); updateErr != nil {
			return fmt.Errorf("failed to update wht tracking: %w", updateErr)
		}

		action := model.ActionAdvanceWht
		if target == model.WhtStatusCancelled {
			action = model.ActionCancelWht
		}
		s.writeAudit(txCtx, userUUID, action, tracking.ID.String(), tracking.ContactName,
			map[string]string{"status": target})
		return nil
	})
	if err != nil {
		return WhtTrackingResponse{}, err
	}

	metrics.WhtTransitions.WithLabelValues(target).Inc()
	s.publishWhtEvent(tracking, target)

	if _, _, refreshErr := s.boxService.RefreshChecklist(ctx, tracking.BoxID); refreshErr != nil {
		log.Warn().Err(refreshErr).Str("box_id", tracking.BoxID.String()).Msg("failed to refresh checklist after wht transition")
	}
	return toWhtResponse(*tracking), nil
}

func (s *whtService) ListByBox(ctx context.Context, boxID string) ([]WhtTrackingResponse, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return nil, fmt.Errorf("invalid box id: %w", err)
	}

	trackings, err := s.whtRepo.ListByBox(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wht trackings: %w", err)
	}

	result := make([]WhtTrackingResponse, 0, len(trackings))
	for _, t := range trackings {
		result = append(result, toWhtResponse(t))
	}
	return result, nil
}

// --- Helpers ---

func (s *whtService) publishWhtEvent(tracking *model.WhtTracking, target string) {
	boxID := tracking.BoxID.String()
	switch target {
	case model.WhtStatusIssued:
		s.hub.Publish(notify.EventWhtIssued, boxID, tracking.ID.String())
	case model.WhtStatusSent:
		s.hub.Publish(notify.EventWhtSent, boxID, tracking.ID.String())
	case model.WhtStatusConfirmed:
		s.hub.Publish(notify.EventWhtConfirmed, boxID, tracking.ID.String())
	case model.WhtStatusReceived:
		s.hub.Publish(notify.EventWhtReceived, boxID, tracking.ID.String())
	case model.WhtStatusCancelled:
		s.hub.Publish(notify.EventWhtCancelled, boxID, tracking.ID.String())
	}
}

func (s *whtService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
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

func toWhtResponse(t model.WhtTracking) WhtTrackingResponse {
	resp := WhtTrackingResponse{
		ID:           t.ID.String(),
		BoxID:        t.BoxID.String(),
		Type:         t.Type,
		Status:       t.Status,
		WhtAmount:    t.WhtAmount.StringFixed(2),
		WhtRate:      t.WhtRate.StringFixed(4),
		ContactName:  t.ContactName,
		NextStatuses: rules.NextWhtStatuses(t.Type, t.Status),
		Note:         t.Note,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.ContactID != nil {
		id := t.ContactID.String()
		resp.ContactID = &id
	}
	resp.IssuedDate = formatDatePtr(t.IssuedDate)
	resp.SentDate = formatDatePtr(t.SentDate)
	resp.ConfirmedDate = formatDatePtr(t.ConfirmedDate)
	resp.ReceivedDate = formatDatePtr(t.ReceivedDate)
	resp.CancelledDate = formatDatePtr(t.CancelledDate)
	return resp
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
