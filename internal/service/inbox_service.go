package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/extraction"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// --- DTOs ---

type AggregateRequest struct {
	// DraftID continues an existing review; empty starts a new draft.
	DraftID   string              `json:"draft_id"`
	BoxType   string              `json:"box_type" binding:"required,oneof=EXPENSE INCOME"`
	Results   []extraction.Result `json:"results" binding:"required"`
	Overrides rules.Overrides     `json:"overrides"`
}

type AggregateResponse struct {
	DraftID   string                 `json:"draft_id"`
	Record    rules.AggregatedRecord `json:"record"`
	Match     rules.MatchResult      `json:"match"`
	ContactID *string                `json:"contact_id,omitempty"` // known counterpart resolved via tax id
}

// --- Interface ---

// InboxService runs the review step for a batch of freshly extracted files:
// merge the per-file fields into one record, then score it against the open
// boxes so the user can choose between adding to one or creating a new box.
// User-edited overrides are persisted on the draft and keep winning over the
// computed values on every recompute until explicitly cleared.
type InboxService interface {
	Aggregate(ctx context.Context, req AggregateRequest) (AggregateResponse, error)
	ApplyOverride(ctx context.Context, draftID string, ov rules.Overrides) (AggregateResponse, error)
	ClearOverrides(ctx context.Context, draftID string) (AggregateResponse, error)
}

type inboxService struct {
	boxRepo     repository.BoxRepository
	contactRepo repository.ContactRepository
	inboxRepo   repository.InboxRepository
}

func NewInboxService(boxRepo repository.BoxRepository, contactRepo repository.ContactRepository, inboxRepo repository.InboxRepository) InboxService {
	return &inboxService{boxRepo: boxRepo, contactRepo: contactRepo, inboxRepo: inboxRepo}
}

// --- Implementation ---

func (s *inboxService) Aggregate(ctx context.Context, req AggregateRequest) (AggregateResponse, error) {
	overrides := req.Overrides

	var draft *model.InboxDraft
	if req.DraftID != "" {
		id, err := uuid.Parse(req.DraftID)
		if err != nil {
			return AggregateResponse{}, fmt.Errorf("invalid draft id: %w", err)
		}
		found, err := s.inboxRepo.FindByID(ctx, id)
		if err != nil {
			return AggregateResponse{}, fmt.Errorf("draft not found: %w", err)
		}
		draft = found

		stored, err := decodeOverrides(draft.Overrides)
		if err != nil {
			return AggregateResponse{}, err
		}
		overrides = mergeOverrides(stored, req.Overrides)
	} else {
		draft = &model.InboxDraft{BoxType: req.BoxType}
		if err := s.inboxRepo.Create(ctx, draft); err != nil {
			return AggregateResponse{}, fmt.Errorf("failed to create draft: %w", err)
		}
	}

	// The draft always carries the latest file set and the merged overrides,
	// so a later ApplyOverride can recompute without the client re-sending.
	resultsJSON, _ := json.Marshal(req.Results)
	overridesJSON, _ := json.Marshal(overrides)
	draft.Results = string(resultsJSON)
	draft.Overrides = string(overridesJSON)
	if err := s.inboxRepo.Update(ctx, draft); err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to store draft: %w", err)
	}

	return s.evaluateDraft(ctx, draft, req.Results, overrides)
}

// ApplyOverride merges the given field edits into the draft's stored overrides
// and returns the recomputed aggregate.
func (s *inboxService) ApplyOverride(ctx context.Context, draftID string, ov rules.Overrides) (AggregateResponse, error) {
	return s.mutateOverrides(ctx, draftID, func(stored rules.Overrides) rules.Overrides {
		return mergeOverrides(stored, ov)
	})
}

// ClearOverrides drops every stored override, letting the computed values win
// again.
func (s *inboxService) ClearOverrides(ctx context.Context, draftID string) (AggregateResponse, error) {
	return s.mutateOverrides(ctx, draftID, func(rules.Overrides) rules.Overrides {
		return rules.Overrides{}
	})
}

func (s *inboxService) mutateOverrides(ctx context.Context, draftID string, mutate func(rules.Overrides) rules.Overrides) (AggregateResponse, error) {
	id, err := uuid.Parse(draftID)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("invalid draft id: %w", err)
	}
	draft, err := s.inboxRepo.FindByID(ctx, id)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("draft not found: %w", err)
	}

	stored, err := decodeOverrides(draft.Overrides)
	if err != nil {
		return AggregateResponse{}, err
	}
	overrides := mutate(stored)

	overridesJSON, _ := json.Marshal(overrides)
	draft.Overrides = string(overridesJSON)
	if err := s.inboxRepo.Update(ctx, draft); err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to store draft: %w", err)
	}

	var results []extraction.Result
	if draft.Results != "" {
		if err := json.Unmarshal([]byte(draft.Results), &results); err != nil {
			return AggregateResponse{}, fmt.Errorf("stored extraction results are unreadable: %w", err)
		}
	}
	return s.evaluateDraft(ctx, draft, results, overrides)
}

// evaluateDraft recomputes the aggregate and the match suggestion for a draft.
func (s *inboxService) evaluateDraft(ctx context.Context, draft *model.InboxDraft, results []extraction.Result, overrides rules.Overrides) (AggregateResponse, error) {
	record := rules.AggregateFields(results, overrides)

	pending, err := s.boxRepo.ListPending(ctx, draft.BoxType)
	if err != nil {
		return AggregateResponse{}, fmt.Errorf("failed to load pending boxes: %w", err)
	}

	snapshots := make([]rules.BoxSnapshot, 0, len(pending))
	for _, b := range pending {
		snapshots = append(snapshots, rules.BoxSnapshot{
			BoxID:          b.ID,
			BoxType:        b.BoxType,
			Status:         b.Status,
			TotalAmount:    b.TotalAmount,
			DocumentDate:   b.DocumentDate,
			ContactName:    b.ContactName,
			TaxID:          contactTaxID(b.Contact),
			DocumentNumber: b.DocumentNumber,
		})
	}

	match := rules.FindMatches(record, draft.BoxType, snapshots)
	if len(record.Errors) > 0 {
		log.Info().Int("failed_files", len(record.Errors)).Msg("aggregation completed with per-file extraction failures")
	}

	resp := AggregateResponse{DraftID: draft.ID.String(), Record: record, Match: match}

	if record.TaxID.Present {
		contact, lookupErr := s.contactRepo.FindByTaxID(ctx, record.TaxID.Value)
		if lookupErr != nil {
			log.Warn().Err(lookupErr).Msg("contact lookup by tax id failed")
		} else if contact != nil {
			id := contact.ID.String()
			resp.ContactID = &id
		}
	}

	return resp, nil
}

// mergeOverrides folds incoming field edits over the stored set; a field the
// incoming set does not touch keeps its stored value.
func mergeOverrides(stored, incoming rules.Overrides) rules.Overrides {
	merged := stored
	if incoming.DocType != nil {
		merged.DocType = incoming.DocType
	}
	if incoming.Amount != nil {
		merged.Amount = incoming.Amount
	}
	if incoming.VatAmount != nil {
		merged.VatAmount = incoming.VatAmount
	}
	if incoming.Description != nil {
		merged.Description = incoming.Description
	}
	if incoming.ContactName != nil {
		merged.ContactName = incoming.ContactName
	}
	if incoming.DocumentDate != nil {
		merged.DocumentDate = incoming.DocumentDate
	}
	if incoming.DocumentNumber != nil {
		merged.DocumentNumber = incoming.DocumentNumber
	}
	if incoming.TaxID != nil {
		merged.TaxID = incoming.TaxID
	}
	return merged
}

func decodeOverrides(raw string) (rules.Overrides, error) {
	var ov rules.Overrides
	if raw == "" {
		return ov, nil
	}
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		return ov, fmt.Errorf("stored overrides are unreadable: %w", err)
	}
	return ov, nil
}

func contactTaxID(c *model.Contact) string {
	if c == nil {
		return ""
	}
	return c.TaxID
}
