package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/extraction"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/rules"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// --- DTOs ---

type AddFileRequest struct {
	DocType   string `json:"doc_type" binding:"required,oneof=TAX_INVOICE TAX_INVOICE_ABB INVOICE RECEIPT CASH_RECEIPT SLIP_TRANSFER SLIP_CHEQUE BANK_STATEMENT WHT_SENT WHT_RECEIVED OTHER"`
	Name      string `json:"name" binding:"required"`
	MimeType  string `json:"mime_type"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`

	// Extraction outcome for this file, already resolved by the external
	// extraction collaborator. Nil means no extraction was attempted.
	Extraction *extraction.Result `json:"extraction"`
}

type FileResponse struct {
	ID                string  `json:"id"`
	DocumentID        string  `json:"document_id"`
	Name              string  `json:"name"`
	MimeType          string  `json:"mime_type"`
	Checksum          string  `json:"checksum"`
	SizeBytes         int64   `json:"size_bytes"`
	ExtractConfidence float64 `json:"extract_confidence"`
	ExtractError      string  `json:"extract_error,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

type DocumentResponse struct {
	ID        string         `json:"id"`
	BoxID     string         `json:"box_id"`
	DocType   string         `json:"doc_type"`
	Files     []FileResponse `json:"files"`
	CreatedAt string         `json:"created_at"`
}

type AddFileResult struct {
	Document  DocumentResponse `json:"document"`
	File      FileResponse     `json:"file"`
	Checklist rules.Checklist  `json:"checklist"`
	Payment   *ReconcileResult `json:"payment,omitempty"` // set when the upload auto-created a payment
}

// --- Interface ---

type DocumentService interface {
	AddFile(ctx context.Context, boxID, userID string, req AddFileRequest) (AddFileResult, error)
	RemoveFile(ctx context.Context, fileID, userID string) (rules.Checklist, error)
	ListByBox(ctx context.Context, boxID string) ([]DocumentResponse, error)
}

type documentService struct {
	docRepo        repository.DocumentRepository
	boxRepo        repository.BoxRepository
	whtRepo        repository.WhtRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
	boxService     BoxService
	paymentService PaymentService
	whtService     WhtService
	catalog        rules.Catalog
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	boxRepo repository.BoxRepository,
	whtRepo repository.WhtRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	boxService BoxService,
	paymentService PaymentService,
	whtService WhtService,
	catalog rules.Catalog,
) DocumentService {
	return &documentService{
		docRepo:        docRepo,
		boxRepo:        boxRepo,
		whtRepo:        whtRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		boxService:     boxService,
		paymentService: paymentService,
		whtService:     whtService,
		catalog:        catalog,
	}
}

// --- Implementation ---

// AddFile attaches an uploaded file to the box's document for the given type,
// creating the document on first upload. The box keeps one Document per
// functionally-equivalent doc-type group, and a document's type is immutable
// once it holds files.
func (s *documentService) AddFile(ctx context.Context, boxID, userID string, req AddFileRequest) (AddFileResult, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return AddFileResult{}, fmt.Errorf("invalid box id: %w", err)
	}

	box, err := s.boxRepo.FindByID(ctx, id)
	if err != nil {
		return AddFileResult{}, fmt.Errorf("box not found: %w", err)
	}
	if rules.IsTerminalStatus(box.Status) && box.Status != model.BoxStatusCompleted {
		return AddFileResult{}, rules.NewInvalidTransition("box", box.Status, "add_file")
	}

	var doc *model.Document
	var file model.File
	userUUID := parseUserID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, findErr := s.docRepo.FindByBoxAndTypes(txCtx, id, s.catalog.GroupFor(req.DocType))
		if findErr != nil {
			return fmt.Errorf("failed to look up document: %w", findErr)
		}

		if existing != nil {
			doc = existing
		} else {
			doc = &model.Document{BoxID: id, DocType: req.DocType}
			if createErr := s.docRepo.Create(txCtx, doc); createErr != nil {
				return fmt.Errorf("failed to create document: %w", createErr)
			}
		}

		file = model.File{
			DocumentID: doc.ID,
			Name:       req.Name,
			MimeType:   req.MimeType,
			Checksum:   req.Checksum,
			SizeBytes:  req.SizeBytes,
		}
		if req.Extraction != nil {
			snapshot, _ := json.Marshal(req.Extraction)
			file.ExtractedFields = string(snapshot)
			file.ExtractConfidence = req.Extraction.Confidence
			file.ExtractError = req.Extraction.Error
		}
		if addErr := s.docRepo.AddFile(txCtx, &file); addErr != nil {
			return fmt.Errorf("failed to store file: %w", addErr)
		}

		s.writeAudit(txCtx, userUUID, model.ActionAddFile, file.ID.String(), req.Name,
			map[string]string{"box_id": boxID, "doc_type": doc.DocType})
		return nil
	})
	if err != nil {
		return AddFileResult{}, err
	}

	result := AddFileResult{}

	// A payment-proof upload auto-creates a payment before the checklist
	// recompute, so the proof and the paid flag land together.
	if s.catalog.IsPaymentProof(doc.DocType) {
		payment, payErr := s.paymentService.RecordFromProof(ctx, id, doc.ID, file.ID, methodForDocType(doc.DocType))
		if payErr != nil {
			log.Warn().Err(payErr).Str("box_id", boxID).Msg("auto payment from proof failed")
		} else {
			result.Payment = &payment
		}
	}

	// An incoming certificate upload settles the awaiting tracking record.
	if doc.DocType == model.DocTypeWhtReceived {
		s.autoReceiveWht(ctx, id, userID)
	}

	_, checklist, err := s.boxService.RefreshChecklist(ctx, id)
	if err != nil {
		return AddFileResult{}, err
	}

	result.Checklist = checklist
	result.File = toFileResponse(file)
	result.Document = DocumentResponse{
		ID:        doc.ID.String(),
		BoxID:     boxID,
		DocType:   doc.DocType,
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
	}
	return result, nil
}

func (s *documentService) RemoveFile(ctx context.Context, fileID, userID string) (rules.Checklist, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("invalid file id: %w", err)
	}

	file, err := s.docRepo.FindFileByID(ctx, id)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("file not found: %w", err)
	}
	doc, err := s.docRepo.FindByID(ctx, file.DocumentID)
	if err != nil {
		return rules.Checklist{}, fmt.Errorf("document not found: %w", err)
	}

	userUUID := parseUserID(userID)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if removeErr := s.docRepo.RemoveFile(txCtx, id); removeErr != nil {
			return fmt.Errorf("failed to remove file: %w", removeErr)
		}
		remaining, countErr := s.docRepo.CountFiles(txCtx, doc.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count remaining files: %w", countErr)
		}
		if remaining == 0 {
			log.Info().
				Str("box_id", doc.BoxID.String()).
				Str("doc_type", doc.DocType).
				Msg("document left with no files after removal")
		}
		s.writeAudit(txCtx, userUUID, model.ActionRemoveFile, id.String(), file.Name,
			map[string]string{
				"box_id":          doc.BoxID.String(),
				"doc_type":        doc.DocType,
				"remaining_files": fmt.Sprintf("%d", remaining),
			})
		return nil
	})
	if err != nil {
		return rules.Checklist{}, err
	}

	_, checklist, err := s.boxService.RefreshChecklist(ctx, doc.BoxID)
	return checklist, err
}

func (s *documentService) ListByBox(ctx context.Context, boxID string) ([]DocumentResponse, error) {
	id, err := uuid.Parse(boxID)
	if err != nil {
		return nil, fmt.Errorf("invalid box id: %w", err)
	}

	docs, err := s.docRepo.ListByBox(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		resp := DocumentResponse{
			ID:        d.ID.String(),
			BoxID:     d.BoxID.String(),
			DocType:   d.DocType,
			CreatedAt: d.CreatedAt.Format(time.RFC3339),
		}
		for _, f := range d.Files {
			resp.Files = append(resp.Files, toFileResponse(f))
		}
		result = append(result, resp)
	}
	return result, nil
}

// --- Helpers ---

// autoReceiveWht settles the single awaiting incoming tracking record, if the
// situation is unambiguous. Multiple pending records stay manual.
func (s *documentService) autoReceiveWht(ctx context.Context, boxID uuid.UUID, userID string) {
	trackings, err := s.whtRepo.ListByBox(ctx, boxID)
	if err != nil {
		log.Warn().Err(err).Str("box_id", boxID.String()).Msg("failed to load wht trackings")
		return
	}

	var pending []model.WhtTracking
	for _, t := range trackings {
		if t.Type == model.WhtTypeIncoming && t.Status == model.WhtStatusPending {
			pending = append(pending, t)
		}
	}
	if len(pending) != 1 {
		return
	}

	if _, err := s.whtService.Advance(ctx, pending[0].ID.String(), userID,
		AdvanceWhtRequest{Target: model.WhtStatusReceived}); err != nil {
		log.Warn().Err(err).Str("box_id", boxID.String()).Msg("auto-receive of wht certificate failed")
	}
}

func methodForDocType(docType string) string {
	if docType == model.DocTypeSlipCheque {
		return model.PaymentMethodCheque
	}
	return model.PaymentMethodTransfer
}

func (s *documentService) writeAudit(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
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

func toFileResponse(f model.File) FileResponse {
	return FileResponse{
		ID:                f.ID.String(),
		DocumentID:        f.DocumentID.String(),
		Name:              f.Name,
		MimeType:          f.MimeType,
		Checksum:          f.Checksum,
		SizeBytes:         f.SizeBytes,
		ExtractConfidence: f.ExtractConfidence,
		ExtractError:      f.ExtractError,
		CreatedAt:         f.CreatedAt.Format(time.RFC3339),
	}
}
