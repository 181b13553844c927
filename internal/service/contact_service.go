package service

import (
	"context"
	"fmt"
	"time"

	"github.com/LOSTXKER/anajakdoc-sub000/internal/model"
	"github.com/LOSTXKER/anajakdoc-sub000/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateContactRequest struct {
	Name  string `json:"name" binding:"required"`
	Kind  string `json:"kind" binding:"required,oneof=VENDOR CUSTOMER EMPLOYEE"`
	TaxID string `json:"tax_id"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type UpdateContactRequest struct {
	Name     *string `json:"name"`
	Kind     *string `json:"kind" binding:"omitempty,oneof=VENDOR CUSTOMER EMPLOYEE"`
	TaxID    *string `json:"tax_id"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

type ContactResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	TaxID     string `json:"tax_id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

// ContactService maintains the counterpart registry boxes and WHT certificate
// obligations reference, and the inbox matcher resolves tax ids against.
type ContactService interface {
	CreateContact(ctx context.Context, req CreateContactRequest) (ContactResponse, error)
	GetContact(ctx context.Context, id string) (ContactResponse, error)
	ListContacts(ctx context.Context, page, limit int) ([]ContactResponse, int64, error)
	UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (ContactResponse, error)
}

type contactService struct {
	repo repository.ContactRepository
}

func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactService{repo: repo}
}

// --- Implementation ---

func (s *contactService) CreateContact(ctx context.Context, req CreateContactRequest) (ContactResponse, error) {
	if req.TaxID != "" {
		existing, err := s.repo.FindByTaxID(ctx, req.TaxID)
		if err != nil {
			return ContactResponse{}, fmt.Errorf("failed to check tax id: %w", err)
		}
		if existing != nil {
			return ContactResponse{}, fmt.Errorf("a contact with tax id %s already exists", req.TaxID)
		}
	}

	contact := model.Contact{
		Name:     req.Name,
		Kind:     req.Kind,
		TaxID:    req.TaxID,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, &contact); err != nil {
		return ContactResponse{}, fmt.Errorf("failed to create contact: %w", err)
	}
	return toContactResponse(contact), nil
}

func (s *contactService) GetContact(ctx context.Context, id string) (ContactResponse, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("invalid contact id: %w", err)
	}
	contact, err := s.repo.FindByID(ctx, contactID)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("contact not found: %w", err)
	}
	return toContactResponse(*contact), nil
}

func (s *contactService) ListContacts(ctx context.Context, page, limit int) ([]ContactResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	contacts, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch contacts: %w", err)
	}

	result := make([]ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		result = append(result, toContactResponse(c))
	}
	return result, total, nil
}

func (s *contactService) UpdateContact(ctx context.Context, id string, req UpdateContactRequest) (ContactResponse, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("invalid contact id: %w", err)
	}
	contact, err := s.repo.FindByID(ctx, contactID)
	if err != nil {
		return ContactResponse{}, fmt.Errorf("contact not found: %w", err)
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Kind != nil {
		contact.Kind = *req.Kind
	}
	if req.TaxID != nil && *req.TaxID != contact.TaxID {
		if *req.TaxID != "" {
			existing, lookupErr := s.repo.FindByTaxID(ctx, *req.TaxID)
			if lookupErr != nil {
				return ContactResponse{}, fmt.Errorf("failed to check tax id: %w", lookupErr)
			}
			if existing != nil && existing.ID != contact.ID {
				return ContactResponse{}, fmt.Errorf("a contact with tax id %s already exists", *req.TaxID)
			}
		}
		contact.TaxID = *req.TaxID
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.IsActive != nil {
		contact.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return ContactResponse{}, fmt.Errorf("failed to update contact: %w", err)
	}
	return toContactResponse(*contact), nil
}

func toContactResponse(c model.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Kind:      c.Kind,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
