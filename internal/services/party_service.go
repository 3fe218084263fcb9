package services

import (
	"context"
	"errors"

	"kiranamart/internal/common"
	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PartyServiceInterface interface {
	CreateParty(ctx context.Context, party *models.Party) error
	GetParty(ctx context.Context, shopID, partyID uuid.UUID) (*models.Party, error)
	UpdateParty(ctx context.Context, party *models.Party) error
	DeleteParty(ctx context.Context, shopID, partyID uuid.UUID) error
	ListParties(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Party, error)
}

type partyService struct {
	partyRepo repositories.PartyRepository
}

// NewPartyService creates a new party service
func NewPartyService(partyRepo repositories.PartyRepository) PartyServiceInterface {
	return &partyService{partyRepo: partyRepo}
}

func (s *partyService) validateParty(party *models.Party) error {
	if err := common.ValidateRequiredString(party.Name, "name"); err != nil {
		return &ValidationError{Field: "name", Message: err.Error()}
	}
	if err := common.ValidatePhone(party.Phone, "phone"); err != nil {
		return &ValidationError{Field: "phone", Message: err.Error()}
	}
	switch party.GSTType {
	case models.GSTTypeRegistered, models.GSTTypeComposition:
		if err := common.ValidateGSTIN(party.GSTIN, "gstin"); err != nil {
			return &ValidationError{Field: "gstin", Message: err.Error()}
		}
	case models.GSTTypeUnregistered:
		// No GSTIN expected.
	default:
		return &ValidationError{Field: "gst_type", Message: "must be Registered, Unregistered or Composition"}
	}
	return nil
}

func (s *partyService) checkPhoneUnique(ctx context.Context, party *models.Party) error {
	existing, err := s.partyRepo.GetByPhone(ctx, party.ShopID, party.Phone)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil && existing.ID != party.ID {
		return &ConflictError{Message: "a party with this phone already exists"}
	}
	return nil
}

func (s *partyService) CreateParty(ctx context.Context, party *models.Party) error {
	if err := s.validateParty(party); err != nil {
		return err
	}
	if err := s.checkPhoneUnique(ctx, party); err != nil {
		return err
	}
	if party.ID == uuid.Nil {
		party.ID = uuid.New()
	}
	return s.partyRepo.Create(ctx, party)
}

func (s *partyService) GetParty(ctx context.Context, shopID, partyID uuid.UUID) (*models.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, shopID, partyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "party"}
		}
		return nil, err
	}
	return party, nil
}

func (s *partyService) UpdateParty(ctx context.Context, party *models.Party) error {
	if err := s.validateParty(party); err != nil {
		return err
	}
	if err := s.checkPhoneUnique(ctx, party); err != nil {
		return err
	}
	return s.partyRepo.Update(ctx, party)
}

func (s *partyService) DeleteParty(ctx context.Context, shopID, partyID uuid.UUID) error {
	if err := s.partyRepo.Delete(ctx, shopID, partyID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "party"}
		}
		return err
	}
	return nil
}

func (s *partyService) ListParties(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]*models.Party, error) {
	return s.partyRepo.List(ctx, shopID, limit, offset)
}
