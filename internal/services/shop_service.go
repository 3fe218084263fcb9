package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kiranamart/internal/models"
	"kiranamart/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const logoBucket = "shop-logos"

type ShopServiceInterface interface {
	GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error)
	UploadLogo(ctx context.Context, shopID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	RemoveLogo(ctx context.Context, shopID uuid.UUID) error
}

type shopService struct {
	shopRepo repositories.ShopRepository
	storage  MinioService
}

// NewShopService creates a new shop service
func NewShopService(shopRepo repositories.ShopRepository, storage MinioService) ShopServiceInterface {
	return &shopService{
		shopRepo: shopRepo,
		storage:  storage,
	}
}

func (s *shopService) GetShop(ctx context.Context, shopID uuid.UUID) (*models.Shop, error) {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Resource: "shop"}
		}
		return nil, err
	}
	return shop, nil
}

// UploadLogo stores the logo in object storage and records a presigned URL
// on the shop. The URL is long-lived; re-uploading simply overwrites the
// object and refreshes the URL.
func (s *shopService) UploadLogo(ctx context.Context, shopID uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", &ValidationError{Field: "logo", Message: "must be a JPEG or PNG image"}
	}
	if size > 2<<20 {
		return "", &ValidationError{Field: "logo", Message: "must be at most 2 MB"}
	}

	if err := s.storage.EnsureBucketExists(ctx, logoBucket); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/logo", shopID.String())
	if err := s.storage.UploadObject(ctx, logoBucket, objectName, reader, size, contentType); err != nil {
		return "", err
	}

	url, err := s.storage.GetPresignedURL(ctx, logoBucket, objectName, 7*24*time.Hour)
	if err != nil {
		return "", err
	}
	if err := s.shopRepo.UpdateLogoURL(ctx, shopID, url); err != nil {
		return "", err
	}
	return url, nil
}

// RemoveLogo deletes the stored logo object and clears the URL on the shop.
func (s *shopService) RemoveLogo(ctx context.Context, shopID uuid.UUID) error {
	shop, err := s.shopRepo.GetByID(ctx, shopID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Resource: "shop"}
		}
		return err
	}
	if shop.LogoURL == nil || *shop.LogoURL == "" {
		return &NotFoundError{Resource: "logo"}
	}

	objectName := fmt.Sprintf("%s/logo", shopID.String())
	if err := s.storage.DeleteObject(ctx, logoBucket, objectName); err != nil {
		return err
	}
	return s.shopRepo.UpdateLogoURL(ctx, shopID, "")
}
