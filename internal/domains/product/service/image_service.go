package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/internal/domains/product/repository"
	"productflow-backend/internal/infrastructure/storage"
)

// =====================================================
// IMAGE SERVICE IMPLEMENTATION
// =====================================================

type imageService struct {
	repo      repository.ProductRepository
	storage   ObjectStorage
	processor *storage.ImageProcessor
}

// NewImageService creates the image management service.
func NewImageService(repo repository.ProductRepository, objectStorage ObjectStorage, processor *storage.ImageProcessor) ImageService {
	return &imageService{
		repo:      repo,
		storage:   objectStorage,
		processor: processor,
	}
}

// Upload validates and stores an image for a product. The first image
// becomes the primary reference; later ones append to the additional list.
func (s *imageService) Upload(ctx context.Context, productID uuid.UUID, filename string, data []byte) (string, bool, error) {
	if err := s.processor.ValidateImage(data); err != nil {
		return "", false, model.NewProductError(model.ErrCodeValidation, "invalid image upload", err)
	}

	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return "", false, err
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := fmt.Sprintf("%s%s/%d_original%s", storagePrefix, productID, time.Now().UnixNano(), ext)

	if _, err := s.storage.Upload(ctx, key, data, contentTypeFor(ext)); err != nil {
		return "", false, model.NewProductError(model.ErrCodeStorage, "failed to store image", err)
	}

	// Variants are presentation-only; a resize failure never blocks the upload.
	if variants, err := s.processor.ProcessImage(data); err == nil {
		for name, variantData := range variants {
			variantKey := fmt.Sprintf("%s%s/%d_%s.jpg", storagePrefix, productID, time.Now().UnixNano(), name)
			if _, err := s.storage.Upload(ctx, variantKey, variantData, "image/jpeg"); err != nil {
				log.Warn().Err(err).Str("variant", name).Msg("Failed to store image variant")
			}
		}
	} else {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("Failed to build image variants")
	}

	work := p.Clone()
	isPrimary := work.ImagePath == nil
	if isPrimary {
		work.ImagePath = &key
	} else {
		work.AdditionalImages = append(work.AdditionalImages, key)
	}

	if err := s.repo.Update(ctx, work); err != nil {
		return "", false, err
	}
	return key, isPrimary, nil
}

// Delete removes one image reference. Deleting the primary image promotes
// the first additional image into its place.
func (s *imageService) Delete(ctx context.Context, productID uuid.UUID, imagePath string) error {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	work := p.Clone()
	switch {
	case work.ImagePath != nil && *work.ImagePath == imagePath:
		work.ImagePath = nil
		if len(work.AdditionalImages) > 0 {
			promoted := work.AdditionalImages[0]
			work.ImagePath = &promoted
			work.AdditionalImages = work.AdditionalImages[1:]
		}
	default:
		found := false
		kept := work.AdditionalImages[:0]
		for _, img := range work.AdditionalImages {
			if img == imagePath {
				found = true
				continue
			}
			kept = append(kept, img)
		}
		if !found {
			return model.NewProductError(model.ErrCodeValidation,
				"image not attached to product: "+imagePath, model.ErrMalformedField)
		}
		work.AdditionalImages = kept
	}

	if err := s.repo.Update(ctx, work); err != nil {
		return err
	}

	// Best-effort blob cleanup; the reference is already gone.
	if err := s.storage.Delete(ctx, imagePath); err != nil {
		log.Warn().Err(err).Str("key", imagePath).Msg("Failed to delete stored image")
	}
	return nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
