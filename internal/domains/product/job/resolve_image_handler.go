package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"productflow-backend/internal/domains/product/model"
	productService "productflow-backend/internal/domains/product/service"
)

// ResolveImageHandler tra cứu primary image cho product mới tạo
type ResolveImageHandler struct {
	products productService.ProductService
}

func NewResolveImageHandler(products productService.ProductService) *ResolveImageHandler {
	return &ResolveImageHandler{
		products: products,
	}
}

// ProcessTask xử lý background job resolve primary image
func (h *ResolveImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload model.ResolveImagePayload

	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ResolveImage payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("product_id", payload.ProductID.String()).
		Msg("Resolving primary product image")

	if err := h.products.ResolvePrimaryImage(ctx, payload.ProductID); err != nil {
		log.Error().
			Err(err).
			Str("product_id", payload.ProductID.String()).
			Msg("Failed to resolve primary image")
		return fmt.Errorf("resolve primary image: %w", err)
	}

	log.Info().
		Str("product_id", payload.ProductID.String()).
		Msg("Primary image resolution finished")

	return nil
}
