package model

import "github.com/google/uuid"

// =====================================================
// BACKGROUND TASK PAYLOADS
// =====================================================

// Task type names registered with the worker.
const (
	TaskResolvePrimaryImage = "product:resolve_image"
)

// ResolveImagePayload asks the worker to find and attach a primary image
// for a freshly created product.
type ResolveImagePayload struct {
	ProductID uuid.UUID `json:"product_id"`
}
