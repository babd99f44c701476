package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// SERVICE INTERFACES
// =====================================================

// ProductService is the aggregate API exposed to the HTTP layer. Every
// operation takes the acting role explicitly.
type ProductService interface {
	CreateProduct(ctx context.Context, role model.Role, req model.CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, stages []model.Stage) ([]*model.Product, error)
	DashboardMetrics(ctx context.Context, role model.Role) (*model.DashboardMetrics, error)

	// Workflow operations
	SubmitEdit(ctx context.Context, id uuid.UUID, role model.Role, req model.SubmitEditRequest) (*model.Product, error)
	RequestChanges(ctx context.Context, id uuid.UUID, role model.Role, req model.RequestChangesRequest) (*model.Product, error)
	Approve(ctx context.Context, id uuid.UUID, role model.Role, req model.ApproveRequest) (*model.Product, error)
	RetryRevisionSuggestion(ctx context.Context, id uuid.UUID, section string) (interface{}, error)
	RegenerateSpecsheet(ctx context.Context, id uuid.UUID, role model.Role) (*model.Product, error)

	// Background work
	ResolvePrimaryImage(ctx context.Context, id uuid.UUID) error

	// History and administration
	History(ctx context.Context, id uuid.UUID) ([]*model.HistoryEntry, error)
	PurgeAll(ctx context.Context) error
}

// ImageService manages the aggregate's image references and their stored
// files.
type ImageService interface {
	Upload(ctx context.Context, productID uuid.UUID, filename string, data []byte) (path string, isPrimary bool, err error)
	Delete(ctx context.Context, productID uuid.UUID, path string) error
}

// BulkImportService creates draft products from an uploaded spreadsheet.
type BulkImportService interface {
	Import(ctx context.Context, role model.Role, file io.Reader) (*BulkImportResult, error)
}

// BulkImportResult summarizes one spreadsheet import.
type BulkImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// =====================================================
// COLLABORATOR CONTRACTS
// =====================================================

// ContentGenerator is the external content-generation collaborator. Output
// must match the input shape (list in, list out; map in, map out); the
// service repairs or discards anything else at the boundary.
type ContentGenerator interface {
	GenerateSectionRevision(ctx context.Context, sectionName string, originalContent interface{}, comment string) (interface{}, error)
	GenerateDerivedDocument(ctx context.Context, source model.DocumentTree) (model.DocumentTree, error)
}

// ImageResolver finds a public image for a product identity. An empty
// reference means none found; that is not an error.
type ImageResolver interface {
	FindPrimaryImage(ctx context.Context, identity model.ProductIdentity) (string, error)
}

// ObjectStorage is the narrow slice of the blob store the image service
// needs. Satisfied by storage.MinIOStorage.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	RemoveFolder(ctx context.Context, prefix string) error
}
