package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"productflow-backend/internal/domains/product/model"
	"productflow-backend/internal/domains/product/service"
	"productflow-backend/internal/shared/middleware"
	"productflow-backend/internal/shared/response"
)

// ============================================================
// HANDLER STRUCT
// ============================================================
type ProductHandler struct {
	products service.ProductService
	images   service.ImageService
	importer service.BulkImportService
}

func NewProductHandler(products service.ProductService, images service.ImageService, importer service.BulkImportService) *ProductHandler {
	return &ProductHandler{
		products: products,
		images:   images,
		importer: importer,
	}
}

// maxUploadSize bounds multipart uploads (images and import workbooks).
const maxUploadSize = 20 << 20

// ========== CREATE: POST /v1/products ==========
func (h *ProductHandler) Create(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, _ := middleware.RoleFromContext(c)
	p, err := h.products.CreateProduct(c.Request.Context(), role, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, p)
}

// ========== LIST: GET /v1/products?stage=a,b ==========
func (h *ProductHandler) List(c *gin.Context) {
	var stages []model.Stage
	if raw := c.Query("stage"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			stages = append(stages, model.Stage(strings.TrimSpace(s)))
		}
	}

	products, err := h.products.ListProducts(c.Request.Context(), stages)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{Total: len(products)})
}

// ========== GET: GET /v1/products/:id ==========
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ========== DASHBOARD: GET /v1/products/dashboard ==========
func (h *ProductHandler) Dashboard(c *gin.Context) {
	role, _ := middleware.RoleFromContext(c)

	metrics, err := h.products.DashboardMetrics(c.Request.Context(), role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, metrics)
}

// ========== EDIT: POST /v1/products/:id/edits ==========
// Carries a save or submit from an authoring role, with the edit set applied
// to the role's document.
func (h *ProductHandler) SubmitEdit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req model.SubmitEditRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, _ := middleware.RoleFromContext(c)
	p, err := h.products.SubmitEdit(c.Request.Context(), id, role, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ========== REVIEW: POST /v1/products/:id/request-changes ==========
func (h *ProductHandler) RequestChanges(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req model.RequestChangesRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, _ := middleware.RoleFromContext(c)
	p, err := h.products.RequestChanges(c.Request.Context(), id, role, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ========== REVIEW: POST /v1/products/:id/approve ==========
func (h *ProductHandler) Approve(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req model.ApproveRequest
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	role, _ := middleware.RoleFromContext(c)
	p, err := h.products.Approve(c.Request.Context(), id, role, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ========== REVISION RETRY: POST /v1/products/:id/revisions/:section/retry ==========
func (h *ProductHandler) RetryRevision(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	section := c.Param("section")

	suggestion, err := h.products.RetryRevisionSuggestion(c.Request.Context(), id, section)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"section":    section,
		"suggestion": suggestion,
	})
}

// ========== SPECSHEET: POST /v1/products/:id/specsheet/regenerate ==========
func (h *ProductHandler) RegenerateSpecsheet(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	role, _ := middleware.RoleFromContext(c)
	p, err := h.products.RegenerateSpecsheet(c.Request.Context(), id, role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, p)
}

// ========== HISTORY: GET /v1/products/:id/history ==========
func (h *ProductHandler) History(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	entries, err := h.products.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{Total: len(entries)})
}

// ========== IMAGES: POST /v1/products/:id/images ==========
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "image exceeds maximum upload size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		response.InternalServerError(c, "failed to read upload")
		return
	}

	path, isPrimary, err := h.images.Upload(c.Request.Context(), id, fileHeader.Filename, data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"path":       path,
		"is_primary": isPrimary,
	})
}

// ========== IMAGES: DELETE /v1/products/:id/images ==========
// The image path travels in the body; storage keys contain slashes and do
// not survive as path params.
func (h *ProductHandler) DeleteImage(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.images.Delete(c.Request.Context(), id, req.Path); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": req.Path})
}

// ========== IMPORT: POST /v1/products/import ==========
func (h *ProductHandler) BulkImport(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "workbook file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		response.BadRequest(c, "workbook exceeds maximum upload size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer file.Close()

	role, _ := middleware.RoleFromContext(c)
	result, err := h.importer.Import(c.Request.Context(), role, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ========== ADMIN: DELETE /v1/admin/products ==========
func (h *ProductHandler) PurgeAll(c *gin.Context) {
	if err := h.products.PurgeAll(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purged": true})
}

// ============================================================
// HELPERS
// ============================================================

func (h *ProductHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors to HTTP status codes.
func (h *ProductHandler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_SERVER_ERROR"

	switch {
	case errors.Is(err, model.ErrProductNotFound):
		status, code = http.StatusNotFound, model.ErrCodeProductNotFound
	case errors.Is(err, model.ErrIllegalTransition):
		status, code = http.StatusConflict, model.ErrCodeIllegalTransition
	case errors.Is(err, model.ErrVersionMismatch):
		status, code = http.StatusConflict, model.ErrCodeVersionMismatch
	case errors.Is(err, model.ErrInvalidRole):
		status, code = http.StatusForbidden, model.ErrCodeInvalidRole
	case errors.Is(err, model.ErrUnknownSection):
		status, code = http.StatusNotFound, model.ErrCodeUnknownSection
	case errors.Is(err, model.ErrCollaboratorUnavailable):
		status, code = http.StatusBadGateway, model.ErrCodeCollaboratorUnavailable
	default:
		var perr *model.ProductError
		if errors.As(err, &perr) {
			code = perr.Code
			switch perr.Code {
			case model.ErrCodeValidation, model.ErrCodeImportFailed:
				status = http.StatusBadRequest
			case model.ErrCodeStorage:
				status = http.StatusBadGateway
			}
		}
	}

	response.ErrorResponse(c, status, code, err.Error())
}
