package main

import (
	"github.com/hibiken/asynq"

	productJob "productflow-backend/internal/domains/product/job"
	"productflow-backend/internal/domains/product/model"
	"productflow-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	resolveImage *productJob.ResolveImageHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		resolveImage: productJob.NewResolveImageHandler(c.ProductService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(model.TaskResolvePrimaryImage, h.resolveImage.ProcessTask)
}
