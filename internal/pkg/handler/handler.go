package handler

import (
	"github.com/vcentea/crowd-analyze-with-ai/internal/pkg/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}
