package api

import (
	"context"
	"net/http"

	"github.com/example/lablink/internal/application"
)

type resourceService interface {
	ListResources(ctx context.Context) ([]application.Resource, error)
	GetResource(ctx context.Context, id string) (application.Resource, error)
	CreateResource(ctx context.Context, input application.ResourceInput) (application.Resource, error)
	UpdateResource(ctx context.Context, id string, input application.ResourceInput) (application.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

type ResourceDTO struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type,omitempty" yaml:"type,omitempty"`
	LaboratoryID string `json:"laboratoryId,omitempty" yaml:"laboratoryId,omitempty"`
}

func toResourceDTO(r application.Resource) ResourceDTO {
	return ResourceDTO{ID: r.ID, Name: r.Name, Type: r.Type, LaboratoryID: r.LaboratoryID}
}

func resourceInput(f Fields) application.ResourceInput {
	return application.ResourceInput{
		Name:         f.String("name"),
		Type:         f.String("type"),
		LaboratoryID: f.String("laboratoryId"),
	}
}

type ResourceHandler struct {
	service resourceService
}

func NewResourceHandler(service resourceService) *ResourceHandler {
	return &ResourceHandler{service: service}
}

func (h *ResourceHandler) List(ctx context.Context, call *Call) (Response, error) {
	resources, err := h.service.ListResources(ctx)
	if err != nil {
		return Response{}, err
	}
	out := make([]ResourceDTO, 0, len(resources))
	for _, r := range resources {
		out = append(out, toResourceDTO(r))
	}
	return Response{Status: http.StatusOK, Body: out}, nil
}

func (h *ResourceHandler) Create(ctx context.Context, call *Call) (Response, error) {
	resource, err := h.service.CreateResource(ctx, resourceInput(call.Fields))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Body: toResourceDTO(resource)}, nil
}

func (h *ResourceHandler) Get(ctx context.Context, call *Call) (Response, error) {
	resource, err := h.service.GetResource(ctx, call.Param)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toResourceDTO(resource)}, nil
}

func (h *ResourceHandler) Update(ctx context.Context, call *Call) (Response, error) {
	resource, err := h.service.UpdateResource(ctx, call.Param, resourceInput(call.Fields))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toResourceDTO(resource)}, nil
}

func (h *ResourceHandler) Delete(ctx context.Context, call *Call) (Response, error) {
	if err := h.service.DeleteResource(ctx, call.Param); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusNoContent}, nil
}
