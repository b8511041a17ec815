package api

import (
	"context"
	"net/http"

	"github.com/example/lablink/internal/application"
)

type laboratoryService interface {
	ListLaboratories(ctx context.Context) ([]application.Laboratory, error)
	GetLaboratory(ctx context.Context, id string) (application.Laboratory, error)
	CreateLaboratory(ctx context.Context, input application.LaboratoryInput) (application.Laboratory, error)
	UpdateLaboratory(ctx context.Context, id string, input application.LaboratoryInput) (application.Laboratory, error)
	DeleteLaboratory(ctx context.Context, id string) error
}

type LaboratoryDTO struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

func toLaboratoryDTO(l application.Laboratory) LaboratoryDTO {
	return LaboratoryDTO{ID: l.ID, Name: l.Name, Description: l.Description, Location: l.Location}
}

func laboratoryInput(f Fields) application.LaboratoryInput {
	return application.LaboratoryInput{
		Name:        f.String("name"),
		Description: f.String("description"),
		Location:    f.String("location"),
	}
}

type LaboratoryHandler struct {
	service laboratoryService
}

func NewLaboratoryHandler(service laboratoryService) *LaboratoryHandler {
	return &LaboratoryHandler{service: service}
}

func (h *LaboratoryHandler) List(ctx context.Context, call *Call) (Response, error) {
	labs, err := h.service.ListLaboratories(ctx)
	if err != nil {
		return Response{}, err
	}
	out := make([]LaboratoryDTO, 0, len(labs))
	for _, l := range labs {
		out = append(out, toLaboratoryDTO(l))
	}
	return Response{Status: http.StatusOK, Body: out}, nil
}

func (h *LaboratoryHandler) Create(ctx context.Context, call *Call) (Response, error) {
	lab, err := h.service.CreateLaboratory(ctx, laboratoryInput(call.Fields))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusCreated, Body: toLaboratoryDTO(lab)}, nil
}

func (h *LaboratoryHandler) Get(ctx context.Context, call *Call) (Response, error) {
	lab, err := h.service.GetLaboratory(ctx, call.Param)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toLaboratoryDTO(lab)}, nil
}

func (h *LaboratoryHandler) Update(ctx context.Context, call *Call) (Response, error) {
	lab, err := h.service.UpdateLaboratory(ctx, call.Param, laboratoryInput(call.Fields))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusOK, Body: toLaboratoryDTO(lab)}, nil
}

func (h *LaboratoryHandler) Delete(ctx context.Context, call *Call) (Response, error) {
	if err := h.service.DeleteLaboratory(ctx, call.Param); err != nil {
		return Response{}, err
	}
	return Response{Status: http.StatusNoContent}, nil
}
