package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"github.com/kursadbilgin/collections-engine/internal/service"
)

type LawyerService interface {
	Register(ctx context.Context, lawyer *domain.Lawyer) (*domain.Lawyer, error)
	GetByID(ctx context.Context, id string) (*domain.Lawyer, error)
	GetByCode(ctx context.Context, code string) (*domain.Lawyer, error)
	SelectCandidates(ctx context.Context, filter repository.EligibleFilter) ([]service.Candidate, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	Deactivate(ctx context.Context, id string) error
}

type LawyerHandler struct {
	service LawyerService
}

func NewLawyerHandler(service LawyerService) (*LawyerHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("lawyer service is required")
	}
	return &LawyerHandler{service: service}, nil
}

func RegisterLawyerRoutes(router fiber.Router, service LawyerService) error {
	h, err := NewLawyerHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/lawyers", h.RegisterLawyer)
	v1.Get("/lawyers/candidates", h.ListCandidates)
	v1.Get("/lawyers/code/:code", h.GetLawyerByCode)
	v1.Get("/lawyers/:id", h.GetLawyer)
	v1.Put("/lawyers/:id/availability", h.SetAvailability)
	v1.Delete("/lawyers/:id", h.DeactivateLawyer)

	return nil
}

type registerLawyerRequest struct {
	Name               string  `json:"name"`
	Specialization     string  `json:"specialization"`
	Jurisdiction       string  `json:"jurisdiction"`
	ExperienceYears    int     `json:"experienceYears"`
	MaxCaseLoad        int     `json:"maxCaseLoad"`
	SuccessRatePercent float64 `json:"successRatePercent"`
	IsAvailable        *bool   `json:"isAvailable"`
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

type lawyerResponse struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Specialization     string    `json:"specialization"`
	Jurisdiction       string    `json:"jurisdiction"`
	ExperienceYears    int       `json:"experienceYears"`
	MaxCaseLoad        int       `json:"maxCaseLoad"`
	CurrentCaseLoad    int       `json:"currentCaseLoad"`
	SuccessRatePercent float64   `json:"successRatePercent"`
	IsActive           bool      `json:"isActive"`
	IsAvailable        bool      `json:"isAvailable"`
	CreatedAt          time.Time `json:"createdAt,omitempty"`
	UpdatedAt          time.Time `json:"updatedAt,omitempty"`
}

type candidateResponse struct {
	Lawyer lawyerResponse `json:"lawyer"`
	Score  float64        `json:"score"`
}

func (h *LawyerHandler) RegisterLawyer(c *fiber.Ctx) error {
	var req registerLawyerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	lawyer := domain.Lawyer{
		Name:               strings.TrimSpace(req.Name),
		Specialization:     strings.TrimSpace(req.Specialization),
		Jurisdiction:       strings.TrimSpace(req.Jurisdiction),
		ExperienceYears:    req.ExperienceYears,
		MaxCaseLoad:        req.MaxCaseLoad,
		SuccessRatePercent: req.SuccessRatePercent,
		IsAvailable:        true,
	}
	if req.IsAvailable != nil {
		lawyer.IsAvailable = *req.IsAvailable
	}

	created, err := h.service.Register(c.Context(), &lawyer)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toLawyerResponse(created))
}

func (h *LawyerHandler) GetLawyer(c *fiber.Ctx) error {
	lawyer, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toLawyerResponse(lawyer))
}

func (h *LawyerHandler) GetLawyerByCode(c *fiber.Ctx) error {
	lawyer, err := h.service.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toLawyerResponse(lawyer))
}

func (h *LawyerHandler) ListCandidates(c *fiber.Ctx) error {
	filter := repository.EligibleFilter{
		Specialization: strings.TrimSpace(c.Query("specialization")),
		Jurisdiction:   strings.TrimSpace(c.Query("jurisdiction")),
		Limit:          c.QueryInt("limit", 0),
	}

	candidates, err := h.service.SelectCandidates(c.Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]candidateResponse, 0, len(candidates))
	for i := range candidates {
		responses = append(responses, candidateResponse{
			Lawyer: toLawyerResponse(&candidates[i].Lawyer),
			Score:  candidates[i].Score,
		})
	}

	return c.JSON(responses)
}

func (h *LawyerHandler) SetAvailability(c *fiber.Ctx) error {
	var req setAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.SetAvailability(c.Context(), c.Params("id"), req.Available); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *LawyerHandler) DeactivateLawyer(c *fiber.Ctx) error {
	if err := h.service.Deactivate(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toLawyerResponse(l *domain.Lawyer) lawyerResponse {
	if l == nil {
		return lawyerResponse{}
	}

	return lawyerResponse{
		ID:                 l.ID,
		Code:               l.Code,
		Name:               l.Name,
		Specialization:     l.Specialization,
		Jurisdiction:       l.Jurisdiction,
		ExperienceYears:    l.ExperienceYears,
		MaxCaseLoad:        l.MaxCaseLoad,
		CurrentCaseLoad:    l.CurrentCaseLoad,
		SuccessRatePercent: l.SuccessRatePercent,
		IsActive:           l.IsActive,
		IsAvailable:        l.IsAvailable,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}
