package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/service"
)

type CaseService interface {
	Create(ctx context.Context, legalCase *domain.LegalCase) (*domain.LegalCase, error)
	GetByID(ctx context.Context, id string) (*domain.LegalCase, error)
	GetByCode(ctx context.Context, code string) (*domain.LegalCase, error)
	GetActiveAssignment(ctx context.Context, caseID string) (*domain.CaseAssignment, error)
	AssignLawyer(ctx context.Context, req service.AssignmentRequest) (*domain.CaseAssignment, error)
	Close(ctx context.Context, caseID string) error
}

type CaseHandler struct {
	service CaseService
}

func NewCaseHandler(service CaseService) (*CaseHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("case service is required")
	}
	return &CaseHandler{service: service}, nil
}

func RegisterCaseRoutes(router fiber.Router, service CaseService) error {
	h, err := NewCaseHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/cases", h.CreateCase)
	v1.Get("/cases/code/:code", h.GetCaseByCode)
	v1.Get("/cases/:id", h.GetCase)
	v1.Post("/cases/:id/assignment", h.AssignLawyer)
	v1.Get("/cases/:id/assignment", h.GetActiveAssignment)
	v1.Post("/cases/:id/close", h.CloseCase)

	return nil
}

type createCaseRequest struct {
	LoanAccountNumber string     `json:"loanAccountNumber"`
	BorrowerName      string     `json:"borrowerName"`
	CaseType          string     `json:"caseType"`
	CourtName         string     `json:"courtName"`
	FiledDate         *time.Time `json:"filedDate"`
}

type assignLawyerRequest struct {
	// LawyerID targets a specific lawyer; leave empty for automatic selection.
	LawyerID       string `json:"lawyerId"`
	Specialization string `json:"specialization"`
	Jurisdiction   string `json:"jurisdiction"`
}

type caseResponse struct {
	ID                string     `json:"id"`
	CaseCode          string     `json:"caseCode"`
	LoanAccountNumber string     `json:"loanAccountNumber"`
	BorrowerName      string     `json:"borrowerName"`
	CaseType          string     `json:"caseType"`
	CourtName         string     `json:"courtName,omitempty"`
	FiledDate         *time.Time `json:"filedDate,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt,omitempty"`
	UpdatedAt         time.Time  `json:"updatedAt,omitempty"`
}

type assignmentResponse struct {
	ID            string    `json:"id"`
	CaseID        string    `json:"caseId"`
	LawyerID      string    `json:"lawyerId"`
	AssignedAt    time.Time `json:"assignedAt"`
	WorkloadScore float64   `json:"workloadScore"`
	Status        string    `json:"status"`
}

func (h *CaseHandler) CreateCase(c *fiber.Ctx) error {
	var req createCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	legalCase := domain.LegalCase{
		LoanAccountNumber: strings.TrimSpace(req.LoanAccountNumber),
		BorrowerName:      strings.TrimSpace(req.BorrowerName),
		CaseType:          strings.TrimSpace(req.CaseType),
		CourtName:         strings.TrimSpace(req.CourtName),
		FiledDate:         req.FiledDate,
	}

	created, err := h.service.Create(c.Context(), &legalCase)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toCaseResponse(created))
}

func (h *CaseHandler) GetCase(c *fiber.Ctx) error {
	legalCase, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toCaseResponse(legalCase))
}

func (h *CaseHandler) GetCaseByCode(c *fiber.Ctx) error {
	legalCase, err := h.service.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toCaseResponse(legalCase))
}

func (h *CaseHandler) AssignLawyer(c *fiber.Ctx) error {
	var req assignLawyerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.AssignLawyer(c.Context(), service.AssignmentRequest{
		CaseID:         c.Params("id"),
		LawyerID:       strings.TrimSpace(req.LawyerID),
		Specialization: strings.TrimSpace(req.Specialization),
		Jurisdiction:   strings.TrimSpace(req.Jurisdiction),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAssignmentResponse(assignment))
}

func (h *CaseHandler) GetActiveAssignment(c *fiber.Ctx) error {
	assignment, err := h.service.GetActiveAssignment(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toAssignmentResponse(assignment))
}

func (h *CaseHandler) CloseCase(c *fiber.Ctx) error {
	if err := h.service.Close(c.Context(), c.Params("id")); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func toCaseResponse(lc *domain.LegalCase) caseResponse {
	if lc == nil {
		return caseResponse{}
	}

	return caseResponse{
		ID:                lc.ID,
		CaseCode:          lc.CaseCode,
		LoanAccountNumber: lc.LoanAccountNumber,
		BorrowerName:      lc.BorrowerName,
		CaseType:          lc.CaseType,
		CourtName:         lc.CourtName,
		FiledDate:         lc.FiledDate,
		Status:            lc.Status.String(),
		CreatedAt:         lc.CreatedAt,
		UpdatedAt:         lc.UpdatedAt,
	}
}

func toAssignmentResponse(a *domain.CaseAssignment) assignmentResponse {
	if a == nil {
		return assignmentResponse{}
	}

	return assignmentResponse{
		ID:            a.ID,
		CaseID:        a.CaseID,
		LawyerID:      a.LawyerID,
		AssignedAt:    a.AssignedAt,
		WorkloadScore: a.WorkloadScoreAtAssignment,
		Status:        a.Status.String(),
	}
}
