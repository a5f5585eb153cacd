package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/collections-engine/internal/domain"
	"github.com/kursadbilgin/collections-engine/internal/repository"
	"github.com/kursadbilgin/collections-engine/internal/service"
)

type NoticeService interface {
	Create(ctx context.Context, notice *domain.LegalNotice) (*domain.LegalNotice, error)
	GetByID(ctx context.Context, id string) (*domain.LegalNotice, error)
	GetByCode(ctx context.Context, code string) (*domain.LegalNotice, error)
	List(ctx context.Context, params repository.NoticeListParams) ([]domain.LegalNotice, int64, error)
	GetDeliveries(ctx context.Context, noticeID string) ([]domain.NoticeDelivery, error)
	RecordAcknowledgement(ctx context.Context, params service.AcknowledgementParams) (*domain.NoticeAcknowledgement, error)
	VerifyAcknowledgement(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error)
	GetAcknowledgement(ctx context.Context, noticeID string) (*domain.NoticeAcknowledgement, error)
}

type NoticeHandler struct {
	service NoticeService
}

func NewNoticeHandler(service NoticeService) (*NoticeHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notice service is required")
	}
	return &NoticeHandler{service: service}, nil
}

func RegisterNoticeRoutes(router fiber.Router, service NoticeService) error {
	h, err := NewNoticeHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/notices", h.CreateNotice)
	v1.Get("/notices", h.ListNotices)
	v1.Get("/notices/code/:code", h.GetNoticeByCode)
	v1.Get("/notices/:id", h.GetNotice)
	v1.Get("/notices/:id/deliveries", h.GetDeliveries)
	v1.Post("/notices/:id/acknowledgement", h.RecordAcknowledgement)
	v1.Get("/notices/:id/acknowledgement", h.GetAcknowledgement)
	v1.Post("/notices/:id/acknowledgement/verify", h.VerifyAcknowledgement)

	return nil
}

type createNoticeRequest struct {
	LoanAccountNumber  string   `json:"loanAccountNumber"`
	BorrowerName       string   `json:"borrowerName"`
	CaseID             *string  `json:"caseId"`
	DPDDays            int      `json:"dpdDays"`
	TriggerType        string   `json:"triggerType"`
	CommunicationModes []string `json:"communicationModes"`
	Content            string   `json:"content"`
	// Status may be set to DRAFT to stage the notice; defaults to GENERATED.
	Status string `json:"status"`
}

type recordAcknowledgementRequest struct {
	AcknowledgedBy      string    `json:"acknowledgedBy"`
	AcknowledgementDate time.Time `json:"acknowledgementDate"`
	Mode                string    `json:"mode"`
	Remarks             string    `json:"remarks"`
	// ProofDocument carries the proof file base64-encoded; optional.
	ProofDocument string `json:"proofDocument"`
	ProofFileName string `json:"proofFileName"`
}

type noticeResponse struct {
	ID                   string     `json:"id"`
	NoticeCode           string     `json:"noticeCode"`
	CaseID               *string    `json:"caseId,omitempty"`
	LoanAccountNumber    string     `json:"loanAccountNumber"`
	BorrowerName         string     `json:"borrowerName"`
	DPDDays              int        `json:"dpdDays"`
	TriggerType          string     `json:"triggerType"`
	CommunicationModes   []string   `json:"communicationModes,omitempty"`
	Content              string     `json:"content"`
	NoticeGenerationDate time.Time  `json:"noticeGenerationDate"`
	ExpiryDate           *time.Time `json:"expiryDate,omitempty"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"createdAt,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt,omitempty"`
}

type listNoticesResponse struct {
	Data []noticeResponse `json:"data"`
	Meta listMeta         `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type deliveryResponse struct {
	ID                string    `json:"id"`
	Mode              string    `json:"mode"`
	Recipient         string    `json:"recipient"`
	Succeeded         bool      `json:"succeeded"`
	StatusCode        *int      `json:"statusCode,omitempty"`
	ProviderMessageID *string   `json:"providerMessageId,omitempty"`
	Error             *string   `json:"error,omitempty"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
}

type acknowledgementResponse struct {
	ID                  string    `json:"id"`
	AcknowledgementCode string    `json:"acknowledgementCode"`
	NoticeID            string    `json:"noticeId"`
	AcknowledgedBy      string    `json:"acknowledgedBy"`
	AcknowledgementDate time.Time `json:"acknowledgementDate"`
	AcknowledgementMode string    `json:"acknowledgementMode"`
	ProofDocumentPath   *string   `json:"proofDocumentPath,omitempty"`
	Remarks             *string   `json:"remarks,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt,omitempty"`
}

func (h *NoticeHandler) CreateNotice(c *fiber.Ctx) error {
	var req createNoticeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	notice, err := requestToDomainNotice(req)
	if err != nil {
		return toHTTPError(err)
	}

	created, err := h.service.Create(c.Context(), &notice)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toNoticeResponse(created))
}

func (h *NoticeHandler) GetNotice(c *fiber.Ctx) error {
	notice, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toNoticeResponse(notice))
}

func (h *NoticeHandler) GetNoticeByCode(c *fiber.Ctx) error {
	notice, err := h.service.GetByCode(c.Context(), c.Params("code"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toNoticeResponse(notice))
}

func (h *NoticeHandler) ListNotices(c *fiber.Ctx) error {
	params, err := noticeListParamsFromQuery(c)
	if err != nil {
		return toHTTPError(err)
	}

	notices, total, err := h.service.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]noticeResponse, 0, len(notices))
	for i := range notices {
		responses = append(responses, toNoticeResponse(&notices[i]))
	}

	return c.JSON(listNoticesResponse{
		Data: responses,
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *NoticeHandler) GetDeliveries(c *fiber.Ctx) error {
	deliveries, err := h.service.GetDeliveries(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]deliveryResponse, 0, len(deliveries))
	for _, d := range deliveries {
		responses = append(responses, deliveryResponse{
			ID:                d.ID,
			Mode:              d.Mode.String(),
			Recipient:         d.Recipient,
			Succeeded:         d.Succeeded,
			StatusCode:        d.StatusCode,
			ProviderMessageID: d.ProviderMessageID,
			Error:             d.Error,
			CreatedAt:         d.CreatedAt,
		})
	}

	return c.JSON(responses)
}

func (h *NoticeHandler) RecordAcknowledgement(c *fiber.Ctx) error {
	var req recordAcknowledgementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	mode, err := domain.ParseCommunicationModeFromString(req.Mode)
	if err != nil {
		return toHTTPError(err)
	}

	params := service.AcknowledgementParams{
		NoticeID:            c.Params("id"),
		AcknowledgedBy:      strings.TrimSpace(req.AcknowledgedBy),
		AcknowledgementDate: req.AcknowledgementDate,
		Mode:                mode,
		Remarks:             req.Remarks,
		ProofFileName:       strings.TrimSpace(req.ProofFileName),
	}

	if req.ProofDocument != "" {
		content, err := base64.StdEncoding.DecodeString(req.ProofDocument)
		if err != nil {
			return toHTTPError(fmt.Errorf("%w: proofDocument must be base64", domain.ErrValidation))
		}
		params.ProofDocument = content
	}

	ack, err := h.service.RecordAcknowledgement(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAcknowledgementResponse(ack))
}

func (h *NoticeHandler) GetAcknowledgement(c *fiber.Ctx) error {
	ack, err := h.service.GetAcknowledgement(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toAcknowledgementResponse(ack))
}

func (h *NoticeHandler) VerifyAcknowledgement(c *fiber.Ctx) error {
	ack, err := h.service.VerifyAcknowledgement(c.Context(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(toAcknowledgementResponse(ack))
}

func noticeListParamsFromQuery(c *fiber.Ctx) (repository.NoticeListParams, error) {
	page, pageSize := parsePagination(c)
	params := repository.NoticeListParams{
		Page:              page,
		PageSize:          pageSize,
		LoanAccountNumber: strings.TrimSpace(c.Query("loanAccountNumber")),
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseNoticeStatusFromString(rawStatus)
		if err != nil {
			return repository.NoticeListParams{}, err
		}
		params.Status = &status
	}

	from, err := parseRFC3339Query(c.Query("from"), "from")
	if err != nil {
		return repository.NoticeListParams{}, err
	}
	to, err := parseRFC3339Query(c.Query("to"), "to")
	if err != nil {
		return repository.NoticeListParams{}, err
	}
	params.From = from
	params.To = to

	return params, nil
}

func requestToDomainNotice(req createNoticeRequest) (domain.LegalNotice, error) {
	modes := make([]domain.CommunicationMode, 0, len(req.CommunicationModes))
	for _, raw := range req.CommunicationModes {
		mode, err := domain.ParseCommunicationModeFromString(raw)
		if err != nil {
			return domain.LegalNotice{}, err
		}
		modes = append(modes, mode)
	}

	notice := domain.LegalNotice{
		LoanAccountNumber:  strings.TrimSpace(req.LoanAccountNumber),
		BorrowerName:       strings.TrimSpace(req.BorrowerName),
		CaseID:             req.CaseID,
		DPDDays:            req.DPDDays,
		CommunicationModes: modes,
		Content:            strings.TrimSpace(req.Content),
	}

	if raw := strings.TrimSpace(req.TriggerType); raw != "" {
		trigger, err := domain.ParseTriggerTypeFromString(raw)
		if err != nil {
			return domain.LegalNotice{}, err
		}
		notice.TriggerType = trigger
	}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := domain.ParseNoticeStatusFromString(raw)
		if err != nil {
			return domain.LegalNotice{}, err
		}
		notice.Status = status
	}

	return notice, nil
}

func toNoticeResponse(n *domain.LegalNotice) noticeResponse {
	if n == nil {
		return noticeResponse{}
	}

	modes := make([]string, 0, len(n.CommunicationModes))
	for _, mode := range n.CommunicationModes {
		modes = append(modes, mode.String())
	}

	return noticeResponse{
		ID:                   n.ID,
		NoticeCode:           n.NoticeCode,
		CaseID:               n.CaseID,
		LoanAccountNumber:    n.LoanAccountNumber,
		BorrowerName:         n.BorrowerName,
		DPDDays:              n.DPDDays,
		TriggerType:          n.TriggerType.String(),
		CommunicationModes:   modes,
		Content:              n.Content,
		NoticeGenerationDate: n.NoticeGenerationDate,
		ExpiryDate:           n.ExpiryDate,
		Status:               n.Status.String(),
		CreatedAt:            n.CreatedAt,
		UpdatedAt:            n.UpdatedAt,
	}
}

func toAcknowledgementResponse(a *domain.NoticeAcknowledgement) acknowledgementResponse {
	if a == nil {
		return acknowledgementResponse{}
	}

	return acknowledgementResponse{
		ID:                  a.ID,
		AcknowledgementCode: a.AcknowledgementCode,
		NoticeID:            a.NoticeID,
		AcknowledgedBy:      a.AcknowledgedBy,
		AcknowledgementDate: a.AcknowledgementDate,
		AcknowledgementMode: a.AcknowledgementMode.String(),
		ProofDocumentPath:   a.ProofDocumentPath,
		Remarks:             a.Remarks,
		Status:              a.Status.String(),
		CreatedAt:           a.CreatedAt,
	}
}
