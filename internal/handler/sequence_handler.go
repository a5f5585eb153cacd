package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/collections-engine/internal/domain"
)

type SequenceAllocator interface {
	Peek(ctx context.Context, prefix, category string) (*domain.SequenceCounter, error)
	IsUnique(ctx context.Context, code string) (bool, error)
}

type SequenceHandler struct {
	allocator SequenceAllocator
}

func NewSequenceHandler(allocator SequenceAllocator) (*SequenceHandler, error) {
	if allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	return &SequenceHandler{allocator: allocator}, nil
}

func RegisterSequenceRoutes(router fiber.Router, allocator SequenceAllocator) error {
	h, err := NewSequenceHandler(allocator)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/sequences/:prefix", h.GetSequenceStatus)
	v1.Get("/codes/:code/unique", h.CheckCodeUnique)

	return nil
}

type sequenceStatusResponse struct {
	Prefix       string `json:"prefix"`
	CategoryCode string `json:"categoryCode,omitempty"`
	DateStamp    string `json:"dateStamp"`
	CurrentValue int64  `json:"currentValue"`
}

type codeUniqueResponse struct {
	Code   string `json:"code"`
	Unique bool   `json:"unique"`
}

// GetSequenceStatus reports today's counter position for a prefix without
// allocating a number.
func (h *SequenceHandler) GetSequenceStatus(c *fiber.Ctx) error {
	counter, err := h.allocator.Peek(c.Context(), c.Params("prefix"), strings.TrimSpace(c.Query("category")))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(sequenceStatusResponse{
		Prefix:       counter.Prefix,
		CategoryCode: counter.CategoryCode,
		DateStamp:    counter.DateStamp,
		CurrentValue: counter.CurrentValue,
	})
}

func (h *SequenceHandler) CheckCodeUnique(c *fiber.Ctx) error {
	code := c.Params("code")
	unique, err := h.allocator.IsUnique(c.Context(), code)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(codeUniqueResponse{
		Code:   code,
		Unique: unique,
	})
}
