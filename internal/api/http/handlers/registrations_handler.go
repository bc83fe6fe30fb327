package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/chat-registration/internal/api/dto"
	"github.com/spec-kit/chat-registration/internal/domain"
	apperrors "github.com/spec-kit/chat-registration/pkg/util"
)

// Registrar runs a customer registration.
type Registrar interface {
	Register(ctx context.Context, req domain.RegistrationRequest) (*domain.RegistrationResult, error)
}

// RegistrationsHandler exposes the customer registration endpoint.
type RegistrationsHandler struct {
	registrar Registrar
}

// NewRegistrationsHandler constructs handler.
func NewRegistrationsHandler(registrar Registrar) *RegistrationsHandler {
	return &RegistrationsHandler{registrar: registrar}
}

// Register handles POST /registrations.
func (h *RegistrationsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload: firstName and lastName must be strings")
	}
	if req.FirstName == nil {
		return apperrors.NewValidationError("firstName is required")
	}
	if req.LastName == nil {
		return apperrors.NewValidationError("lastName is required")
	}

	result, err := h.registrar.Register(c.UserContext(), domain.RegistrationRequest{
		FirstName: *req.FirstName,
		LastName:  *req.LastName,
	})
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusOK).JSON(dto.RegistrationResponse{
		CustomerID:    result.CustomerID,
		CustomerToken: result.CustomerToken,
		ChannelID:     result.ChannelID,
		APIKey:        result.APIKey,
	})
}
