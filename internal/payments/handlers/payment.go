package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"paygate/internal/gateway"
	"paygate/internal/payments"
)

type CreatePaymentHandler struct {
	service *payments.Service
}

func NewCreatePaymentHandler(service *payments.Service) *CreatePaymentHandler {
	return &CreatePaymentHandler{
		service: service,
	}
}

func (h *CreatePaymentHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("payment-handler")
	ctx, span := tracer.Start(ctx, "create-payment-handler", trace.WithAttributes(
		attribute.String("handler", "create-payment"),
	))
	defer span.End()

	var req payments.CreateRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return c.JSON(http.StatusBadRequest, envelope{
			Status:  "error",
			Message: "Invalid request body",
		})
	}

	p, err := h.service.Create(ctx, req)
	if err != nil {
		var validationErr *payments.ValidationError
		var declineErr *gateway.DeclineError
		var networkErr *gateway.NetworkError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, envelope{
				Status:  "error",
				Message: "Invalid payment data",
				Errors:  validationErr.Fields,
			})
		case errors.As(err, &declineErr):
			return c.JSON(http.StatusBadRequest, envelope{
				Status:  "error",
				Message: declineErr.Message,
				Errors:  declineErr.Fields,
			})
		case errors.As(err, &networkErr):
			return c.JSON(http.StatusBadRequest, envelope{
				Status:  "error",
				Message: networkErr.Error(),
			})
		default:
			span.RecordError(err)
			c.Logger().Errorf("error while creating payment: %v", err)
			return c.JSON(http.StatusInternalServerError, envelope{
				Status:  "error",
				Message: "Error creating payment",
			})
		}
	}

	span.SetAttributes(attribute.String("payment.id", p.ID.String()))

	return c.JSON(http.StatusCreated, envelope{
		Status:  "success",
		Message: "Payment created successfully",
		Payment: newPaymentView(p),
	})
}
