package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"paygate/internal/payments"
)

type PaymentStatusHandler struct {
	service *payments.Service
}

func NewPaymentStatusHandler(service *payments.Service) *PaymentStatusHandler {
	return &PaymentStatusHandler{
		service: service,
	}
}

func (h *PaymentStatusHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	// An unparsable id is treated as an unknown payment, not a bad request.
	p, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			return c.JSON(http.StatusNotFound, envelope{
				Status:  "error",
				Message: "Payment not found",
			})
		}
		c.Logger().Errorf("error while retrieving payment: %v", err)
		return c.JSON(http.StatusInternalServerError, envelope{
			Status:  "error",
			Message: "Error retrieving payment",
		})
	}

	return c.JSON(http.StatusOK, envelope{
		Status:  "success",
		Message: "Payment details retrieved successfully",
		Payment: newPaymentView(p),
	})
}
