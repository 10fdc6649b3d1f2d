package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/zemen-travel/ms-go-payments/app/factory"
	"github.com/zemen-travel/ms-go-payments/app/mapper"
	"github.com/zemen-travel/ms-go-payments/app/provider"
	"github.com/zemen-travel/ms-go-payments/app/service"
	"github.com/zemen-travel/ms-go-payments/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) InitiatePayment(ctx echo.Context) error {
	req, err := types.NewInitiatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.InitiatePayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrGatewayUnavailable), errors.Is(err, provider.ErrGatewayRejected):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Warn("Initiate payment rejected by gateway")
			return c.writeError(ctx, http.StatusBadGateway, "failed to initiate payment")
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Initiate payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.InitiatePaymentResponse{
		TxRef:       item.TxRef,
		CheckoutURL: derefCheckoutURL(item.CheckoutURL),
		Payment:     mapper.PaymentToView(item),
	})
}

func (c *PaymentController) VerifyPayment(ctx echo.Context) error {
	req := types.NewVerifyPaymentRequestFromContext(ctx)
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, output, err := c.paymentService.VerifyPayment(ctx.Request().Context(), req.TxRef)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrGatewayUnavailable), errors.Is(err, provider.ErrGatewayRejected):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Warn("Verify payment rejected by gateway")
			return c.writeError(ctx, http.StatusBadGateway, "failed to verify payment")
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Verify payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.VerifyPaymentResponse{
		Payment: mapper.PaymentToView(item),
		Chapa:   output.Raw,
	})
}

func (c *PaymentController) ListPayments(ctx echo.Context) error {
	req, err := types.NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.paymentService.ListPayments(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List payments failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{Payments: mapper.PaymentsToView(items)})
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func derefCheckoutURL(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
