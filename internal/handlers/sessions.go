package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"marmitaria/internal/composition"
	"marmitaria/internal/models"
	"marmitaria/internal/notify"
	"marmitaria/internal/order"
)

/* =========================
   REQUEST DTOs
========================= */

type sizeRequest struct {
	Size string `json:"size" binding:"required"`
}

type observationRequest struct {
	Observation string `json:"observation" binding:"max=500"`
}

// NotificationStatus reports how far the notification of an order got.
type NotificationStatus interface {
	Status(ctx context.Context, orderID string) (notify.Status, error)
}

func respondSessionError(c *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, order.ErrSessionNotFound),
		errors.Is(err, order.ErrMarmitaNotFound):
		respondWithError(c, http.StatusNotFound, route, err.Error())
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrEmptyCart):
		respondWithError(c, http.StatusConflict, route, err.Error())
	case errors.Is(err, composition.ErrIncomplete),
		errors.Is(err, composition.ErrNotSelectable),
		errors.Is(err, order.ErrUnknownSize),
		errors.Is(err, order.ErrExtraUnavailable):
		respondWithError(c, http.StatusBadRequest, route, err.Error())
	default:
		logger.Error("session operation failed", zap.String("route", route), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, route, "internal error")
	}
}

func lookupSession(c *gin.Context, reg *order.Registry, route string) (*order.Session, bool) {
	s, err := reg.Get(c.Param("id"))
	if err != nil {
		respondSessionError(c, route, err)
		return nil, false
	}
	return s, true
}

// sessionAction runs op against the session and answers with its view.
func sessionAction(reg *order.Registry, route string, op func(c *gin.Context, s *order.Session) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		s, ok := lookupSession(c, reg, route)
		if !ok {
			return
		}
		if err := op(c, s); err != nil {
			if !c.IsAborted() {
				respondSessionError(c, route, err)
			}
			return
		}
		c.JSON(http.StatusOK, s.View())
	}
}

/* =========================
   SESSION LIFECYCLE
========================= */

func CreateSession(reg *order.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /sessions"
		defer handlePanic(c, route)

		s := reg.Create()
		logger.Debug("session created", zap.String("session", s.ID()))
		c.JSON(http.StatusCreated, s.View())
	}
}

func GetSession(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "GET /sessions/:id", func(*gin.Context, *order.Session) error {
		return nil
	})
}

func ProceedToCheckout(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "POST /sessions/:id/checkout", func(_ *gin.Context, s *order.Session) error {
		return s.ProceedToCheckout()
	})
}

func BackToBuilder(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "POST /sessions/:id/back", func(_ *gin.Context, s *order.Session) error {
		return s.BackToBuilder()
	})
}

func NewOrder(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "POST /sessions/:id/new-order", func(_ *gin.Context, s *order.Session) error {
		return s.NewOrder()
	})
}

/* =========================
   BUILDER
========================= */

func SelectSize(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "PUT /sessions/:id/size", func(c *gin.Context, s *order.Session) error {
		var req sizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return err
		}
		size, err := models.ParseSize(req.Size)
		if err != nil {
			return order.ErrUnknownSize
		}
		return s.SelectSize(size)
	})
}

func ToggleSessionIngredient(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "POST /sessions/:id/ingredients/:ingredientId/toggle", func(c *gin.Context, s *order.Session) error {
		return s.ToggleIngredient(c.Param("ingredientId"))
	})
}

func ToggleSessionExtra(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "POST /sessions/:id/extras/:extraId/toggle", func(c *gin.Context, s *order.Session) error {
		return s.ToggleExtra(c.Param("extraId"))
	})
}

func SetObservation(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "PUT /sessions/:id/observation", func(c *gin.Context, s *order.Session) error {
		var req observationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return err
		}
		return s.SetObservation(req.Observation)
	})
}

func AddMarmita(reg *order.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /sessions/:id/marmitas"
		defer handlePanic(c, route)

		s, ok := lookupSession(c, reg, route)
		if !ok {
			return
		}
		item, err := s.AddMarmita()
		if err != nil {
			respondSessionError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"marmita": item,
			"session": s.View(),
		})
	}
}

func RemoveMarmita(reg *order.Registry) gin.HandlerFunc {
	return sessionAction(reg, "DELETE /sessions/:id/marmitas/:marmitaId", func(c *gin.Context, s *order.Session) error {
		return s.RemoveMarmita(c.Param("marmitaId"))
	})
}

/* =========================
   CHECKOUT
========================= */

func GetQuote(reg *order.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /sessions/:id/quote"
		defer handlePanic(c, route)

		s, ok := lookupSession(c, reg, route)
		if !ok {
			return
		}

		method := models.DeliveryMethod(c.DefaultQuery("deliveryMethod", string(models.DeliveryMethodPickup)))
		if method != models.DeliveryMethodDelivery && method != models.DeliveryMethodPickup {
			respondWithError(c, http.StatusBadRequest, route, "deliveryMethod must be delivery or pickup")
			return
		}

		var changeFor *decimal.Decimal
		if raw := c.Query("changeFor"); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "changeFor must be a decimal amount")
				return
			}
			changeFor = &d
		}

		c.JSON(http.StatusOK, s.Quote(method, c.Query("neighborhood"), changeFor))
	}
}

func CompleteOrder(reg *order.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /sessions/:id/complete"
		defer handlePanic(c, route)

		s, ok := lookupSession(c, reg, route)
		if !ok {
			return
		}

		var input order.CheckoutInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conf, err := s.Complete(ctx, input)
		if err != nil {
			var validationErrors validator.ValidationErrors
			if errors.As(err, &validationErrors) {
				respondValidationError(c, err)
				return
			}
			respondSessionError(c, route, err)
			return
		}

		for _, w := range conf.Warnings {
			logger.Warn("order confirmed with warning",
				zap.String("session", s.ID()),
				zap.String("order", conf.Order.ID),
				zap.String("warning", w))
		}
		c.JSON(http.StatusCreated, conf)
	}
}

func GetNotification(reg *order.Registry, statuses NotificationStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /sessions/:id/notification"
		defer handlePanic(c, route)

		s, ok := lookupSession(c, reg, route)
		if !ok {
			return
		}
		confirmed, ok := s.Order()
		if !ok {
			respondWithError(c, http.StatusNotFound, route, "order not confirmed")
			return
		}
		if statuses == nil {
			respondWithError(c, http.StatusNotFound, route, "notifications disabled")
			return
		}

		status, err := statuses.Status(c.Request.Context(), confirmed.ID)
		if errors.Is(err, notify.ErrUnknownOrder) {
			respondWithError(c, http.StatusNotFound, route, err.Error())
			return
		}
		if err != nil {
			logger.Error("notification status failed", zap.String("order", confirmed.ID), zap.Error(err))
			respondWithError(c, http.StatusBadGateway, route, "notification status unavailable")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orderId": confirmed.ID,
			"status":  status,
		})
	}
}
