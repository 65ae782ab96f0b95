package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/domain"
	"staybook/internal/service"
)

const stayDateLayout = "2006-01-02"

// BookingHandler mantiene dependencias para endpoints de bookings.
type BookingHandler struct {
	logger      *zap.Logger
	bookingServ *service.BookingService
}

func NewBookingHandler(logger *zap.Logger, bookingServ *service.BookingService) *BookingHandler {
	return &BookingHandler{
		logger:      logger,
		bookingServ: bookingServ,
	}
}

// Create maneja POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		RoomID   int64  `json:"room_id" binding:"required"`
		CheckIn  string `json:"check_in" binding:"required"`
		CheckOut string `json:"check_out" binding:"required"`
		Adults   int    `json:"adults" binding:"required,min=1"`
		Children int    `json:"children" binding:"min=0"`
		Infants  int    `json:"infants" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create booking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	checkIn, err := time.Parse(stayDateLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in must use format yyyy-MM-dd"})
		return
	}
	checkOut, err := time.Parse(stayDateLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must use format yyyy-MM-dd"})
		return
	}

	booking, err := h.bookingServ.CreateBooking(c.Request.Context(), claims.UserID, service.CreateBookingInput{
		RoomID:   req.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Adults:   req.Adults,
		Children: req.Children,
		Infants:  req.Infants,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, service.ErrRoomUnavailable), errors.Is(err, service.ErrInvalidStay):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("create booking failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// List maneja GET /bookings.
func (h *BookingHandler) List(c *gin.Context) {
	h.list(c, h.bookingServ.ListBookings)
}

// Upcoming maneja GET /bookings/upcoming.
func (h *BookingHandler) Upcoming(c *gin.Context) {
	h.list(c, h.bookingServ.ListUpcoming)
}

// Past maneja GET /bookings/past.
func (h *BookingHandler) Past(c *gin.Context) {
	h.list(c, h.bookingServ.ListPast)
}

// Get maneja GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	booking, err := h.bookingServ.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.Error("get booking failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get booking"})
		return
	}
	// Un booking ajeno no se expone.
	if booking.UserID != claims.UserID {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Cancel maneja POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	booking, err := h.bookingServ.CancelBooking(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, service.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not booking owner"})
		case errors.Is(err, service.ErrBookingCancelled):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking already cancelled"})
		default:
			h.logger.Error("cancel booking failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Review maneja POST /bookings/:id/review.
func (h *BookingHandler) Review(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid review request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	review, err := h.bookingServ.CreateReview(c.Request.Context(), claims.UserID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, service.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not booking owner"})
		case errors.Is(err, service.ErrBookingNotCompleted),
			errors.Is(err, service.ErrAlreadyReviewed),
			errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("create review failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create review"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func (h *BookingHandler) list(c *gin.Context, fetch func(ctx context.Context, userID string) ([]domain.BookingView, error)) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	bookings, err := fetch(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list bookings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
