package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"staybook/internal/service"
)

// HotelHandler mantiene dependencias para endpoints del catalogo.
type HotelHandler struct {
	logger    *zap.Logger
	hotelServ *service.HotelService
}

func NewHotelHandler(logger *zap.Logger, hotelServ *service.HotelService) *HotelHandler {
	return &HotelHandler{
		logger:    logger,
		hotelServ: hotelServ,
	}
}

// List maneja GET /hotels. Acepta ?city= para filtrar.
func (h *HotelHandler) List(c *gin.Context) {
	hotels, err := h.hotelServ.List(c.Request.Context(), c.Query("city"))
	if err != nil {
		h.logger.Error("list hotels failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list hotels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": hotels})
}

// Search maneja GET /hotels/search?q=.
func (h *HotelHandler) Search(c *gin.Context) {
	hotels, err := h.hotelServ.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.logger.Error("search hotels failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search hotels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotels": hotels})
}

// Get maneja GET /hotels/:id.
func (h *HotelHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	hotel, err := h.hotelServ.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrHotelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hotel not found"})
			return
		}
		h.logger.Error("get hotel failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get hotel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotel": hotel})
}
