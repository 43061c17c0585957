package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/modex/screening-booking/internal/model"
	"github.com/modex/screening-booking/internal/repository"
)

// Invalidator drops cached screening listings.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ScreeningHandler serves the screening catalogue.
type ScreeningHandler struct {
	Screenings *repository.ScreeningRepo
	Cache      Invalidator // optional; flushed after a screening is created
}

func NewScreeningHandler(s *repository.ScreeningRepo, cache Invalidator) *ScreeningHandler {
	return &ScreeningHandler{Screenings: s, Cache: cache}
}

type createScreeningReq struct {
	Name        string   `json:"name" validate:"required,max=255"`
	StartTime   string   `json:"startTime" validate:"required"`
	TotalSeats  looseInt `json:"totalSeats" validate:"required,gt=0"`
	TheatreName string   `json:"theatreName" validate:"required,max=255"`
}

const invalidScreeningMsg = "Missing or invalid required fields for new screening (including Theatre Name)."

// Create handles POST /api/admin/shows.
func (h *ScreeningHandler) Create(c echo.Context) error {
	var req createScreeningReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": invalidScreeningMsg})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.TheatreName = strings.TrimSpace(req.TheatreName)
	req.StartTime = strings.TrimSpace(req.StartTime)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": invalidScreeningMsg, "detail": err.Error()})
	}
	start, err := repository.ParseStartTime(req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": invalidScreeningMsg, "detail": "startTime is not a valid timestamp"})
	}

	s := &model.Screening{
		Name:       req.Name,
		Venue:      req.TheatreName,
		StartTime:  start,
		TotalSeats: int(req.TotalSeats),
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Screenings.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrInvalidArgument) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": invalidScreeningMsg})
		}
		log.Printf("screening: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to schedule new show time."})
	}
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			log.Printf("screening: cache invalidate: %v", err)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": fmt.Sprintf(`Screening for "%s" created successfully at %s.`, s.Name, s.Venue),
		"show":    s,
	})
}

// ListAvailable handles GET /api/shows: screenings with seats left.
func (h *ScreeningHandler) ListAvailable(c echo.Context) error {
	return h.list(c, true, "Failed to retrieve available shows.")
}

// ListAll handles GET /api/admin/shows.
func (h *ScreeningHandler) ListAll(c echo.Context) error {
	return h.list(c, false, "Failed to retrieve show list.")
}

func (h *ScreeningHandler) list(c echo.Context, availableOnly bool, failMsg string) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Screenings.List(ctx, availableOnly)
	if err != nil {
		log.Printf("screening: list (available=%t): %v", availableOnly, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": failMsg})
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /api/shows/:id.
func (h *ScreeningHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid screening id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	s, err := h.Screenings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScreeningNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "screening not found"})
		}
		log.Printf("screening: get %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to retrieve show."})
	}
	return c.JSON(http.StatusOK, s)
}
