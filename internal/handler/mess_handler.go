package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"mess_finder/internal/middleware"
	"mess_finder/internal/model"
	"mess_finder/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// MessHandler handles mess listing requests
type MessHandler struct {
	service service.MessService
}

// NewMessHandler creates a new MessHandler
func NewMessHandler(s service.MessService) *MessHandler {
	return &MessHandler{service: s}
}

// messRequest is the JSON form of a listing write; absent fields stay nil
type messRequest struct {
	Name     *string          `json:"name"`
	Area     *string          `json:"area"`
	Price    *decimal.Decimal `json:"price"`
	Delivery *bool            `json:"delivery"`
	Menu     []string         `json:"menu"`
}

// splitMenu turns "dal, rice,,roti" into [dal rice roti]
func splitMenu(raw string) []string {
	menu := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			menu = append(menu, item)
		}
	}
	return menu
}

func cleanMenu(items []string) []string {
	if items == nil {
		return nil
	}
	return splitMenu(strings.Join(items, ","))
}

// parseMessRequest reads a listing write from either a multipart form (with
// an optional "image" file) or a JSON body
func parseMessRequest(c *gin.Context) (model.UpdateMessInput, *multipart.FileHeader, error) {
	var in model.UpdateMessInput

	if c.ContentType() != binding.MIMEMultipartPOSTForm && c.ContentType() != binding.MIMEPOSTForm {
		var req messRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return in, nil, fmt.Errorf("Invalid request: %w", err)
		}
		in.Name, in.Area, in.Price, in.Delivery = req.Name, req.Area, req.Price, req.Delivery
		in.Menu = cleanMenu(req.Menu)
		return in, nil, nil
	}

	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("area"); ok {
		in.Area = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return in, nil, errors.New("price must be a number")
		}
		in.Price = &price
	}
	if v, ok := c.GetPostForm("delivery"); ok && strings.TrimSpace(v) != "" {
		delivery, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return in, nil, errors.New("delivery must be true or false")
		}
		in.Delivery = &delivery
	}
	if v, ok := c.GetPostForm("menu"); ok {
		in.Menu = splitMenu(v)
	}

	image, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil, nil
		}
		return in, nil, fmt.Errorf("Invalid image upload: %w", err)
	}
	return in, image, nil
}

func parseMessID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mess ID"})
		return 0, false
	}
	return id, true
}

// writeMessError maps listing service errors onto the HTTP taxonomy
func writeMessError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrMessValidation),
		errors.Is(err, service.ErrNegativePrice),
		errors.Is(err, service.ErrInvalidFileFormat),
		errors.Is(err, service.ErrFileSizeExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMessNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("error handling mess request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func (h *MessHandler) ListMesses(c *gin.Context) {
	var filters model.MessFilters
	if area := strings.TrimSpace(c.Query("area")); area != "" {
		filters.Area = &area
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		parsed, err := decimal.NewFromString(maxPrice)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price, must be a number"})
			return
		}
		filters.MaxPrice = &parsed
	}
	if delivery := c.Query("delivery"); delivery != "" {
		parsed, err := strconv.ParseBool(delivery)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery, use true or false"})
			return
		}
		filters.Delivery = &parsed
	}

	messes, err := h.service.ListMesses(c.Request.Context(), filters)
	if err != nil {
		writeMessError(c, err, "retrieve messes")
		return
	}
	c.JSON(http.StatusOK, messes)
}

func (h *MessHandler) GetMess(c *gin.Context) {
	id, ok := parseMessID(c)
	if !ok {
		return
	}

	mess, err := h.service.GetMess(c.Request.Context(), id)
	if err != nil {
		writeMessError(c, err, "retrieve mess")
		return
	}
	c.JSON(http.StatusOK, mess)
}

func (h *MessHandler) GetMyMesses(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	messes, err := h.service.ListOwnerMesses(c.Request.Context(), p.UserID)
	if err != nil {
		writeMessError(c, err, "retrieve messes")
		return
	}
	c.JSON(http.StatusOK, messes)
}

func (h *MessHandler) CreateMess(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fields, image, err := parseMessRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if fields.Name == nil || fields.Area == nil || fields.Price == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrMessValidation.Error()})
		return
	}

	in := model.CreateMessInput{
		Name:  *fields.Name,
		Area:  *fields.Area,
		Price: *fields.Price,
		Menu:  fields.Menu,
	}
	if fields.Delivery != nil {
		in.Delivery = *fields.Delivery
	}

	mess, err := h.service.CreateMess(c.Request.Context(), p.UserID, in, image)
	if err != nil {
		writeMessError(c, err, "create mess")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Mess added successfully", "mess": mess})
}

func (h *MessHandler) UpdateMess(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseMessID(c)
	if !ok {
		return
	}

	in, image, err := parseMessRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mess, err := h.service.UpdateMess(c.Request.Context(), id, p.UserID, in, image)
	if err != nil {
		writeMessError(c, err, "update mess")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mess updated successfully", "mess": mess})
}

func (h *MessHandler) DeleteMess(c *gin.Context) {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	id, ok := parseMessID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteMess(c.Request.Context(), id, p); err != nil {
		writeMessError(c, err, "delete mess")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mess deleted successfully"})
}

// RegisterMessRoutes registers listing routes. Writes run authMW first, then
// ownerMW (owners only) or staffMW (owners and admins).
func (h *MessHandler) RegisterMessRoutes(rg *gin.RouterGroup, authMW, ownerMW, staffMW gin.HandlerFunc) {
	messGroup := rg.Group("/mess")
	{
		messGroup.GET("", h.ListMesses)
		messGroup.GET("/all", h.ListMesses)
		messGroup.GET("/:id", h.GetMess)

		messGroup.GET("/mine", authMW, ownerMW, h.GetMyMesses)
		messGroup.POST("", authMW, ownerMW, h.CreateMess)
		messGroup.POST("/add", authMW, ownerMW, h.CreateMess)
		messGroup.POST("/upload", authMW, ownerMW, h.CreateMess)
		messGroup.PUT("/:id", authMW, ownerMW, h.UpdateMess)
		messGroup.DELETE("/:id", authMW, staffMW, h.DeleteMess)
	}
}
