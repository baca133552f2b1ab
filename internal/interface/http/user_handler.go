package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "userhub/internal/application"
	"userhub/internal/domain/repository"
	"userhub/pkg/apperrors"
	"userhub/pkg/response"
	"userhub/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,pwd,max=72"`
	FirstName string `json:"firstName" binding:"omitempty,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,max=50"`
}

type updateUserRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	FirstName string `json:"firstName" binding:"omitempty,max=50"`
	LastName  string `json:"lastName" binding:"omitempty,max=50"`
}

// List handles GET /v1/users?page&size&sortBy&direction.
func (h *UserHandler) List(c *gin.Context) {
	page, ok := h.intQuery(c, "page", 0)
	if !ok {
		return
	}
	size, ok := h.intQuery(c, "size", 10)
	if !ok {
		return
	}
	var fieldErrs []response.FieldError
	if page < 0 {
		fieldErrs = append(fieldErrs, response.FieldError{Field: "page", Message: "must be zero or positive"})
	}
	if size <= 0 {
		fieldErrs = append(fieldErrs, response.FieldError{Field: "size", Message: "must be positive"})
	}
	if len(fieldErrs) > 0 {
		response.WriteError(c, http.StatusBadRequest, "Validation Error", "Input validation failed", fieldErrs)
		return
	}
	sortBy := c.DefaultQuery("sortBy", "id")
	direction := c.DefaultQuery("direction", "asc")

	pageRes, err := h.Svc.List(c.Request.Context(), page, size, sortBy, direction)
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, pageRes)
}

// GetByID handles GET /v1/users/:id. Inactive users are still returned.
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	view, err := h.Svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Create handles POST /v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, http.StatusBadRequest, "Validation Error", "Input validation failed", validation.ToFieldErrors(err))
		return
	}
	view, err := h.Svc.Create(c.Request.Context(), userapp.CreateInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Update handles PUT /v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, http.StatusBadRequest, "Validation Error", "Input validation failed", validation.ToFieldErrors(err))
		return
	}
	view, err := h.Svc.Update(c.Request.Context(), id, userapp.UpdateInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusAccepted, view)
}

// Delete handles DELETE /v1/users/:id. The delete is soft: the record
// stays addressable with active=false.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.writeFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /v1/users/search?q=&size=.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, ok := h.intQuery(c, "size", 10)
	if !ok {
		return
	}
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.writeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits})
}

func (h *UserHandler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.WriteError(c, http.StatusBadRequest, "Bad Request", "Invalid parameter type for: id", nil)
		return 0, false
	}
	return id, true
}

func (h *UserHandler) intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.WriteError(c, http.StatusBadRequest, "Bad Request", "Invalid parameter type for: "+name, nil)
		return 0, false
	}
	return v, true
}

// writeFailure classifies service failures into the uniform payload.
// 4xx outcomes log at warn, anything unclassified logs at error and is
// reported with a generic message.
func (h *UserHandler) writeFailure(c *gin.Context, err error) {
	var nf *apperrors.NotFoundError
	var ae *apperrors.AlreadyExistsError
	switch {
	case errors.As(err, &nf):
		h.warn(c, http.StatusNotFound, err)
		response.WriteError(c, http.StatusNotFound, "Resource Not Found", err.Error(), nil)
	case errors.As(err, &ae):
		h.warn(c, http.StatusConflict, err)
		response.WriteError(c, http.StatusConflict, "Resource Already Exists", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		h.warn(c, http.StatusConflict, err)
		response.WriteError(c, http.StatusConflict, "Data Integrity Violation", "The record already exists", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
		}
		response.WriteError(c, http.StatusInternalServerError, "Internal Server Error",
			"An unexpected error occurred. Please try again later or contact support.", nil)
	}
}

func (h *UserHandler) warn(c *gin.Context, status int, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithFields(logrus.Fields{"status": status, "path": c.Request.URL.Path}).Warn(err.Error())
}
