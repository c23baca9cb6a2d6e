package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
)

type AdminHandler struct {
	svc service.AdminServicer
}

func NewAdminHandler(svc service.AdminServicer) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list admins"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type addAdminRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required"`
	AddedBy string `json:"added_by" binding:"required"`
}

func (h *AdminHandler) Add(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	a := &model.Admin{
		Email:   req.Email,
		Name:    req.Name,
		AddedBy: req.AddedBy,
	}
	if err := h.svc.Add(c.Request.Context(), a); err != nil {
		if errors.Is(err, errs.ErrAdminExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "admin already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add admin"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("email")); err != nil {
		switch {
		case errors.Is(err, errs.ErrLastAdmin):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete the last administrator"})
		case errors.Is(err, errs.ErrAdminNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "admin not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete admin"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "admin deleted"})
}

func (h *AdminHandler) CheckAdmin(c *gin.Context) {
	isAdmin, err := h.svc.IsAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check admin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_admin": isAdmin})
}
