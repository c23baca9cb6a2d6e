package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/kafka"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"github.com/it-helpdesk/helpdesk-service/internal/notify"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
)

type ProblemHandler struct {
	svc      service.ProblemServicer
	events   kafka.ProblemEventProducer
	notifier notify.ProblemNotifier
}

func NewProblemHandler(svc service.ProblemServicer, events kafka.ProblemEventProducer, notifier notify.ProblemNotifier) *ProblemHandler {
	return &ProblemHandler{svc: svc, events: events, notifier: notifier}
}

type createProblemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Attachments []string `json:"attachments"`
	CreatedBy   string   `json:"created_by" binding:"required"`
}

func (h *ProblemHandler) Create(c *gin.Context) {
	var req createProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	category := model.ProblemCategory(req.Category)
	if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}
	p := &model.Problem{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Attachments: req.Attachments,
		CreatedBy:   req.CreatedBy,
	}
	if err := h.svc.Create(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create problem"})
		return
	}
	h.events.ProduceProblemEvent(c.Request.Context(), "problem.created", eventPayload(p))
	h.notifier.NotifyProblemAsync(p)
	c.JSON(http.StatusCreated, p)
}

func (h *ProblemHandler) Get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProblemHandler) List(c *gin.Context) {
	filter := service.ProblemFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	items, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list problems"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type updateProblemRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

func (h *ProblemHandler) Update(c *gin.Context) {
	var req updateProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	changes := make(map[string]interface{})
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Category != nil {
		if !model.ProblemCategory(*req.Category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		changes["category"] = *req.Category
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		if errors.Is(err, errs.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ProblemHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	status := model.ProblemStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	if err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		if errors.Is(err, errs.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

func (h *ProblemHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, errs.ErrProblemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.events.ProduceProblemEvent(c.Request.Context(), "problem.deleted", map[string]interface{}{"problem_id": id})
	c.JSON(http.StatusOK, gin.H{"message": "problem deleted"})
}

func (h *ProblemHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func eventPayload(p *model.Problem) map[string]interface{} {
	return map[string]interface{}{
		"problem_id": p.ID,
		"title":      p.Title,
		"category":   string(p.Category),
		"status":     string(p.Status),
		"created_by": p.CreatedBy,
	}
}
