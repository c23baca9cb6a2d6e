package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/it-helpdesk/helpdesk-service/internal/errs"
	"github.com/it-helpdesk/helpdesk-service/internal/kafka"
	"github.com/it-helpdesk/helpdesk-service/internal/model"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
)

type InstructionHandler struct {
	svc    service.InstructionServicer
	events kafka.ProblemEventProducer
}

func NewInstructionHandler(svc service.InstructionServicer, events kafka.ProblemEventProducer) *InstructionHandler {
	return &InstructionHandler{svc: svc, events: events}
}

type createInstructionRequest struct {
	ProblemID       string   `json:"problem_id" binding:"required"`
	InstructionText string   `json:"instruction_text" binding:"required"`
	Images          []string `json:"images"`
	CreatedBy       string   `json:"created_by" binding:"required"`
}

// Create сохраняет инструкцию; заявка при этом становится "resolved".
func (h *InstructionHandler) Create(c *gin.Context) {
	var req createInstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ins := &model.Instruction{
		ProblemID:       req.ProblemID,
		InstructionText: req.InstructionText,
		Images:          req.Images,
		CreatedBy:       req.CreatedBy,
	}
	if err := h.svc.Create(c.Request.Context(), ins); err != nil {
		switch {
		case errors.Is(err, errs.ErrProblemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "problem not found"})
		case errors.Is(err, errs.ErrProblemResolved), errors.Is(err, errs.ErrInstructionExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create instruction"})
		}
		return
	}
	h.events.ProduceProblemEvent(c.Request.Context(), "problem.resolved", map[string]interface{}{
		"problem_id":  ins.ProblemID,
		"resolved_by": ins.CreatedBy,
	})
	c.JSON(http.StatusCreated, ins)
}

func (h *InstructionHandler) GetByProblem(c *gin.Context) {
	ins, err := h.svc.GetByProblem(c.Request.Context(), c.Param("problem_id"))
	if err != nil {
		if errors.Is(err, errs.ErrInstructionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instruction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ins)
}

// DeleteByProblem удаляет инструкцию; заявка возвращается в "in_progress".
func (h *InstructionHandler) DeleteByProblem(c *gin.Context) {
	if err := h.svc.DeleteByProblem(c.Request.Context(), c.Param("problem_id")); err != nil {
		if errors.Is(err, errs.ErrInstructionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "instruction not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "instruction deleted"})
}
