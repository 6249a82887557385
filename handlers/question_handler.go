package handlers

import (
	"errors"
	"net/http"

	"pdfqa-backend/service"
	"pdfqa-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QuestionHandler handles HTTP requests for question answering
type QuestionHandler struct {
	answerService *service.AnswerService
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(answerService *service.AnswerService) *QuestionHandler {
	return &QuestionHandler{
		answerService: answerService,
	}
}

// AskQuestionRequest represents the request body for asking a question
type AskQuestionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Question  string `json:"question" binding:"required"`
}

// AskQuestion handles POST /ask-question
func (h *QuestionHandler) AskQuestion(c *gin.Context) {
	var req AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_SESSION_ID",
				"message": "Invalid session_id format",
			},
		})
		return
	}

	result, err := h.answerService.Ask(c.Request.Context(), service.AskRequest{
		SessionID: sessionID,
		Question:  req.Question,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_NOT_FOUND",
					"message": "Session not found. Upload a PDF first.",
				},
			})
		case errors.Is(err, service.ErrNoQuestion):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": "Question must not be empty",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ANSWER_FAILED",
					"message": "Failed to generate an answer",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer":     result.Answer,
		"reason":     result.Reason,
		"clause":     result.Clause,
		"session_id": sessionID,
	})
}
