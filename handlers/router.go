package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter registers all routes on a gin engine
func SetupRouter(documentHandler *DocumentHandler, questionHandler *QuestionHandler) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "PDF Q&A API",
			"endpoints": gin.H{
				"upload":         "POST /upload-pdf",
				"ask":            "POST /ask-question",
				"session":        "GET /sessions/:id",
				"document":       "GET /sessions/:id/document",
				"delete_session": "DELETE /sessions/:id",
				"health":         "GET /health",
			},
		})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.POST("/upload-pdf", documentHandler.UploadPDF)
	r.POST("/ask-question", questionHandler.AskQuestion)
	r.GET("/sessions/:id", documentHandler.GetSession)
	r.GET("/sessions/:id/document", documentHandler.DownloadDocument)
	r.DELETE("/sessions/:id", documentHandler.DeleteSession)

	return r
}
