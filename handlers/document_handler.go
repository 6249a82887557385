package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pdfqa-backend/service"
	"pdfqa-backend/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles HTTP requests for document upload and sessions
type DocumentHandler struct {
	ingestService *service.IngestService
	maxFileSize   int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ingestService *service.IngestService, maxFileSize int64) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024 // 10MB
	}
	return &DocumentHandler{
		ingestService: ingestService,
		maxFileSize:   maxFileSize,
	}
}

// UploadPDF handles POST /upload-pdf
func (h *DocumentHandler) UploadPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only PDF files are allowed",
			},
		})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType != "" && mimeType != "application/pdf" && mimeType != "application/octet-stream" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only PDF files are allowed",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	result, err := h.ingestService.Ingest(c.Request.Context(), service.IngestRequest{
		Filename: fileHeader.Filename,
		Data:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyDocument):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMPTY_DOCUMENT",
					"message": "No extractable text found in the PDF",
				},
			})
		case errors.Is(err, service.ErrExtractionFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EXTRACTION_FAILED",
					"message": "Failed to read the PDF. The file may be corrupted.",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INGEST_FAILED",
					"message": fmt.Sprintf("Failed to process document: %v", err),
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "PDF processed successfully",
		"session_id":      result.SessionID,
		"pages_processed": result.Pages,
	})
}

// GetSession handles GET /sessions/:id
func (h *DocumentHandler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid session ID format",
			},
		})
		return
	}

	session, err := h.ingestService.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": "Session not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    session,
	})
}

// DownloadDocument handles GET /sessions/:id/document
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid session ID format",
			},
		})
		return
	}

	reader, session, err := h.ingestService.DownloadDocument(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_NOT_FOUND",
					"message": "Session not found",
				},
			})
		case errors.Is(err, service.ErrDocumentNotStored):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOCUMENT_NOT_STORED",
					"message": "No stored document for this session",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DOWNLOAD_FAILED",
					"message": fmt.Sprintf("Failed to download document: %v", err),
				},
			})
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", session.Filename))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

// DeleteSession handles DELETE /sessions/:id
func (h *DocumentHandler) DeleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid session ID format",
			},
		})
		return
	}

	if err := h.ingestService.DeleteSession(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_NOT_FOUND",
					"message": "Session not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Session deleted",
	})
}
