package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github/contractiq/server/models"
	"github/contractiq/server/services"
)

// RAGController handles the HTTP requests for the contract-intelligence
// API. It depends on the RAGService to perform the actual pipeline work.
type RAGController struct {
	ragService services.RAGService
}

// NewRAGController creates a new RAGController. Called from main.go to
// inject the service dependency.
func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// UploadContracts is the Gin handler for POST /api/v1/contracts. It accepts
// any number of PDF files in a multipart form plus an X-Namespace header,
// and always reports one outcome entry per file: a bad file never aborts
// its siblings.
func (c *RAGController) UploadContracts(ctx *gin.Context) {
	namespace := strings.TrimSpace(ctx.GetHeader("X-Namespace"))
	if namespace == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Namespace header is required"})
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	log.Printf("CONTROLLER: Uploading %d file(s) to namespace %q", len(files), namespace)

	results := make([]models.FileResult, 0, len(files))
	totalChunks := 0

	for _, fileHeader := range files {
		result := c.processFile(ctx, fileHeader, namespace)
		if result.Status == "success" {
			totalChunks += result.ChunksCreated
		}
		results = append(results, result)
	}

	ctx.JSON(http.StatusOK, models.UploadResponse{
		Message:     fmt.Sprintf("Processed %d file(s) in workspace '%s'", len(files), namespace),
		TotalChunks: totalChunks,
		Results:     results,
	})
}

func (c *RAGController) processFile(ctx *gin.Context, fileHeader *multipart.FileHeader, namespace string) models.FileResult {
	filename := fileHeader.Filename

	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  "Only PDF files are supported",
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  "Could not read uploaded file",
		}
	}
	defer file.Close()

	// unipdf needs a ReadSeeker; multipart gives no such guarantee, so
	// buffer the upload.
	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  "Could not read uploaded file",
		}
	}

	count, err := c.ragService.UploadContract(ctx.Request.Context(), filename, bytes.NewReader(pdfBytes), namespace)
	switch {
	case errors.Is(err, services.ErrNotLegalContract):
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  "This document does not appear to be a legal contract. Only legal contracts are supported.",
		}
	case errors.Is(err, services.ErrNoExtractableText):
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  "PDF contains no extractable text",
		}
	case err != nil:
		log.Printf("CONTROLLER: Error processing %s: %v", filename, err)
		return models.FileResult{
			Filename: filename,
			Status:   "error",
			Message:  err.Error(),
		}
	}

	return models.FileResult{
		Filename:      filename,
		Status:        "success",
		ChunksCreated: count,
	}
}

// QueryContracts is the Gin handler for POST /api/v1/query.
func (c *RAGController) QueryContracts(ctx *gin.Context) {
	var req models.QueryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.ragService.Query(ctx.Request.Context(), req)
	if err != nil {
		log.Printf("CONTROLLER: Query failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
