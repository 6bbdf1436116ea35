package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github/contractiq/server/controller"
	"github/contractiq/server/services"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

func main() {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	// Chroma client using the v2 API. CHROMA_URL falls back to the client
	// default when unset.
	var chromaOpts []chromago.ClientOption
	if url := os.Getenv("CHROMA_URL"); url != "" {
		chromaOpts = append(chromaOpts, chromago.WithBaseURL(url))
	}
	chromaClient, err := chromago.NewHTTPClient(chromaOpts...)
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if cerr := chromaClient.Close(); cerr != nil {
			log.Printf("Warning: Failed to close chroma client: %v", cerr)
		}
	}()

	geminiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
	}
	log.Println("Successfully connected to Google Gemini.")

	// Wire the pipeline. Uploaded chunks need a couple of seconds before
	// they are visible to search, hence the settle delay.
	embedder := services.NewOllamaEmbedder(httpClient, os.Getenv("OLLAMA_URL"))
	index := services.NewChromaIndex(chromaClient, embedder, 2*time.Second)
	generator := services.NewGeminiGenerator(geminiClient)
	ragService := services.NewRAGService(index, embedder, generator)
	ragController := controller.NewRAGController(ragService)

	// Optional watch folder: PDFs dropped there are auto-ingested.
	if watchDir := os.Getenv("CONTRACTS_WATCH_DIR"); watchDir != "" {
		watchNamespace := os.Getenv("CONTRACTS_WATCH_NAMESPACE")
		if watchNamespace == "" {
			watchNamespace = "default"
		}
		watcher := services.NewContractWatcher(ragService, watchNamespace)
		go watcher.Watch(context.Background(), watchDir)
	}

	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Namespace")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Tag every request for log correlation.
	router.Use(func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Contract Intelligence API",
			"mode":    "namespace_based_isolation",
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/contracts", ragController.UploadContracts) // Upload PDF contracts
		apiV1.POST("/query", ragController.QueryContracts)      // Ask a question
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Contract Intelligence backend starting on http://localhost:%s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST http://localhost:%s/api/v1/contracts", port)
	log.Printf("  POST http://localhost:%s/api/v1/query", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}
