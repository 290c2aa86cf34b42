package main

import (
	"log"
	"os"

	"github.com/Aashish23092/electricity-invoice-ocr/client"
	"github.com/Aashish23092/electricity-invoice-ocr/config"
	"github.com/Aashish23092/electricity-invoice-ocr/handler"
	"github.com/Aashish23092/electricity-invoice-ocr/service"
	"github.com/Aashish23092/electricity-invoice-ocr/utils/invoice"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	os.Setenv("TESSDATA_PREFIX", cfg.TesseractDataPath)
	log.Println("TESSDATA_PREFIX set to:", cfg.TesseractDataPath)

	// Initialize OCR clients; PaddleOCR is only used when an endpoint is configured
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.TesseractLanguage)
	defer tesseractClient.Close()

	recognizers := []service.Recognizer{tesseractClient}
	if paddleClient := client.NewPaddleClient(cfg.PaddleOCRURL); paddleClient.Enabled() {
		recognizers = append(recognizers, paddleClient)
	}

	// Initialize PDF processor
	pdfProcessor := service.NewPDFProcessor()

	// Initialize service layer
	engine := invoice.NewEngine(&cfg.Thresholds)
	invoiceService := service.NewInvoiceService(engine, pdfProcessor, recognizers, cfg.MaxParallelDocuments, cfg.DebugExtraction)

	// Initialize handler layer
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, cfg.MaxFileSize)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Electricity Invoice OCR",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	invoiceHandler.RegisterRoutes(api)

	// Start server
	log.Printf("Starting Electricity Invoice OCR Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
