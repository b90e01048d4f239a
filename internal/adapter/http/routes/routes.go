package routes

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"

	_ "pagamentos_xpto/docs" // This will be auto-generated
	"pagamentos_xpto/internal/adapter/http/handlers"
	repository2 "pagamentos_xpto/internal/adapter/persistence/repository"
	"pagamentos_xpto/internal/infrastructure/database"
	"pagamentos_xpto/internal/infrastructure/notifications"
	"pagamentos_xpto/internal/infrastructure/payments"
	"pagamentos_xpto/internal/usecase"
	"pagamentos_xpto/internal/usecase/interfaces"
	"pagamentos_xpto/internal/workflow"
	"pagamentos_xpto/internal/workflow/engine"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	var (
		paymentRepo  interfaces.IPaymentRepository
		historyStore engine.HistoryStore
	)
	if isRepositoryMockEnabled() {
		log.Printf("[routes] repository mock enabled; using in-memory stores")
		paymentRepo = repository2.NewPaymentMemoryRepository()
		historyStore = engine.NewMemoryHistoryStore()
	} else {
		ddb := database.ConnectDynamoDB()
		paymentRepo = repository2.NewPaymentDynamoRepository(ddb)
		historyStore = repository2.NewWorkflowHistoryDynamoRepository(ddb)
	}

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
	} else {
		paymentGateway = mpGateway
	}

	notifier := notifications.NewLogNotificationSender()

	eng := engine.New(historyStore)
	activities := workflow.NewActivities(paymentRepo, paymentGateway, notifier)
	workflow.NewPaymentWorkflow(activities, workflow.DefaultConfig()).Register(eng)
	if err := eng.Resume(context.Background()); err != nil {
		log.Printf("[routes] workflow resume failed: %v", err)
	}

	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, eng)
	reconcileUseCase := usecase.NewReconcileUseCase(paymentRepo, paymentGateway, eng)

	paymentHandler := handlers.NewPaymentHandler(paymentUseCase)
	workflowHandler := handlers.NewWorkflowHandler(paymentUseCase)
	webhookHandler := handlers.NewWebhookHandler(reconcileUseCase)

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addPaymentRoutes(v1, paymentHandler, workflowHandler, webhookHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

func isRepositoryMockEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("REPOSITORY_MOCK")))
	switch v {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
