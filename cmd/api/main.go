package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"homologacao/internal/database"
	"homologacao/internal/middleware"
	"homologacao/internal/modules/auth"
	"homologacao/internal/modules/cases"
	"homologacao/internal/modules/documents"
	"homologacao/internal/modules/scheduling"
	"homologacao/internal/modules/signatures"
	jwtsvc "homologacao/internal/pkg/jwt"
	"homologacao/internal/pkg/lock"
	"homologacao/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "homologacao.db"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	var locker lock.Locker
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisLock, err := lock.NewRedisLock(addr)
		if err != nil {
			log.Fatal(err)
		}
		defer redisLock.Close()
		locker = redisLock
		log.Println("Booking locks served by redis at", addr)
	} else {
		locker = lock.NewMemoryLock()
		log.Println("REDIS_ADDR is empty, booking locks are process-local")
	}

	userRepo := repository.NewUserRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	windowRepo := repository.NewCapacityWindowRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	sigRepo := repository.NewSignatureRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	availability := scheduling.NewAvailability(windowRepo, bookingRepo)
	coordinator := scheduling.NewCoordinator(availability, bookingRepo, userRepo, locker)
	schedulingHandler := scheduling.NewHandler(availability, coordinator)

	signatureService := signatures.NewService(sigRepo)

	caseService := cases.NewService(caseRepo, coordinator, signatureService, cases.LogNotifier{})
	caseHandler := cases.NewHandler(caseService)

	blobStore := documents.NewDiskStore(os.Getenv("UPLOADS_DIR"))
	documentService := documents.NewService(docRepo, caseService, blobStore)
	documentHandler := documents.NewHandler(documentService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			caseHandler.RegisterRoutes(protected)
			documentHandler.RegisterRoutes(protected)
			schedulingHandler.RegisterRoutes(protected)
		}
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
