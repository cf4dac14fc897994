package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"referly-server/handlers"
	"referly-server/middleware"
	"referly-server/models"
	"referly-server/services"
	"referly-server/utils"
	"referly-server/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐❗ GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Whop-User-Id, X-Whop-Company-Id, X-Whop-Access-Level",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.ReferralCode{},
		&models.ReferralClick{},
		&models.Referral{},
		&models.Campaign{},
		&models.Reward{},
		&models.RewardRedemption{},
		&models.FraudCheck{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// R2 is optional: without credentials, exports still stream to the
	// caller, they just don't get archived.
	var archive services.ArchiveStore
	if os.Getenv("R2_BUCKET_NAME") != "" {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archive = utils.R2Archive{}
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set, export archival disabled")
	}

	whopAPIURL := os.Getenv("WHOP_API_URL")
	if whopAPIURL == "" {
		whopAPIURL = "https://api.whop.com/api"
	}
	whopAPIKey := os.Getenv("WHOP_API_KEY")
	if whopAPIKey == "" {
		log.Fatal("WHOP_API_KEY environment variable not set")
	}
	whopClient := services.NewWhopClient(whopAPIURL, whopAPIKey)

	identityService := services.NewIdentityService(db)
	fraudService := services.NewFraudService(db)
	referralService := services.NewReferralService(db, identityService, fraudService)
	leaderboardService := services.NewLeaderboardService(db)
	dashboardService := services.NewDashboardService(db, archive)
	rewardService := services.NewRewardService(db, identityService, whopClient)
	campaignService := services.NewCampaignService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewUserSyncWorker(db, whopClient)
	syncWorker.Start(ctx)

	campaignService.StartStatusScheduler()

	handlers.SetupReferralRoutes(app, referralService)
	handlers.SetupLeaderboardRoutes(app, leaderboardService)
	handlers.SetupDashboardRoutes(app, dashboardService)
	handlers.SetupFraudRoutes(app, fraudService)
	handlers.SetupRewardRoutes(app, rewardService)
	handlers.SetupCampaignRoutes(app, campaignService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ User Sync Worker running")
	log.Println("✅ Campaign status scheduler running (every 1m)")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
