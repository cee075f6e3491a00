package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/AngelLY12/CBTa71-sub002/db"
	"github.com/AngelLY12/CBTa71-sub002/routes"
	"github.com/AngelLY12/CBTa71-sub002/services/notifications"
	"github.com/AngelLY12/CBTa71-sub002/services/reconciliation"
	"github.com/AngelLY12/CBTa71-sub002/utils"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	stripe "github.com/stripe/stripe-go/v82"
)

// @title API Pagos CBTa 71
// @version 1.0
// @description School fees billing and Stripe reconciliation backend
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the JWT with the Bearer prefix: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	startSweep()

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}

// startSweep schedules the periodic reconciliation pass over stale
// non-paid payments.
func startSweep() {
	maxRetries := 5
	if v := os.Getenv("RECONCILE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxRetries = n
		}
	}

	engine := reconciliation.NewEngine(
		db.DB,
		reconciliation.NewStripeClient(10*time.Second),
		reconciliation.WithNotifier(notifications.NewService(db.DB)),
		reconciliation.WithMaxRetries(maxRetries),
	)

	c := cron.New()
	_, err := c.AddFunc("@every 15m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		reconciled, err := engine.Sweep(ctx)
		if err != nil {
			utils.LogError(err, "Reconciliation sweep failed")
			return
		}
		if reconciled > 0 {
			utils.LogSuccess("Reconciliation sweep settled " + strconv.Itoa(reconciled) + " payments")
		}
	})
	if err != nil {
		utils.LogError(err, "Cannot schedule the reconciliation sweep")
		return
	}
	c.Start()
}
