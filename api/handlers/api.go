package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	Client databases.ClientHelper
	DB     databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.DB), JWTSecret: a.Config.JWTSecret}
	m.SetupGoGuardian()

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	r.Use(api.TimeoutMiddleware(30 * time.Second))

	u := User{DB: databases.NewUserDatabase(a.DB)}
	c := Campaign{DB: databases.NewCampaignDatabase(a.DB), UDB: databases.NewUserDatabase(a.DB)}
	ref := Referrer{
		CDB:     databases.NewCampaignDatabase(a.DB),
		SDB:     databases.NewCampaignSelectionDatabase(a.DB),
		LDB:     databases.NewReferralLinkDatabase(a.DB),
		RDB:     databases.NewRewardDatabase(a.DB),
		BaseURL: a.Config.BaseURL,
	}
	cust := Customer{
		DB:      a.DB,
		CDB:     databases.NewCampaignDatabase(a.DB),
		UDB:     databases.NewUserDatabase(a.DB),
		LDB:     databases.NewReferralLinkDatabase(a.DB),
		SHDB:    databases.NewCustomerShareDatabase(a.DB),
		CVDB:    databases.NewConversionDatabase(a.DB),
		RDB:     databases.NewRewardDatabase(a.DB),
		BaseURL: a.Config.BaseURL,
	}
	rew := Reward{
		RDB: databases.NewRewardDatabase(a.DB),
		CDB: databases.NewCampaignDatabase(a.DB),
		UDB: databases.NewUserDatabase(a.DB),
	}
	biz := Business{
		CDB: databases.NewCampaignDatabase(a.DB),
		LDB: databases.NewReferralLinkDatabase(a.DB),
		RDB: databases.NewRewardDatabase(a.DB),
	}
	billing := Billing{UDB: databases.NewUserDatabase(a.DB), BaseURL: a.Config.BaseURL}
	cloudinaryHandler := CloudinaryHandler{}
	metricsHandler := Metrics{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/me", api.Middleware(http.HandlerFunc(u.MeHandler))).Methods("GET")

	apiCreate.Handle("/campaigns", api.RequireRole(models.RoleBusiness, http.HandlerFunc(c.CampaignsHandler))).Methods("GET")
	apiCreate.Handle("/campaigns", api.RequireRole(models.RoleBusiness, http.HandlerFunc(c.CreateCampaignHandler))).Methods("POST")
	apiCreate.Handle("/campaigns/{campaign_id}", api.RequireRole(models.RoleBusiness, http.HandlerFunc(c.CampaignByIDHandler))).Methods("GET")
	apiCreate.Handle("/campaigns/{campaign_id}", api.RequireRole(models.RoleBusiness, http.HandlerFunc(c.UpdateCampaignHandler))).Methods("PATCH")
	apiCreate.Handle("/campaigns/{campaign_id}", api.RequireRole(models.RoleBusiness, http.HandlerFunc(c.DeleteCampaignHandler))).Methods("DELETE")

	apiCreate.Handle("/referrer/campaigns", api.RequireRole(models.RoleReferrer, http.HandlerFunc(ref.CampaignsHandler))).Methods("GET")
	apiCreate.Handle("/referrer/select-campaign", api.RequireRole(models.RoleReferrer, http.HandlerFunc(ref.SelectCampaignHandler))).Methods("POST")
	apiCreate.Handle("/referrer/generate-link", api.RequireRole(models.RoleReferrer, http.HandlerFunc(ref.GenerateLinkHandler))).Methods("POST")
	apiCreate.Handle("/referrer/performance", api.RequireRole(models.RoleReferrer, http.HandlerFunc(ref.PerformanceHandler))).Methods("GET")

	apiCreate.Handle("/customer/share-campaign", api.RequireRole(models.RoleCustomer, http.HandlerFunc(cust.ShareCampaignHandler))).Methods("POST")
	apiCreate.Handle("/customer/process-link", api.Middleware(http.HandlerFunc(cust.ProcessLinkHandler))).Methods("POST")
	apiCreate.Handle("/customer/complete-referral", api.RequireRole(models.RoleCustomer, http.HandlerFunc(cust.CompleteReferralHandler))).Methods("POST")
	apiCreate.Handle("/customer/claim-reward", api.Middleware(http.HandlerFunc(rew.ClaimRewardHandler))).Methods("POST")
	apiCreate.Handle("/customer/redeem-reward", api.Middleware(http.HandlerFunc(rew.RedeemRewardHandler))).Methods("POST")
	apiCreate.Handle("/customer/campaigns", api.RequireRole(models.RoleCustomer, http.HandlerFunc(cust.CampaignsHandler))).Methods("GET")

	apiCreate.Handle("/rewards", api.Middleware(http.HandlerFunc(rew.RewardsHandler))).Methods("GET")

	apiCreate.Handle("/business/dashboard", api.RequireRole(models.RoleBusiness, http.HandlerFunc(biz.DashboardHandler))).Methods("GET")
	apiCreate.Handle("/business/create-checkout-session", api.RequireRole(models.RoleBusiness, http.HandlerFunc(billing.CreateCheckoutSessionHandler))).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/coupons", http.HandlerFunc(CouponsHandler)).Methods("GET")

	apiCreate.Handle("/metrics", api.RequireRole(models.RoleAdmin, http.HandlerFunc(metricsHandler.MetricsHandler))).Methods("GET")

	r.Handle("/ws/events", api.Middleware(http.HandlerFunc(HandleEventsWebSocket)))

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	a.Client = client

	a.DB = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("referral-api has connected to the database")

	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()
	if err := databases.EnsureIndexes(ctx, a.DB); err != nil {
		zap.S().With(err).Error("failed to ensure indexes")
		return err
	}

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
