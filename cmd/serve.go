package cmd

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lista-de-compras/shopping-list-services/api/handlers"
	"github.com/lista-de-compras/shopping-list-services/api/middleware"
	"github.com/lista-de-compras/shopping-list-services/api/services"
	awsclient "github.com/lista-de-compras/shopping-list-services/internal/aws"
	"github.com/lista-de-compras/shopping-list-services/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		// Load the config, initialize the database and set up logging
		commonSetUp()
		defer shoppingDB.Close()

		// Rate limiter for authentication endpoints
		var limiter services.RateLimiter
		if appCfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     appCfg.Redis.Addr,
				Password: appCfg.Redis.Password,
				DB:       appCfg.Redis.DB,
			})
			limiter = ratelimit.New(rdb, appCfg.RateLimit.Limit, appCfg.RateLimit.Window())
		} else {
			log.Warn().Msg("redis address not configured, authentication rate limiting disabled")
		}

		// SES client for password reset emails
		awsCfg, err := awsclient.LoadAWSConfig(appCfg.Email.Region)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		sesClient := awsclient.NewSESClient(awsCfg)

		// Create routes
		r := mux.NewRouter()

		service := &services.Service{
			Config:  appCfg,
			DB:      shoppingDB,
			Email:   sesClient,
			Limiter: limiter,
		}

		// Register the routes
		api := r.PathPrefix(appCfg.BasePath).Subrouter()

		// Apply the middleware to the API routes
		api.Use(middleware.WithLogger)
		api.Use(middleware.WithMetrics)

		// Authentication routes
		auth := api.PathPrefix("/auth").Subrouter()
		auth.HandleFunc("/register", handlers.Register(service)).Methods(http.MethodPost)
		auth.HandleFunc("/login", handlers.Login(service)).Methods(http.MethodPost)
		auth.HandleFunc("/password-reset/request", handlers.RequestPasswordReset(service)).Methods(http.MethodPost)
		auth.HandleFunc("/password-reset/confirm", handlers.ConfirmPasswordReset(service)).Methods(http.MethodPost)

		// Item routes, owner-scoped behind the JWT middleware
		items := api.PathPrefix("/items").Subrouter()
		items.Use(middleware.JWTMiddleware(appCfg.Auth.Secret))
		items.HandleFunc("", handlers.ListItems(service)).Methods(http.MethodGet)
		items.HandleFunc("", handlers.CreateItem(service)).Methods(http.MethodPost)
		// Registered before the {item-id} routes so the literal path wins
		items.HandleFunc("/purchased", handlers.PurgeCompleted(service)).Methods(http.MethodDelete)
		items.HandleFunc("/{item-id}", handlers.GetItem(service)).Methods(http.MethodGet)
		items.HandleFunc("/{item-id}", handlers.UpdateItem(service)).Methods(http.MethodPut, http.MethodPatch)
		items.HandleFunc("/{item-id}", handlers.DeleteItem(service)).Methods(http.MethodDelete)

		// Operational endpoints
		r.HandleFunc("/healthz", handlers.Healthz()).Methods(http.MethodGet)
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

		handler := cors.New(cors.Options{
			AllowedOrigins: appCfg.CORS.AllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete,
			},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler(r)

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", host, port),
			handler); err != nil {

			log.Error().Err(err).Msg("could not start server")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}
