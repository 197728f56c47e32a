package router

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"influencer-app/internal/analytics"
	"influencer-app/internal/auth"
	"influencer-app/internal/domain"
	"influencer-app/internal/endpoints"
	"influencer-app/internal/ingest"
	"influencer-app/internal/util"
)

// Deps bundles the collaborators the handlers need.
type Deps struct {
	Store         domain.MetricStore
	Ingestor      *ingest.Ingestor
	Analyzer      *analytics.Analyzer
	Authenticator *auth.Authenticator
	Logger        *util.TrackerLogger
}

func NewRouter(deps Deps) *mux.Router {
	r := mux.NewRouter()

	addRoutes(r, deps)

	r.Use(loggingMiddleware(deps.Logger))

	return r
}

func addRoutes(r *mux.Router, deps Deps) {

	loginHandler := &endpoints.Login{}
	loginHandler.Init(deps.Authenticator, deps.Logger)

	snapshotHandler := &endpoints.Snapshots{}
	snapshotHandler.Init(deps.Store, deps.Ingestor, deps.Logger)

	analysisHandler := &endpoints.Analysis{}
	analysisHandler.Init(deps.Analyzer, deps.Logger)

	productsHandler := &endpoints.Products{}
	productsHandler.Init(deps.Store, deps.Logger)

	r.HandleFunc("/login", loginHandler.LoginHandler).Methods("POST")
	r.HandleFunc("/influencers", snapshotHandler.ListInfluencersHandler).Methods("GET")
	r.HandleFunc("/influencers/{handle}/snapshots", snapshotHandler.IngestHandler).Methods("POST")
	r.HandleFunc("/analysis", analysisHandler.AnalyzeHandler).Methods("POST")
	r.HandleFunc("/analysis/export", analysisHandler.ExportHandler).Methods("POST")
	r.HandleFunc("/products", productsHandler.AddProductHandler).Methods("POST")
	r.HandleFunc("/products/query", productsHandler.QueryProductsHandler).Methods("POST")
}

func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 5 * time.Second,
		// Ingestion waits on the upstream source, which may take the
		// full fetch ceiling before timing out.
		WriteTimeout: 125 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

func Run(addr string, deps Deps) {
	appRouter := NewRouter(deps)

	server := NewServer(addr, appRouter)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		println()
		log.Println("Shutting down server...")

		err := gracefulShutdown(server, 25*time.Second)

		if err != nil {
			log.Printf("Server stopped with error: %s", err.Error())
		} else {
			log.Println("Server stopped gracefully.")
		}

		os.Exit(0)
	}()

	log.Printf("Listening on %s", server.Addr)
	log.Fatal(server.ListenAndServe())
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.TrackerLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.LogEvent(util.LOG_LEVEL_INFO, fmt.Sprintf("Request: %s %s", r.Method, r.RequestURI))
			next.ServeHTTP(w, r)
		})
	}
}
