package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"tookjai-pos/internal/config"
	"tookjai-pos/internal/database"
	"tookjai-pos/internal/logger"
	custommiddleware "tookjai-pos/internal/middleware"
	"tookjai-pos/internal/printer"
	"tookjai-pos/internal/render"
	"tookjai-pos/internal/repository"
	"tookjai-pos/internal/service"
	"tookjai-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dependencies are the long-lived collaborators built at startup
type Dependencies struct {
	Database  database.Service
	Renderer  *render.Renderer
	Printer   printer.Deliverer
	Artifacts printer.ArtifactStore
	Redis     *redis.Client // nil disables print rate limiting
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, log *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger.Component(log, "http")))
	router.Use(custommiddleware.ErrorHandlingMiddleware(log))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := deps.Database.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   health["status"],
			"database": health,
		})
	})

	loc := cfg.Shop.Location()
	db := deps.Database.DB()

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	productTypeRepo := repository.NewProductTypeRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize printing
	spooler := printer.NewSpooler(deps.Printer, deps.Artifacts, printer.DefaultPolicies, logger.Component(log, "printer"))

	// Initialize services
	inventory := service.NewInventoryService(productRepo, logger.Component(log, "inventory"))
	ledger := service.NewLoyaltyLedger(memberRepo)
	settlement := service.NewSettlementService(
		orderRepo,
		memberRepo,
		inventory,
		ledger,
		deps.Renderer,
		spooler,
		service.SettlementOptions{
			Shop: render.Shop{
				Name:    cfg.Shop.Name,
				Address: cfg.Shop.Address,
				Phone:   cfg.Shop.Phone,
			},
			PointValue:        decimal.NewFromFloat(cfg.Loyalty.PointValue),
			TrustClientTotals: cfg.Settlement.TrustClientTotals,
			Location:          loc,
		},
		logger.Component(log, "settlement"),
	)
	goods := service.NewGoodsService(productRepo, productTypeRepo, inventory, deps.Renderer, spooler, logger.Component(log, "goods"))
	members := service.NewMemberService(memberRepo)

	var printLimiter func(http.Handler) http.Handler
	if deps.Redis != nil {
		printLimiter = custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.PrintRequests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "print",
		}, logger.Component(log, "ratelimit"))
	}

	// Register routes
	transport.NewGoodsHandler(goods, printLimiter, loc, log).RegisterRoutes(router)
	transport.NewMemberHandler(members, log).RegisterRoutes(router)
	transport.NewOrderHandler(settlement, printLimiter, loc, log).RegisterRoutes(router)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: log,
		deps:   deps,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.deps.Redis != nil {
		if err := s.deps.Redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if closer, ok := s.deps.Artifacts.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Error("Failed to close artifact store", zap.Error(err))
		}
	}

	if s.deps.Database != nil {
		if err := s.deps.Database.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
