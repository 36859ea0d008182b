package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/item-share-backend/internal/auth"
	"github.com/nekogravitycat/item-share-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/item-share-backend/internal/booking/http"
	"github.com/nekogravitycat/item-share-backend/internal/comment"
	"github.com/nekogravitycat/item-share-backend/internal/item"
	itemHttp "github.com/nekogravitycat/item-share-backend/internal/item/http"
	"github.com/nekogravitycat/item-share-backend/internal/itemrequest"
	itemrequestHttp "github.com/nekogravitycat/item-share-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/item-share-backend/internal/photo"
	photoHttp "github.com/nekogravitycat/item-share-backend/internal/photo/http"
	"github.com/nekogravitycat/item-share-backend/internal/user"
	userHttp "github.com/nekogravitycat/item-share-backend/internal/user/http"
)

// Config carries everything the router needs to assemble middleware and
// register the module routes.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService        user.Service
	ItemService        item.Service
	BookingService     booking.Service
	CommentService     comment.Service
	ItemRequestService itemrequest.Service
	PhotoService       photo.Service

	JWTManager *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	itemHandler := itemHttp.NewHandler(cfg.ItemService, cfg.BookingService, cfg.CommentService, cfg.PhotoService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	itemrequestHandler := itemrequestHttp.NewHandler(cfg.ItemRequestService)
	photoHandler := photoHttp.NewHandler(cfg.PhotoService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		itemHttp.RegisterRoutes(v1, itemHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		itemrequestHttp.RegisterRoutes(v1, itemrequestHandler, authMiddleware)
		photoHttp.RegisterRoutes(v1, photoHandler, authMiddleware)
	}

	return r
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
