package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"

	"github.com/cleancity-app/waste-report-api/pkg/api/auth"
	"github.com/cleancity-app/waste-report-api/pkg/api/handler"
	"github.com/cleancity-app/waste-report-api/pkg/api/middleware"
	"github.com/cleancity-app/waste-report-api/pkg/api/repositories"
)

var apiVersionHeader = fizz.Header(
	"API-Version",
	"The API version of the response",
	"",
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Auth        *handler.AuthController
	Users       *handler.UsersController
	Reports     *handler.ReportsController
	Admin       *handler.AdminController
	Tokens      *auth.TokenManager
	UserRepo    repositories.UserRepository
	CORSOrigins []string
}

func NewRouter(apiVersion string, deps RouterDeps) *fizz.Fizz {
	g := gin.Default()
	g.Use(APIVersionMiddleware(apiVersion))
	g.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	f := fizz.NewFromEngine(g)

	info := &openapi.Info{
		Title:       "Waste Report API v1",
		Description: "Municipal waste-report submission and moderation API",
		Version:     apiVersion,
	}

	root := f.Group("/v1", "API v1", "Waste report API v1 routes")
	authn := middleware.Authenticate(deps.Tokens, deps.UserRepo)

	// Public routes
	public := root.Group("", "Public", "No authentication required")
	public.POST("/auth/register",
		[]fizz.OperationOption{fizz.Summary("Register a new account"), apiVersionHeader},
		tonic.Handler(deps.Auth.Register, 201),
	)
	public.POST("/auth/login",
		[]fizz.OperationOption{fizz.Summary("Exchange credentials for an access token"), apiVersionHeader},
		tonic.Handler(deps.Auth.Login, 200),
	)
	public.GET("/waste-reports/types",
		[]fizz.OperationOption{fizz.Summary("List available waste types"), apiVersionHeader},
		tonic.Handler(deps.Reports.WasteTypes, 200),
	)

	// Authenticated account routes
	account := root.Group("", "Account", "Account management", authn)
	account.GET("/auth/me",
		[]fizz.OperationOption{fizz.Summary("Get the current account"), apiVersionHeader},
		tonic.Handler(deps.Auth.Me, 200),
	)
	account.PUT("/auth/me",
		[]fizz.OperationOption{fizz.Summary("Update the current account"), apiVersionHeader},
		tonic.Handler(deps.Auth.UpdateProfile, 200),
	)
	account.POST("/auth/logout",
		[]fizz.OperationOption{fizz.Summary("Clear the access token cookie"), apiVersionHeader},
		tonic.Handler(deps.Auth.Logout, 200),
	)
	account.POST("/auth/change-password",
		[]fizz.OperationOption{fizz.Summary("Change the account password"), apiVersionHeader},
		tonic.Handler(deps.Auth.ChangePassword, 200),
	)
	account.GET("/users",
		[]fizz.OperationOption{fizz.ID("usersList"), fizz.Summary("List accounts (admin)"), apiVersionHeader},
		tonic.Handler(deps.Users.List, 200),
	)
	account.GET("/users/:id",
		[]fizz.OperationOption{fizz.ID("usersRetrieve"), fizz.Summary("Get one account"), apiVersionHeader},
		tonic.Handler(deps.Users.Retrieve, 200),
	)
	account.PUT("/users/:id",
		[]fizz.OperationOption{fizz.Summary("Update one account"), apiVersionHeader},
		tonic.Handler(deps.Users.Update, 200),
	)
	account.DELETE("/users/:id",
		[]fizz.OperationOption{fizz.ID("usersDelete"), fizz.Summary("Delete one account (admin)"), apiVersionHeader},
		tonic.Handler(deps.Users.Delete, 200),
	)

	// Citizen report routes
	reports := root.Group("", "Reports", "Waste report submission and tracking", authn)
	reports.GET("/waste-reports",
		[]fizz.OperationOption{fizz.ID("reportsList"), fizz.Summary("List own waste reports"), apiVersionHeader},
		tonic.Handler(deps.Reports.List, 200),
	)
	reports.POST("/waste-reports",
		[]fizz.OperationOption{fizz.Summary("Submit a waste report with optional photos")},
		deps.Reports.Create,
	)
	reports.GET("/waste-reports/:id",
		[]fizz.OperationOption{fizz.ID("reportsRetrieve"), fizz.Summary("Get one waste report"), apiVersionHeader},
		tonic.Handler(deps.Reports.Retrieve, 200),
	)
	reports.PUT("/waste-reports/:id",
		[]fizz.OperationOption{fizz.Summary("Update a pending waste report")},
		deps.Reports.Update,
	)
	reports.DELETE("/waste-reports/:id",
		[]fizz.OperationOption{fizz.ID("reportsDelete"), fizz.Summary("Delete a pending waste report"), apiVersionHeader},
		tonic.Handler(deps.Reports.Delete, 200),
	)

	// Moderation routes
	admin := root.Group("/admin", "Moderation", "Admin-only report moderation", authn, middleware.RequireAdmin())
	admin.GET("/waste-reports",
		[]fizz.OperationOption{fizz.Summary("List all waste reports"), apiVersionHeader},
		tonic.Handler(deps.Admin.ListAll, 200),
	)
	admin.GET("/waste-reports/statistics",
		[]fizz.OperationOption{fizz.Summary("Aggregate report statistics"), apiVersionHeader},
		tonic.Handler(deps.Admin.Statistics, 200),
	)
	admin.GET("/waste-reports/:id",
		[]fizz.OperationOption{fizz.ID("adminRetrieve"), fizz.Summary("Inspect one waste report"), apiVersionHeader},
		tonic.Handler(deps.Admin.Retrieve, 200),
	)
	admin.PUT("/waste-reports/:id/status",
		[]fizz.OperationOption{fizz.Summary("Transition a report's moderation status"), apiVersionHeader},
		tonic.Handler(deps.Admin.UpdateStatus, 200),
	)

	f.GET("/v1/openapi.json", []fizz.OperationOption{}, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
