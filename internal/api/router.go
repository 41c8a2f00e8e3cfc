// Package api wires the HTTP surface: templates, middleware and handlers.
package api

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chitfund-service/internal/api/handlers"
	"chitfund-service/internal/api/middleware"
	"chitfund-service/internal/api/responses"
	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/core/auth"
	"chitfund-service/internal/core/ledger"
	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/metrics"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "chitfund-service"

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Deps are the collaborators the router needs.
type Deps struct {
	Auth     auth.Service
	Ledger   ledger.Service
	Auction  auction.Service
	Source   *workbook.Source
	Status   paystatus.Store
	Uploader handlers.Uploader
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	SessionTTL   time.Duration
	CookieSecure bool
	// TemplateDir replaces the embedded templates when set.
	TemplateDir string
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewRouter builds the gin engine serving every route.
func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	tmpl, err := loadTemplates(d.TemplateDir)
	if err != nil {
		return nil, err
	}

	responses.SetLogger(d.Logger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), middleware.Session(d.Auth))
	router.SetHTMLTemplate(tmpl)

	authHandler := handlers.NewAuthHandler(d.Auth, d.SessionTTL, d.CookieSecure)
	ledgerHandler := handlers.NewLedgerHandler(d.Ledger)
	statusHandler := handlers.NewStatusHandler(d.Status, d.Metrics, d.Now)
	auctionHandler := handlers.NewAuctionHandler(d.Auction)
	editorHandler := handlers.NewEditorHandler(d.Source, d.Uploader, d.Logger)
	reportHandler := handlers.NewReportHandler(d.Ledger, d.Now)
	pageHandler := handlers.NewPageHandler(d.Ledger, d.Auction)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": ServiceName})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	router.GET("/", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	pages := router.Group("/", middleware.RequirePage())
	{
		pages.GET("/dashboard", pageHandler.Dashboard)
		pages.GET("/members", pageHandler.Members)
		pages.GET("/auction", pageHandler.Auction)
		pages.GET("/reports", pageHandler.Reports)
		pages.GET("/excel_editor", pageHandler.ExcelEditor)
		pages.GET("/view_receipts", reportHandler.ViewReceipts)
		pages.GET("/download_excel", reportHandler.Download)
		pages.POST("/run-auction-batch", auctionHandler.RunBatch)
	}

	apiGroup := router.Group("/api", middleware.RequireAPI())
	{
		apiGroup.GET("/members", ledgerHandler.Members)
		apiGroup.GET("/members/lookup", ledgerHandler.Lookup)
		apiGroup.GET("/sheets", ledgerHandler.Sheets)
		apiGroup.GET("/plans", auctionHandler.Plans)
		apiGroup.POST("/settle", auctionHandler.Settle)
		apiGroup.GET("/sheet_data", editorHandler.SheetData)
		apiGroup.POST("/save_sheet_data", editorHandler.SaveSheetData)
		apiGroup.POST("/toggle-pay", statusHandler.Toggle)
	}
	return router, nil
}

func loadTemplates(dir string) (*template.Template, error) {
	var fsys fs.FS
	pattern := "templates/*.html"
	if dir != "" {
		fsys, pattern = os.DirFS(dir), "*.html"
	} else {
		fsys = embeddedTemplates
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	}).ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
