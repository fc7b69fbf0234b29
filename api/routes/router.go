package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ivanbelmonte/fincalia-backend/api/controllers"
	"github.com/ivanbelmonte/fincalia-backend/api/middleware"
	"github.com/ivanbelmonte/fincalia-backend/internal/doctypes"
	"github.com/ivanbelmonte/fincalia-backend/internal/drafts"
	"github.com/ivanbelmonte/fincalia-backend/internal/leads"
	"github.com/ivanbelmonte/fincalia-backend/internal/media"
	"github.com/ivanbelmonte/fincalia-backend/internal/properties"
	"github.com/ivanbelmonte/fincalia-backend/pkg/config"
	"github.com/ivanbelmonte/fincalia-backend/pkg/db"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        db.Pinger
	Properties   properties.Service
	DocTypes     doctypes.Service
	Leads        leads.Service
	MediaStore   media.Store
	DraftManager *drafts.Manager
	Gatherer     prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DB, p.Redis))
	})

	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Post("/", controllers.PropertyCreate(p.Properties, p.Logger))
			r.Get("/", controllers.PropertyList(p.Properties, p.Logger))
			r.Route("/{propertyId}", func(r chi.Router) {
				r.Get("/", controllers.PropertyGet(p.Properties, p.Logger))
				r.Patch("/status", controllers.PropertyUpdateStatus(p.Properties, p.Logger))

				r.Get("/media", controllers.MediaList(p.MediaStore, p.Logger))
				r.Get("/media/{assetId}/content", controllers.MediaContent(p.MediaStore, p.Logger))

				r.Post("/draft", controllers.DraftBegin(p.DraftManager, p.Logger))

				r.Post("/leads", controllers.LeadSubmit(p.Leads, p.Logger))
				r.Get("/leads", controllers.LeadList(p.Leads, p.Logger))
			})
		})

		r.Route("/drafts/{sessionId}", func(r chi.Router) {
			r.Get("/", controllers.DraftGet(p.DraftManager, p.Logger))
			r.Get("/assets", controllers.DraftAssets(p.DraftManager, p.Logger))
			r.Post("/images", controllers.DraftAddImage(p.DraftManager, p.Config.Media, p.Logger))
			r.Post("/documents", controllers.DraftAddDocument(p.DraftManager, p.Config.Media, p.Logger))
			r.Delete("/assets/{assetId}", controllers.DraftRemoveAsset(p.DraftManager, p.Logger))
			r.Put("/principal", controllers.DraftSetPrincipal(p.DraftManager, p.Logger))
			r.Put("/video", controllers.DraftReplaceVideo(p.DraftManager, p.Config.Media, p.Logger))
			r.Delete("/video", controllers.DraftRemoveVideo(p.DraftManager, p.Logger))
			r.Post("/commit", controllers.DraftCommit(p.DraftManager, p.Logger))
			r.Post("/discard", controllers.DraftDiscard(p.DraftManager, p.Logger))
		})

		r.Get("/document-types", controllers.DocumentTypeList(p.DocTypes, p.Logger))
	})

	return r
}
