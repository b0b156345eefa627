package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Poll    *PollHandler
	Vote    *VoteHandler
	Embed   *EmbedHandler
	Metrics http.Handler
}

type RouterConfig struct {
	AllowedOrigins []string

	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP replace the peer
	// address. Enable it only behind a proxy that overwrites those headers,
	// otherwise any client can pick its own public-poll identity.
	TrustProxyHeaders bool
}

func NewHandler(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", adminKeyHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", h.Poll.CreatePoll)
			r.Get("/", h.Poll.ListPolls)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Poll.GetPoll)
				r.Get("/results", h.Poll.GetResults)
				r.Post("/votes", h.Vote.VoteOnPoll)
				r.Get("/codes.txt", h.Poll.DownloadCodesText)
				r.Get("/codes.pdf", h.Poll.DownloadCodesPDF)
				r.Get("/embed-code", h.Poll.GetEmbedCode)
			})
		})

		r.Get("/codes/{code}", h.Poll.FindByCode)

		r.Route("/embed/{id}", func(r chi.Router) {
			r.Get("/", h.Embed.GetEmbedPoll)
			r.Post("/votes", h.Vote.EmbedVote)
		})
	})

	return r
}
