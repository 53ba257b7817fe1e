// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mattlowe/formhall/internal/handler"
	"github.com/mattlowe/formhall/internal/lookup"
	"github.com/mattlowe/formhall/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port           int
	Store          *store.Store
	ExportPageSize int
}

// Router builds the full route table. Split out from Run so tests can mount
// it on an httptest server.
func Router(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	fh := handler.NewFormHandler(cfg.Store)
	r.Post("/v1/forms", fh.CreateForm)
	r.Get("/v1/forms", fh.ListForms)
	r.Post("/v1/forms/import", fh.ImportForm)
	r.Get("/v1/forms/{form_id}", fh.GetForm)
	r.Delete("/v1/forms/{form_id}", fh.DeleteForm)
	r.Post("/v1/forms/{form_id}/fields", fh.AddField)
	r.Patch("/v1/forms/{form_id}/fields/{field_id}", fh.UpdateField)
	r.Delete("/v1/forms/{form_id}/fields/{field_id}", fh.DeleteField)
	r.Post("/v1/forms/{form_id}/fields/{field_id}/move", fh.MoveField)

	sh := handler.NewSubmissionHandler(cfg.Store, cfg.ExportPageSize)
	r.Post("/v1/forms/{form_id}/submissions", sh.SubmitForm)
	r.Get("/v1/forms/{form_id}/submissions", sh.ListSubmissions)
	r.Get("/v1/forms/{form_id}/submissions/export", sh.Export)
	r.Delete("/v1/forms/{form_id}/submissions/{submission_id}", sh.DeleteSubmission)

	mh := handler.NewMemberHandler(cfg.Store)
	r.Get("/v1/members/search", mh.Search)
	r.Method(http.MethodGet, "/v1/members/ws", lookup.NewWSHandler(cfg.Store))

	return handler.Recovery(handler.Logging(r))
}

// Run starts the HTTP server with all routes registered and shuts it down
// when ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("starting server on %s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: Router(cfg),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
