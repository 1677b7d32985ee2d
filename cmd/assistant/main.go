package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"research-assistant/internal/app"
	"research-assistant/internal/httputil"
	"research-assistant/internal/llm"
	"research-assistant/internal/session"
)

type completionRequest struct {
	Model string `json:"model" validate:"required"`
}

type askRequest struct {
	Model    string `json:"model" validate:"required"`
	Question string `json:"question" validate:"required,min=3,max=500"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	r := newRouter(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	server := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("assistant listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("assistant service stopped", "err", err)
	}
	if err := deps.Cache.Close(); err != nil {
		deps.Log.Warn("cache close failed", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log)

	r.Get("/api/models", modelsHandler(deps))
	r.Post("/api/sessions", createSessionHandler(deps))
	r.Post("/api/sessions/{id}/documents", uploadHandler(deps))
	r.Get("/api/sessions/{id}/text", textHandler(deps))
	r.Post("/api/sessions/{id}/summary", summaryHandler(deps))
	r.Get("/api/sessions/{id}/summary", summaryDownloadHandler(deps))
	r.Post("/api/sessions/{id}/ask", askHandler(deps))
	r.Get("/api/sessions/{id}/answer", answerDownloadHandler(deps))
	r.Get("/api/sessions/{id}/history", historyHandler(deps))
	r.Get("/api/sessions/{id}/report", reportHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	return r
}

func modelsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		available := deps.Assistant.Providers()
		models := make([]string, 0, len(llm.Selections()))
		for _, display := range llm.Selections() {
			sel, err := llm.ParseSelection(display)
			if err != nil {
				continue
			}
			if available[sel.Provider] {
				models = append(models, display)
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"models": models})
	}
}

func createSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := deps.Sessions.Create()
		httputil.WriteJSON(w, http.StatusCreated, map[string]any{
			"session_id": sess.ID.String(),
		})
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxUploadSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}

		if r.ContentLength > maxUploadSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("upload too large (max %d bytes)", maxUploadSize), nil, http.StatusBadRequest)
			return
		}
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			httputil.Fail(deps.Log, w, "invalid multipart form", err, http.StatusBadRequest)
			return
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			httputil.Fail(deps.Log, w, "at least one file is required", nil, http.StatusBadRequest)
			return
		}

		var files [][]byte
		for _, header := range headers {
			if header.Size > maxUploadSize {
				httputil.Fail(deps.Log, w, fmt.Sprintf("file %s too large (max %d bytes)", header.Filename, maxUploadSize), nil, http.StatusBadRequest)
				return
			}
			if !isPDF(header.Filename, header.Header.Get("Content-Type")) {
				httputil.Fail(deps.Log, w, fmt.Sprintf("unsupported file type for %s (only PDF allowed)", header.Filename), nil, http.StatusBadRequest)
				return
			}
			file, err := header.Open()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to open file", err, http.StatusInternalServerError)
				return
			}
			content, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
				return
			}
			files = append(files, content)
		}

		doc := deps.Assistant.Ingest(r.Context(), sess, files)
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"words": doc.Words,
			"chars": doc.Chars,
		})
	}
}

// isPDF checks the declared Content-Type, falling back to the file
// extension when the type is missing.
func isPDF(filename, contentType string) bool {
	if contentType == "" {
		return strings.ToLower(filepath.Ext(filename)) == ".pdf"
	}
	return contentType == "application/pdf"
}

func textHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if _, err := io.WriteString(w, sess.Document().Text); err != nil {
			deps.Log.Warn("text write failed", "err", err)
		}
	}
}

func summaryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		sel, ok := parseSelection(deps, w, req.Model)
		if !ok {
			return
		}
		if sess.Document().Text == "" {
			httputil.Fail(deps.Log, w, "no documents uploaded", nil, http.StatusConflict)
			return
		}

		summary, err := deps.Assistant.Summarize(r.Context(), sess, sel)
		if err != nil && summary == "" {
			httputil.Fail(deps.Log, w, "summary failed", err, http.StatusBadRequest)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"summary":        summary,
			"provider_error": err != nil,
		})
	}
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}

		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		sel, ok := parseSelection(deps, w, req.Model)
		if !ok {
			return
		}
		if sess.Document().Text == "" {
			httputil.Fail(deps.Log, w, "no documents uploaded", nil, http.StatusConflict)
			return
		}

		answer, err := deps.Assistant.Ask(r.Context(), sess, sel, req.Question)
		if err != nil && answer == "" {
			httputil.Fail(deps.Log, w, "ask failed", err, http.StatusBadRequest)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"answer":         answer,
			"provider_error": err != nil,
		})
	}
}

// summaryDownloadHandler serves the latest summary as a plain-text download.
func summaryDownloadHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}
		summary := sess.Summary()
		if summary == "" {
			httputil.Fail(deps.Log, w, "no summary generated", nil, http.StatusNotFound)
			return
		}
		writeTextDownload(deps, w, "summary.txt", summary)
	}
}

// answerDownloadHandler serves the most recent answer as a plain-text download.
func answerDownloadHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}
		pairs := sess.QAPairs()
		if len(pairs) == 0 {
			httputil.Fail(deps.Log, w, "no answers recorded", nil, http.StatusNotFound)
			return
		}
		writeTextDownload(deps, w, "answer.txt", pairs[len(pairs)-1].Answer)
	}
}

func writeTextDownload(deps app.Deps, w http.ResponseWriter, filename, content string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.WriteString(w, content); err != nil {
		deps.Log.Warn("download write failed", "err", err)
	}
}

func historyHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"messages": sess.Messages(),
			"qa_pairs": sess.QAPairs(),
		})
	}
}

func reportHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := lookupSession(deps, w, r)
		if !ok {
			return
		}
		pdf, err := deps.Assistant.Export(sess)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to build report", err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="research_report.pdf"`)
		if _, err := w.Write(pdf); err != nil {
			deps.Log.Warn("report write failed", "err", err)
		}
	}
}

// lookupSession resolves the {id} URL parameter to a live session, writing
// the error response itself when that fails.
func lookupSession(deps app.Deps, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
		return nil, false
	}
	sess, err := deps.Sessions.Get(id)
	if err != nil {
		httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// parseSelection parses the model display string, writing the error
// response itself when that fails.
func parseSelection(deps app.Deps, w http.ResponseWriter, display string) (llm.Selection, bool) {
	sel, err := llm.ParseSelection(display)
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid model selection", err, http.StatusBadRequest)
		return llm.Selection{}, false
	}
	return sel, true
}
