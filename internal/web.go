package internal

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// SessionCookie names the cookie that carries the browser's session ID
const SessionCookie = "recap_session"

//go:embed templates/index.html
var templateFS embed.FS

// pageData is everything the page template renders
type pageData struct {
	URL      string
	Title    string
	Language string
	Summary  template.HTML
	Question string
	Answer   template.HTML
	Error    string
	Notice   string
}

// WebServer serves the single-page summarize-then-ask UI
type WebServer struct {
	app      *App
	sessions *SessionStore
	tmpl     *template.Template
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
	logger   *slog.Logger
}

// NewWebServer creates the web front-end over app
func NewWebServer(app *App, sessions *SessionStore, logger *slog.Logger) (*WebServer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	return &WebServer{
		app:      app,
		sessions: sessions,
		tmpl:     tmpl,
		markdown: goldmark.New(),
		policy:   bluemonday.UGCPolicy(),
		logger:   logger,
	}, nil
}

// Handler returns the router with middleware and routes
func (ws *WebServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(ws.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/", ws.handleIndex)
	r.Post("/summarize", ws.handleSummarize)
	r.Post("/ask", ws.handleAsk)
	r.Post("/voice", ws.handleVoice)

	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (ws *WebServer) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ws.logger.Info("web server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	ws.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}

// requestLogger logs each request through slog
func (ws *WebServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		ws.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()))
	})
}

// session returns the caller's stored session, or a transient empty one for
// browsers without a live session cookie
func (ws *WebServer) session(r *http.Request) (*Session, bool) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := ws.sessions.Lookup(cookie.Value); ok {
			return sess, true
		}
	}
	return NewSession(), false
}

// keep stores a transient session and issues its cookie
func (ws *WebServer) keep(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    ws.sessions.Add(sess),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// page fills in the summary panel from the session
func (ws *WebServer) page(sess *Session) pageData {
	return pageData{
		URL:      sess.VideoURL(),
		Title:    sess.Title(),
		Language: sess.Language(),
		Summary:  ws.renderMarkdown(sess.Summary()),
	}
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := ws.session(r)
	ws.render(w, ws.page(sess))
}

func (ws *WebServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	sess, stored := ws.session(r)
	rawURL := r.FormValue("url")

	summarized, err := ws.app.Summarize(r.Context(), sess, rawURL)
	if summarized && !stored {
		ws.keep(w, sess)
	}

	data := ws.page(sess)
	data.URL = rawURL
	switch {
	case err != nil:
		ws.logger.Info("summarize failed", "url", rawURL, "error", err)
		data.Error = UserMessage(err)
	case !summarized:
		data.Notice = "Only YouTube video links are summarized."
	}
	ws.render(w, data)
}

func (ws *WebServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess, _ := ws.session(r)
	question := r.FormValue("question")

	data := ws.page(sess)
	data.Question = question
	ws.answer(r.Context(), sess, &data, question)
	ws.render(w, data)
}

func (ws *WebServer) handleVoice(w http.ResponseWriter, r *http.Request) {
	sess, _ := ws.session(r)
	data := ws.page(sess)

	question, ok := ws.app.VoiceQuestion(r.Context())
	if !ok {
		data.Notice = question
		ws.render(w, data)
		return
	}

	data.Question = question
	ws.answer(r.Context(), sess, &data, question)
	ws.render(w, data)
}

// answer fills in the answer panel or the error for question
func (ws *WebServer) answer(ctx context.Context, sess *Session, data *pageData, question string) {
	answer, err := ws.app.Ask(ctx, sess, question)
	if err != nil {
		ws.logger.Info("ask failed", "error", err)
		data.Error = UserMessage(err)
		return
	}
	data.Answer = ws.renderMarkdown(answer)
}

// renderMarkdown converts model output to sanitized HTML
func (ws *WebServer) renderMarkdown(content string) template.HTML {
	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := ws.markdown.Convert([]byte(content), &buf); err != nil {
		ws.logger.Warn("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(ws.policy.SanitizeBytes(buf.Bytes()))
}

func (ws *WebServer) render(w http.ResponseWriter, data pageData) {
	var buf bytes.Buffer
	if err := ws.tmpl.Execute(&buf, data); err != nil {
		ws.logger.Error("rendering page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		ws.logger.Debug("writing response", "error", err)
	}
}
