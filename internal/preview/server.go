package preview

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/StudyPress/internal/logging"
)

// reloadScript connects the served page back to the reload WebSocket.
const reloadScript = `<script>
(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function() { location.reload(); };
})();
</script>`

// Server serves the current rendered page and pushes reloads when it
// changes.
type Server struct {
	addr string
	hub  *Hub

	mu   sync.RWMutex
	page string
	ref  string
}

// NewServer creates a preview server that will listen on addr.
func NewServer(addr string) *Server {
	return &Server{
		addr: addr,
		hub:  NewHub(),
		page: "<!DOCTYPE html>\n<html><body><p>Nothing rendered yet.</p></body></html>",
	}
}

// SetPage swaps in a newly rendered page and tells connected browsers to
// reload. The reference names what was rendered (e.g. "Psalms 83").
func (s *Server) SetPage(reference, page string) {
	s.mu.Lock()
	s.page = page
	s.ref = reference
	s.mu.Unlock()
	s.hub.Reload(reference)
}

// Handler returns the HTTP handler: the rendered page at /, the reload
// socket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.servePage)
	mux.HandleFunc("/ws", s.hub.handleWebSocket)
	return logging.CombinedMiddleware(mux)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.mu.RLock()
	page := s.page
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(injectReload(page)))
}

// injectReload places the reload script before </body>, or appends it
// when the page has no body close tag.
func injectReload(page string) string {
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		return page[:i] + reloadScript + "\n" + page[i:]
	}
	return page + reloadScript
}

// ListenAndServe runs the preview server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
