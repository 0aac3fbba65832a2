package storage

import (
	"mime"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/request-routing/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Store *Store
}

func NewHandler(baseHandler *transport.BaseHandler, store *Store) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Store:       store,
	}
}

// ServeUpload shows an attachment inline.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	f, err := h.Store.OpenUpload(chi.URLParam(r, "file"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", disposition("inline", f.Name))
	http.ServeContent(w, r, f.Name, f.ModTime, f)
}

// ServeExport sends an export as a download.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	f, err := h.Store.OpenExport(chi.URLParam(r, "file"))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	defer f.Close()

	if ct := mime.TypeByExtension(filepath.Ext(f.Name)); ct == "" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	}
	w.Header().Set("Content-Disposition", disposition("attachment", f.Name))
	http.ServeContent(w, r, f.Name, f.ModTime, f)
}

func disposition(kind, name string) string {
	return kind + "; filename*=UTF-8''" + url.PathEscape(name)
}
