package http

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/amitacademy/testseries/internal/storage"
)

// MountAssets serves course and test images out of the blob store.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// POST /assets/{kind}/{id}: multipart upload, kind is courses|tests
	r.Post("/{kind}/{id}", func(w http.ResponseWriter, r *http.Request) {
		kind := chi.URLParam(r, "kind")
		if kind != "courses" && kind != "tests" {
			writeError(w, http.StatusBadRequest, "Unknown asset kind")
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "File required")
			return
		}
		defer f.Close()

		key := kind + "/" + chi.URLParam(r, "id") + "/" + path.Base(hdr.Filename)
		if _, err := bs.Put(key, f); err != nil {
			writeError(w, http.StatusInternalServerError, "Storage error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key})
	})

	// GET /assets/*: returns the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			writeError(w, http.StatusNotFound, "Asset not found")
			return
		}
		defer rc.Close()
		if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
			w.Header().Set("Content-Type", ct)
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		_, _ = io.Copy(w, rc)
	})
}
