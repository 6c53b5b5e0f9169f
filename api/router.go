// Package api serves manifest records, the catalog and image previews over HTTP.
package api

import (
	"net/http"
	"time"

	"forest-tools/catalog"
	"forest-tools/dataset"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type server struct {
	ds  *dataset.Dataset
	doc catalog.Document
}

// NewRouter wires the read-only routes over ds.
func NewRouter(ds *dataset.Dataset, doc catalog.Document) *mux.Router {
	s := &server{ds: ds, doc: doc}
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/groups", s.listGroups).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}", s.getGroup).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}/mask.png", s.maskPreview).Methods(http.MethodGet)
	r.HandleFunc("/groups/{id}/images/{index:[0-9]+}/preview.png", s.imagePreview).Methods(http.MethodGet)
	r.HandleFunc("/croissant", s.croissant).Methods(http.MethodGet)
	r.HandleFunc("/summary", s.summary).Methods(http.MethodGet)
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
