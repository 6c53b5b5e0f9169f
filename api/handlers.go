package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"strings"

	"forest-tools/catalog"
	"forest-tools/dataset"
	"forest-tools/fetch"
	"forest-tools/metatools"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxThumbnail = 2048

type groupList struct {
	Count  int                     `json:"count"`
	Groups []metatools.GroupRecord `json:"groups"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Error(err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	var statusErr *fetch.StatusError
	switch {
	case errors.Is(err, dataset.ErrUnknownGroup), errors.Is(err, dataset.ErrOutOfRange):
		return http.StatusNotFound
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// parseBBox reads "min_lon,min_lat,max_lon,max_lat".
func parseBBox(s string) ([4]float64, error) {
	var bbox [4]float64
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return bbox, fmt.Errorf("bbox needs 4 comma separated values, got %d", len(parts))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return bbox, fmt.Errorf("bbox value %q: %w", p, err)
		}
		bbox[i] = v
	}
	return bbox, nil
}

func (s *server) listGroups(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var indices []int
	if raw := query.Get("bbox"); raw != "" {
		bbox, err := parseBBox(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		indices = s.ds.Intersecting(bbox)
	} else {
		indices = make([]int, s.ds.Len())
		for i := range indices {
			indices[i] = i
		}
	}

	season := metatools.Season(query.Get("season"))
	groups := make([]metatools.GroupRecord, 0, len(indices))
	for _, i := range indices {
		rec, _ := s.ds.Record(i)
		if season != "" && !hasSeason(rec, season) {
			continue
		}
		groups = append(groups, rec)
	}
	writeJSON(w, http.StatusOK, groupList{Count: len(groups), Groups: groups})
}

func hasSeason(rec metatools.GroupRecord, season metatools.Season) bool {
	for _, img := range rec.Images {
		if img.Season == season {
			return true
		}
	}
	return false
}

func (s *server) getGroup(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, _, ok := s.ds.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w %q", dataset.ErrUnknownGroup, id))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *server) croissant(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case catalog.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	case "", catalog.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
		return
	}
	if err := catalog.Encode(w, s.doc, format); err != nil {
		logrus.Error(err)
	}
}

func (s *server) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metatools.Summarize(s.ds.Records()))
}

func (s *server) imagePreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	_, i, ok := s.ds.ByID(vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w %q", dataset.ErrUnknownGroup, vars["id"]))
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	raster, err := s.ds.LoadImage(r.Context(), i, index)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	img, err := dataset.RGB(raster)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writePNG(w, r, img)
}

func (s *server) maskPreview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	_, i, ok := s.ds.ByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w %q", dataset.ErrUnknownGroup, id))
		return
	}
	raster, err := s.ds.LoadMask(r.Context(), i)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	img, err := dataset.MaskImage(raster)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.writePNG(w, r, img)
}

// writePNG honours an optional ?size= thumbnail bound.
func (s *server) writePNG(w http.ResponseWriter, r *http.Request, img image.Image) {
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxThumbnail {
			writeError(w, http.StatusBadRequest, fmt.Errorf("size must be between 1 and %d", maxThumbnail))
			return
		}
		img = dataset.Thumbnail(img, uint(size))
	}
	w.Header().Set("Content-Type", "image/png")
	if err := dataset.WritePNG(w, img); err != nil {
		logrus.Error(err)
	}
}
