package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/errors"
)

const (
	maxImageBody   = 32 << 20
	maxBatchBody   = 256 << 20
	batchFormField = "images"
)

func (s *Server) handleGetKit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cfg, err := s.store.Load(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutKit(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImageBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	var cfg brand.Config
	if err := json.Unmarshal(body, &cfg); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidElement, err, "parse kit"))
		return
	}
	if err := s.store.Save(r.Context(), userID, &cfg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleComposite(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cfg, err := s.loadKitLenient(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxImageBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read image body"))
		return
	}
	target, err := compose.DecodeTargetBytes(body)
	if err != nil {
		writeError(w, err)
		return
	}

	result, warnings, err := s.compositor.Composite(r.Context(), target, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, result, imaging.PNG); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode result"))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if len(warnings) > 0 {
		for _, warn := range warnings {
			w.Header().Add("X-Skipped-Element", warn.ElementID)
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// batchResponse is the JSON shape of one batch result. Image carries the
// composited PNG, base64-encoded, when the image succeeded.
type batchResponse struct {
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Image   []byte   `json:"image,omitempty"`
	Skipped []string `json:"skippedElements,omitempty"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	cfg, err := s.loadKitLenient(r, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxBatchBody); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form"))
		return
	}
	files := r.MultipartForm.File[batchFormField]
	if len(files) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no files in %q field", batchFormField))
		return
	}

	targets := make([]batch.Target, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "open upload %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBody))
		f.Close()
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload %s", fh.Filename))
			return
		}
		targets = append(targets, batch.Target{Name: fh.Filename, Data: data})
	}

	results, err := s.orchestrator.Run(r.Context(), targets, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]batchResponse, len(results))
	for i, res := range results {
		out := batchResponse{Name: res.Name, Status: "ok"}
		if res.Failed() {
			out.Status = "failed"
			out.Error = errors.UserMessage(res.Err)
			out.Code = string(errors.GetCode(res.Err))
		} else {
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, res.Image, imaging.PNG); err != nil {
				out.Status = "failed"
				out.Error = "failed to encode result"
				out.Code = string(errors.ErrCodeInternal)
			} else {
				out.Image = buf.Bytes()
			}
		}
		for _, warn := range res.Warnings {
			out.Skipped = append(out.Skipped, warn.ElementID)
		}
		resp[i] = out
	}
	writeJSON(w, http.StatusOK, resp)
}

// loadKitLenient treats a missing kit as an empty one, so compositing
// still works for users who never saved a kit.
func (s *Server) loadKitLenient(r *http.Request, userID string) (*brand.Config, error) {
	cfg, err := s.store.Load(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errors.ErrCodeKitNotFound) {
			return brand.NewConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}
