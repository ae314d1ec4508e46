package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tsawler/pagemark/batch"
	"github.com/tsawler/pagemark/markdown"
	"github.com/tsawler/pagemark/model"
)

// FileResult is one file of a batch response
type FileResult struct {
	Name       string `json:"name"`
	OutputName string `json:"outputName"`
	Status     string `json:"status"`
	Markdown   string `json:"markdown,omitempty"`
	Error      string `json:"error,omitempty"`
	ElapsedMS  int64  `json:"elapsedMs"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// handleConvert handles POST /v1/convert. The document is the multipart
// field "file" or the raw body; ?format=html returns HTML.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	name, data, err := singleUpload(r)
	if err != nil {
		s.writeError(w, r, uploadStatus(err), "invalid upload", err)
		return
	}

	conv := s.conv.ConvertFunc()
	format := strings.ToLower(r.URL.Query().Get("format"))
	switch format {
	case "", "markdown", "md":
		md, err := conv(r.Context(), name, data, nil)
		if err != nil {
			s.writeError(w, r, conversionStatus(err), "conversion failed", err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", batch.OutputName(name, ".md")))
		io.WriteString(w, md)

	case "html":
		md, err := conv(r.Context(), name, data, nil)
		if err != nil {
			s.writeError(w, r, conversionStatus(err), "conversion failed", err)
			return
		}
		out, err := markdown.ToHTML([]byte(md))
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, "render failed", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(out)

	default:
		s.writeError(w, r, http.StatusBadRequest, "unknown format", fmt.Errorf("format %q", format))
	}
}

// handleBatch handles POST /v1/convert/batch
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	results, ok := s.runBatch(w, r)
	if !ok {
		return
	}
	out := make([]FileResult, len(results))
	for i, res := range results {
		out[i] = FileResult{
			Name:       res.Name,
			OutputName: res.OutputName,
			Status:     res.Status.String(),
			Markdown:   res.Output,
			ElapsedMS:  res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": out})
}

// handleArchive handles POST /v1/convert/archive
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	results, ok := s.runBatch(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	n, err := batch.WriteArchive(&buf, results)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "archive failed", err)
		return
	}
	if n == 0 {
		s.writeError(w, r, http.StatusUnprocessableEntity, "no file converted", errors.New("every file failed"))
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.DefaultArchiveName))
	w.Write(buf.Bytes())
}

func (s *Server) runBatch(w http.ResponseWriter, r *http.Request) ([]batch.Result, bool) {
	inputs, err := multiUpload(r)
	if err != nil {
		s.writeError(w, r, uploadStatus(err), "invalid upload", err)
		return nil, false
	}
	log := s.logger.With().Str("request_id", chimiddleware.GetReqID(r.Context())).Logger()
	results, err := s.conv.Batch(batch.WithLogger(log)).Run(r.Context(), inputs, nil)
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "batch cancelled", err)
		return nil, false
	}
	return results, true
}

func singleUpload(r *http.Request) (string, []byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("form field file: %w", err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, err
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, errors.New("empty body")
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "document.pdf"
	}
	return name, data, nil
}

func multiUpload(r *http.Request) ([]batch.Input, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, errors.New("no files in form field files")
	}
	inputs := make([]batch.Input, len(headers))
	for i, h := range headers {
		inputs[i] = batch.Input{Name: h.Filename, Load: openPart(h)}
	}
	return inputs, nil
}

func openPart(h *multipart.FileHeader) func(ctx context.Context) ([]byte, error) {
	return func(context.Context) ([]byte, error) {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func conversionStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrResourceExhausted):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	reqID := chimiddleware.GetReqID(r.Context())
	s.logger.Warn().Err(err).Str("request_id", reqID).Int("status", status).Msg(msg)
	writeJSON(w, status, ErrorResponse{Error: msg, Details: err.Error(), RequestID: reqID})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
