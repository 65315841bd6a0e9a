package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/FaizanHaider108/lookvisa/internal/auth"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/listing/search"
	"github.com/FaizanHaider108/lookvisa/internal/listing/usecase"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

type ListingService interface {
	CreateListing(ctx context.Context, session auth.Session, in usecase.ListingInput) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	UpdateListing(ctx context.Context, session auth.Session, id string, in usecase.ListingInput) (*domain.Listing, error)
	DeleteListing(ctx context.Context, session auth.Session, id string) error
	SetStatus(ctx context.Context, session auth.Session, id string, target domain.ListingStatus) (*domain.Listing, error)
	MyListings(ctx context.Context, session auth.Session) ([]*domain.Listing, error)
	FindByCountry(ctx context.Context, country string) ([]*domain.Listing, error)
	SearchByCountry(ctx context.Context, q usecase.SearchQuery) (search.Page, error)
}

type AttachmentService interface {
	AddAttachment(ctx context.Context, session auth.Session, listingID, fileName string, data []byte) (string, error)
}

type ListingHandler struct {
	listings       ListingService
	telemetry      search.TelemetrySink
	attachments    AttachmentService
	maxUploadBytes int64
	logger         *logger.Logger
}

func NewListingHandler(listings ListingService, telemetry search.TelemetrySink, attachments AttachmentService, maxUploadBytes int64, log *logger.Logger) *ListingHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &ListingHandler{
		listings:       listings,
		telemetry:      telemetry,
		attachments:    attachments,
		maxUploadBytes: maxUploadBytes,
		logger:         log.Named("rest"),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type statusRequest struct {
	Status domain.ListingStatus `json:"status"`
}

type attachmentResponse struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidListingData), errors.Is(err, domain.ErrInvalidSortOption):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrListingExpired),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrTooManyAttachments):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *ListingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		msg = "Internal server error"
	}
	writeJSON(w, code, messageResponse{Message: msg})
}

func sessionFrom(r *http.Request) auth.Session {
	s, _ := auth.FromContext(r.Context())
	return s
}

func (h *ListingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid request body"})
		return false
	}
	return true
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		page = 1
	}
	result, err := h.listings.SearchByCountry(r.Context(), usecase.SearchQuery{
		Country:  q.Get("country"),
		Industry: q.Get("industry"),
		Sort:     q.Get("sort"),
		Page:     page,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ListingHandler) SearchAll(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.FindByCountry(r.Context(), r.URL.Query().Get("country"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) RecordImpression(w http.ResponseWriter, r *http.Request) {
	if err := h.telemetry.IncrementImpression(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Impression recorded"})
}

func (h *ListingHandler) RecordClick(w http.ResponseWriter, r *http.Request) {
	if err := h.telemetry.IncrementClick(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Click recorded"})
}

func (h *ListingHandler) MyListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.MyListings(r.Context(), sessionFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var in usecase.ListingInput
	if !h.decode(w, r, &in) {
		return
	}
	listing, err := h.listings.CreateListing(r.Context(), sessionFrom(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	var in usecase.ListingInput
	if !h.decode(w, r, &in) {
		return
	}
	listing, err := h.listings.UpdateListing(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.listings.DeleteListing(r.Context(), sessionFrom(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Listing deleted"})
}

func (h *ListingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	listing, err := h.listings.SetStatus(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid or too large multipart upload"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "File is empty"})
		return
	}

	url, err := h.attachments.AddAttachment(r.Context(), sessionFrom(r), chi.URLParam(r, "id"), strings.TrimSpace(header.Filename), data)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachmentResponse{URL: url})
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
