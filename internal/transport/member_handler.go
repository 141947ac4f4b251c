package transport

import (
	"net/http"

	"tookjai-pos/internal/middleware"
	"tookjai-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateMemberRequest represents the member registration payload
type CreateMemberRequest struct {
	Phone  string `json:"phone" validate:"required,phone"`
	Name   string `json:"name" validate:"required,max=200"`
	Points int64  `json:"points" validate:"gte=0"`
}

// SetPointsRequest represents an administrative balance correction
type SetPointsRequest struct {
	Points *int64 `json:"points" validate:"required,gte=0"`
}

// MemberHandler handles HTTP requests for loyalty members
type MemberHandler struct {
	members service.MemberService
	logger  *zap.Logger
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(members service.MemberService, logger *zap.Logger) *MemberHandler {
	return &MemberHandler{
		members: members,
		logger:  logger,
	}
}

// RegisterRoutes registers all member routes
func (h *MemberHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/members", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/{phone}", h.Get)
		r.Put("/{phone}/points", h.SetPoints)
	})
}

// Get handles member lookup by phone
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	member, err := h.members.Get(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, member)
}

// Create handles member registration
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Member validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	member, err := h.members.Create(r.Context(), req.Phone, req.Name, req.Points)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Member created", zap.String("phone", member.Phone))
	middleware.RespondWithJSON(w, http.StatusCreated, member)
}

// SetPoints handles overwriting a member balance
func (h *MemberHandler) SetPoints(w http.ResponseWriter, r *http.Request) {
	var req SetPointsRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	phone := chi.URLParam(r, "phone")
	member, err := h.members.SetPoints(r.Context(), phone, *req.Points)
	if err != nil {
		middleware.RespondWithDomainError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Member points set", zap.String("phone", phone), zap.Int64("points", member.Points))
	middleware.RespondWithJSON(w, http.StatusOK, member)
}
