package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/libbyhq/libby/internal/platform/middleware"
	requestutil "github.com/libbyhq/libby/internal/platform/request"
	"github.com/libbyhq/libby/internal/platform/respond"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the review endpoints, meant to be mounted under a book
// subtree so {id} resolves to the owning book.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.listReviews)

	// Readers
	router.Group(func(member chi.Router) {
		member.Use(middleware.RequireAuth)

		member.Post("/", handler.createReview)
		member.Patch("/{reviewID}", handler.updateReview)
		member.Delete("/{reviewID}", handler.deleteReview)
	})

	return router
}

// GET /api/v1/books/{id}/reviews
func (handler *Handler) listReviews(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")
	paginationParams := pagination.FromRequest(request)

	reviews, total, err := handler.service.ListByBook(request.Context(), bookID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reviews, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

type reviewRequest struct {
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// POST /api/v1/books/{id}/reviews
func (handler *Handler) createReview(writer http.ResponseWriter, request *http.Request) {
	bookID := requestutil.ID(request, "id")

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reviewDto := &Review{
		BookID: bookID,
		UserID: userID,
		Rating: input.Rating,
		Body:   input.Body,
	}

	if err := handler.service.CreateReview(request.Context(), reviewDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, reviewDto)
}

// PATCH /api/v1/books/{id}/reviews/{reviewID}
func (handler *Handler) updateReview(writer http.ResponseWriter, request *http.Request) {
	reviewID := requestutil.ID(request, "reviewID")

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateReview(request.Context(), reviewID, userID, input.Rating, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

// DELETE /api/v1/books/{id}/reviews/{reviewID}
func (handler *Handler) deleteReview(writer http.ResponseWriter, request *http.Request) {
	reviewID := requestutil.ID(request, "reviewID")

	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	isModerator := sec.UserRole(claims.Role).AtLeast(sec.RoleModerator)

	if err := handler.service.DeleteReview(request.Context(), reviewID, claims.UserID, isModerator); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
