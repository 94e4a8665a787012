package author

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/libbyhq/libby/internal/platform/middleware"
	requestutil "github.com/libbyhq/libby/internal/platform/request"
	"github.com/libbyhq/libby/internal/platform/respond"
	"github.com/libbyhq/libby/internal/platform/sec"
	"github.com/libbyhq/libby/internal/platform/validate"
	"github.com/libbyhq/libby/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/", handler.listAuthors)
	router.Get("/{id}", handler.getAuthor)

	// Librarian and above
	router.Group(func(staffRoute chi.Router) {
		staffRoute.Use(middleware.RequireRole(sec.RoleLibrarian))

		staffRoute.Post("/", handler.createAuthor)
		staffRoute.Patch("/{id}", handler.updateAuthor)

		// Admin strict only
		staffRoute.With(middleware.RequireRole(sec.RoleAdmin)).Delete("/{id}", handler.deleteAuthor)
	})

	return router
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	authors, total, err := handler.service.ListAuthors(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, authors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	idStr := requestutil.ID(request, "id")
	authorID, err := strconv.Atoi(idStr)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("id", "Must be an integer"))
		return
	}

	author, err := handler.service.GetAuthor(request.Context(), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) createAuthor(writer http.ResponseWriter, request *http.Request) {
	var input Author
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateAuthor(request.Context(), &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, input)
}

func (handler *Handler) updateAuthor(writer http.ResponseWriter, request *http.Request) {
	idStr := requestutil.ID(request, "id")
	authorID, err := strconv.Atoi(idStr)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("id", "Must be an integer"))
		return
	}

	var input Author
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateAuthor(request.Context(), authorID, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, input)
}

func (handler *Handler) deleteAuthor(writer http.ResponseWriter, request *http.Request) {
	idStr := requestutil.ID(request, "id")
	authorID, err := strconv.Atoi(idStr)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("id", "Must be an integer"))
		return
	}

	if err := handler.service.DeleteAuthor(request.Context(), authorID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
