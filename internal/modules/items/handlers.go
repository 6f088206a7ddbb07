package items

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/pkg/response"
)

// Handlers contains the HTTP handlers for both item API versions
type Handlers struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandlers creates a new items handlers instance
func NewHandlers(repo *Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "items").Logger(),
	}
}

// HandleCreateV1 creates a simple item.
// POST /api/v1/items
func (h *Handlers) HandleCreateV1(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}
	// V1 has no enhanced fields.
	req.Category, req.Priority, req.Tags, req.Metadata = "", 0, nil, nil

	item, err := h.repo.Create(req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, item.V1())
}

// HandleGetV1 returns a simple item.
// GET /api/v1/items/{id}
func (h *Handlers) HandleGetV1(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, item.V1())
}

// HandleCreateV2 creates an item with tags, metadata, category and priority.
// POST /api/v2/items
func (h *Handlers) HandleCreateV2(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.repo.Create(req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, item)
}

// HandleGetV2 returns a full item.
// GET /api/v2/items/{id}
func (h *Handlers) HandleGetV2(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, item)
}

// HandleUpdateV2 applies a partial update.
// PUT /api/v2/items/{id}
func (h *Handlers) HandleUpdateV2(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, response.CodeInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.repo.Update(chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, item)
}

// HandleDeleteV2 removes an item.
// DELETE /api/v2/items/{id}
func (h *Handlers) HandleDeleteV2(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, map[string]string{"id": chi.URLParam(r, "id")})
}

// HandleListV2 returns a paginated, optionally filtered item list.
// GET /api/v2/items?page=1&per_page=10&category=general
func (h *Handlers) HandleListV2(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{Category: r.URL.Query().Get("category")}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.PerPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))

	list, meta, err := h.repo.List(q)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"items": list,
		"meta":  meta,
	})
}

func (h *Handlers) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		response.NotFound(w, "Item not found")
		return
	}
	h.log.Error().Err(err).Msg("Items repository error")
	response.Error(w, http.StatusInternalServerError, response.CodeDatabaseError, err.Error())
}
