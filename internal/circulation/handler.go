package circulation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"libracatalog/internal/catalog"
	"libracatalog/internal/membership"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the catalog API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.handleListItems)
		r.Post("/", h.handleAddItem)
		r.Delete("/", h.handleRemoveItem)
		r.Get("/search", h.handleSearch)
		r.Get("/{id}/history", h.handleHistory)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleAddUser)
		r.Get("/{id}", h.handleGetUser)
	})
	r.Post("/issue", h.handleIssue)
	r.Post("/return", h.handleReturn)
}

type itemResponse struct {
	catalog.Item
	Kind    catalog.Kind `json:"kind"`
	Summary string       `json:"summary"`
}

func toItemResponse(item catalog.Item) itemResponse {
	return itemResponse{Item: item, Kind: item.Type(), Summary: item.Display()}
}

func toItemResponses(items []catalog.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}

type outcomeResponse struct {
	Outcome
	Message string `json:"message"`
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toItemResponses(h.service.Items(r.Context())))
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string `json:"kind"`
		Title       string `json:"title"`
		Author      string `json:"author"`
		ISBN        string `json:"isbn"`
		Genre       *int   `json:"genre"`
		IssueNumber string `json:"issue_number"`
		Duration    string `json:"duration"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var item catalog.Item
	switch catalog.Kind(req.Kind) {
	case catalog.KindBook:
		if req.Genre == nil {
			http.Error(w, "genre is required for books", http.StatusBadRequest)
			return
		}
		genre, err := catalog.ParseGenre(*req.Genre)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		item = catalog.NewBook(req.Title, req.Author, req.ISBN, genre)
	case catalog.KindMagazine:
		item = catalog.NewMagazine(req.Title, req.Author, req.IssueNumber)
	case catalog.KindDVD:
		item = catalog.NewDVD(req.Title, req.Author, req.Duration)
	default:
		http.Error(w, "kind must be Book, Magazine or DVD", http.StatusBadRequest)
		return
	}

	added, err := h.service.AddItem(r.Context(), item)
	if err != nil {
		http.Error(w, err.Error(), statusForAddError(err))
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(added))
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "missing title", http.StatusBadRequest)
		return
	}
	writeOutcome(w, h.service.RemoveItem(r.Context(), title))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		http.Error(w, "missing search title", http.StatusBadRequest)
		return
	}

	items, result := h.service.SearchItem(r.Context(), title)
	if !result.OK() {
		writeOutcome(w, result)
		return
	}
	writeJSON(w, http.StatusOK, toItemResponses(items))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid item ID", http.StatusBadRequest)
		return
	}

	events, err := h.service.History(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(events) == 0 {
		http.Error(w, "no history for item", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Users(r.Context()))
}

func (h *Handler) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.AddUser(r.Context(), membership.NewUser(req.Name, req.ID))
	if err != nil {
		http.Error(w, err.Error(), statusForAddError(err))
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type loanRequest struct {
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

func decodeLoan(w http.ResponseWriter, r *http.Request) (loanRequest, bool) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return req, false
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.UserID) == "" {
		http.Error(w, "title and user_id are required", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoan(w, r)
	if !ok {
		return
	}
	writeOutcome(w, h.service.IssueItem(r.Context(), req.Title, req.UserID))
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLoan(w, r)
	if !ok {
		return
	}
	writeOutcome(w, h.service.ReturnItem(r.Context(), req.Title, req.UserID))
}

func writeOutcome(w http.ResponseWriter, result Outcome) {
	writeJSON(w, statusForOutcome(result), outcomeResponse{Outcome: result, Message: result.String()})
}

func statusForOutcome(result Outcome) int {
	switch result.Status {
	case StatusIssued, StatusReturned, StatusFound, StatusRemoved:
		return http.StatusOK
	case StatusNotFound, StatusUserNotFound:
		return http.StatusNotFound
	case StatusAlreadyIssued, StatusNotIssued, StatusNotBorrower, StatusStillIssued:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func statusForAddError(err error) int {
	switch {
	case errors.Is(err, ErrMissingTitle), errors.Is(err, ErrMissingKind), errors.Is(err, ErrMissingUserID):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateUser):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
