package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/binlid/pkg/types"
)

type handlers struct {
	inv types.Inventory
	log logrus.FieldLogger
}

type createSpaceRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type createItemRequest struct {
	Name                string `json:"name" validate:"required,max=200"`
	SpaceID             int64  `json:"space_id" validate:"required,gt=0"`
	LocationWithinSpace string `json:"location_within_space" validate:"max=500"`
	Description         string `json:"description" validate:"max=2000"`
}

type moveItemRequest struct {
	ToSpaceID int64  `json:"to_space_id" validate:"required,gt=0"`
	Note      string `json:"note" validate:"max=1000"`
}

type moveItemResponse struct {
	Success bool       `json:"success"`
	Move    types.Move `json:"move"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.inv.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ok"})
}

func (h *handlers) listSpaces(w http.ResponseWriter, r *http.Request) {
	spaces, err := h.inv.ListSpaces(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, spaces)
}

// createSpace replies 201 for a new space and 200 when the name already
// existed.
func (h *handlers) createSpace(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[createSpaceRequest](w, r)
	if !ok {
		return
	}
	res, err := h.inv.CreateSpace(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// listItems lists items, or searches them when q is non-blank.
func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := optionalID(w, r, "space_id")
	if !ok {
		return
	}

	var (
		items []types.ItemView
		err   error
	)
	if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
		items, err = h.inv.SearchItems(r.Context(), types.SearchOptions{Query: q, SpaceID: spaceID})
	} else {
		items, err = h.inv.ListItems(r.Context(), types.ItemFilter{SpaceID: spaceID})
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[createItemRequest](w, r)
	if !ok {
		return
	}
	item, err := h.inv.CreateItem(r.Context(), types.NewItem{
		Name:        req.Name,
		Space:       types.SpaceByID(req.SpaceID),
		Location:    req.LocationWithinSpace,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.inv.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *handlers) listMoves(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	moves, err := h.inv.ListMoves(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, moves)
}

func (h *handlers) moveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := decodeRequest[moveItemRequest](w, r)
	if !ok {
		return
	}
	move, err := h.inv.MoveItem(r.Context(), types.MoveRequest{ItemID: id, ToSpaceID: req.ToSpaceID, Note: req.Note})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, moveItemResponse{Success: true, Move: move})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := optionalID(w, r, "space_id")
	if !ok {
		return
	}
	limit, ok := optionalID(w, r, "limit")
	if !ok {
		return
	}
	items, err := h.inv.SearchItems(r.Context(), types.SearchOptions{
		Query:   r.URL.Query().Get("q"),
		SpaceID: spaceID,
		Limit:   int(limit),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// pathID parses the {id} URL parameter.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// optionalID parses a non-negative integer query parameter; absent means 0.
func optionalID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		writeJSONError(w, http.StatusBadRequest, name+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}
