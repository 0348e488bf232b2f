package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starlens/starlens/internal/core"
)

// SnapshotStore is the subset of the store the snapshot handlers need.
type SnapshotStore interface {
	ListSnapshots(ctx context.Context) ([]core.Snapshot, error)
	GetSnapshot(ctx context.Context, id string) (*core.Snapshot, []core.StarredRepo, error)
}

// Snapshots serves read-only snapshot browsing endpoints.
type Snapshots struct {
	Store SnapshotStore
}

// SnapshotDetail is the body returned for a single snapshot.
type SnapshotDetail struct {
	Snapshot core.Snapshot      `json:"snapshot"`
	Stars    []core.StarredRepo `json:"stars"`
}

// List returns all stored snapshots, newest first.
func (h *Snapshots) List(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.Store.ListSnapshots(r.Context())
	if err != nil {
		http.Error(w, "failed to list snapshots", http.StatusInternalServerError)
		return
	}
	if snapshots == nil {
		snapshots = []core.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// Get returns one snapshot with its starred repositories. An id of
// "latest" resolves to the most recent snapshot.
func (h *Snapshots) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "latest" {
		id = ""
	}

	snapshot, stars, err := h.Store.GetSnapshot(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load snapshot", http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	if stars == nil {
		stars = []core.StarredRepo{}
	}
	writeJSON(w, http.StatusOK, SnapshotDetail{Snapshot: *snapshot, Stars: stars})
}
