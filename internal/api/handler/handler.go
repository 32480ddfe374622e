package handler

import (
	"campusdesk/backend/internal/reaper"
	"campusdesk/backend/internal/storage"
	"campusdesk/backend/internal/templates"
	"campusdesk/backend/internal/workload"
)

// Handler holds the services the HTTP layer dispatches into.
type Handler struct {
	Storage   storage.Storage
	Reaper    *reaper.Service
	Workload  *workload.Service
	Templates *templates.Store
}

func NewHandler(s storage.Storage, r *reaper.Service, w *workload.Service, t *templates.Store) *Handler {
	return &Handler{Storage: s, Reaper: r, Workload: w, Templates: t}
}
