package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	cache "github.com/infodht/nightapi"
	"github.com/infodht/nightapi/internal/master"
	"github.com/infodht/nightapi/keys"
)

func (s *Server) handleGetMaster(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	region, ok := keys.Master(subject)
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope(http.StatusNotFound, nil, "unknown master list"))
		return
	}

	items, err := cache.GetOrLoad(r.Context(), s.cache, region.Key(), region.TTL(),
		func(ctx context.Context) ([]master.Item, error) {
			return s.repo.List(ctx, subject)
		})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, items, subject+" fetched successfully"))
}

func (s *Server) handleAddMaster(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")
	region, ok := keys.Master(subject)
	if !ok {
		writeJSON(w, http.StatusNotFound, envelope(http.StatusNotFound, nil, "unknown master list"))
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope(http.StatusBadRequest, nil, "invalid json"))
		return
	}

	item, err := s.repo.Add(r.Context(), subject, body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.invalidate(keys.OnMasterWrite(region))
	writeJSON(w, http.StatusCreated, envelope(http.StatusCreated, item, subject+" added successfully"))
}

func (s *Server) handleGetMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := cache.GetOrLoad(r.Context(), s.cache, keys.MenusMaster.Key(), keys.MenusMaster.TTL(), s.repo.Menus)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, menus, "menus fetched successfully"))
}

func (s *Server) handleAddMenu(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ParentID int    `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope(http.StatusBadRequest, nil, "invalid json"))
		return
	}

	menu, err := s.repo.AddMenu(r.Context(), body.Name, body.ParentID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.invalidate(keys.OnMenuWrite())
	writeJSON(w, http.StatusCreated, envelope(http.StatusCreated, menu, "menu added successfully"))
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := s.roleID(w, r)
	if !ok {
		return
	}
	region := keys.AccessPermissions(roleID)

	perms, err := cache.GetOrLoad(r.Context(), s.cache, region.Key(), region.TTL(),
		func(ctx context.Context) ([]master.Permission, error) {
			return s.repo.Permissions(ctx, roleID)
		})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, perms, "permissions fetched successfully"))
}

func (s *Server) handleSetPermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := s.roleID(w, r)
	if !ok {
		return
	}

	var p master.Permission
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.MenuID <= 0 {
		writeJSON(w, http.StatusBadRequest, envelope(http.StatusBadRequest, nil, "menu_id is required"))
		return
	}

	if err := s.repo.SetPermission(r.Context(), roleID, p); err != nil {
		s.writeError(w, err)
		return
	}
	s.invalidate(keys.OnPermissionWrite(roleID))
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, p, "permission saved successfully"))
}

func (s *Server) handleGetSidebar(w http.ResponseWriter, r *http.Request) {
	roleID, ok := s.roleID(w, r)
	if !ok {
		return
	}
	region := keys.AccessSidebar(roleID)

	menus, err := cache.GetOrLoad(r.Context(), s.cache, region.Key(), region.TTL(),
		func(ctx context.Context) ([]master.Menu, error) {
			return s.repo.Sidebar(ctx, roleID)
		})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, menus, "sidebar fetched successfully"))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	ks := s.cache.Keys()
	if ks == nil {
		ks = []string{}
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, map[string]any{
		"size": s.cache.Size(),
		"keys": ks,
	}, "cache stats"))
}

func (s *Server) handleCacheDelete(w http.ResponseWriter, r *http.Request) {
	glob := r.URL.Query().Get("pattern")
	if glob == "" {
		writeJSON(w, http.StatusBadRequest, envelope(http.StatusBadRequest, nil, "pattern is required"))
		return
	}

	removed, ok := s.cache.DelPatternCount(glob)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, envelope(http.StatusInternalServerError, nil, "cache delete failed"))
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, map[string]int{"removed": removed}, "cache entries deleted"))
}

func (s *Server) handleCacheFlush(w http.ResponseWriter, _ *http.Request) {
	if !s.cache.Flush() {
		writeJSON(w, http.StatusInternalServerError, envelope(http.StatusInternalServerError, nil, "cache flush failed"))
		return
	}
	writeJSON(w, http.StatusOK, envelope(http.StatusOK, nil, "cache flushed"))
}

// roleID reads the role from the URL. It is rejected if it could not be a
// single cache key qualifier.
func (s *Server) roleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "roleID")
	if err := keys.ValidID(id); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope(http.StatusBadRequest, nil, "invalid role id"))
		return "", false
	}
	return id, true
}
