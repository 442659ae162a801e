package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"shiftgrove/server/mapgen"
	"shiftgrove/server/services"
	"shiftgrove/server/sim"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin during development
		return true
	},
}

// ServeWS upgrades the request and runs the client until it disconnects
func ServeWS(playerService *services.PlayerService, worldService *services.WorldService, clientManager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			return
		}
		HandleClientConnection(conn, playerService, worldService, clientManager)
	}
}

// API serves the HTTP endpoints for world status and admin actions
type API struct {
	World *services.WorldService
	Boss  *sim.BossDirector
	// AdminToken guards POST endpoints; empty disables them
	AdminToken string
}

// WorldResponse describes the current map
type WorldResponse struct {
	Name         string               `json:"name"`
	Seed         int32                `json:"seed"`
	Digest       string               `json:"digest"`
	Config       *mapgen.Config       `json:"config"`
	Walls        []mapgen.Wall        `json:"walls,omitempty"`
	CameraBounds *mapgen.CameraBounds `json:"camera_bounds,omitempty"`
	BossActive   bool                 `json:"boss_active"`
}

// RegenerateRequest optionally pins the seed of the next map
type RegenerateRequest struct {
	Seed *int32 `json:"seed,omitempty"`
}

// Register mounts the API routes on r
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/api/world", a.getWorld).Methods(http.MethodGet)

	admin := r.PathPrefix("/api").Subrouter()
	admin.Use(a.requireAdmin)
	admin.HandleFunc("/world/regenerate", a.regenerate).Methods(http.MethodPost)
	admin.HandleFunc("/boss/start", a.startBoss).Methods(http.MethodPost)
	admin.HandleFunc("/boss/defeat", a.endBoss(func(d *sim.BossDirector) { d.Defeated() })).Methods(http.MethodPost)
	admin.HandleFunc("/boss/reset", a.endBoss(func(d *sim.BossDirector) { d.ResetOnPlayerDeath() })).Methods(http.MethodPost)
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.AdminToken == "" {
			writeError(w, http.StatusForbidden, "admin endpoints disabled")
			return
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(a.AdminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) getWorld(w http.ResponseWriter, r *http.Request) {
	state, ok := a.World.Seed().Get()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "world not generated")
		return
	}

	gen := a.World.Generator()
	resp := WorldResponse{
		Name:   state.World,
		Seed:   int32(state.Seed),
		Digest: fmt.Sprintf("%016x", state.Digest),
		Config: gen.Config(),
		Walls:  gen.Walls(),
	}
	if b, ok := gen.CameraBounds(); ok {
		resp.CameraBounds = &b
	}
	if a.Boss != nil {
		if bs, ok := a.Boss.State().Get(); ok {
			resp.BossActive = bs.Active
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) regenerate(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		state services.SeedState
		err   error
	)
	if req.Seed != nil {
		state, err = a.World.RegenerateWithSeed(mapgen.Seed(*req.Seed))
	} else {
		state, err = a.World.Regenerate()
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mapgen.ErrGenerationInProgress) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, state.Message(true))
}

func (a *API) startBoss(w http.ResponseWriter, r *http.Request) {
	if a.Boss == nil {
		writeError(w, http.StatusNotFound, "no boss director")
		return
	}
	if err := a.Boss.ForceStart(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// endBoss ends a running event through end
func (a *API) endBoss(end func(d *sim.BossDirector)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Boss == nil {
			writeError(w, http.StatusNotFound, "no boss director")
			return
		}
		end(a.Boss)
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
