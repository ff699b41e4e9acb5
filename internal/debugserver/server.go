// Package debugserver serves a read-only JSON view of a running world.
package debugserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/internal/logger"
)

// Source is what the inspector reads.
type Source interface {
	Snapshot() world.Snapshot
	ObjectSnapshot(id uint16) (world.ObjectSnapshot, bool)
	ActiveObjectSnapshots() []world.ObjectSnapshot
	DescribeSector(room, x, z int) (world.SectorInfo, bool)
	FindRoute(room, startX, startZ, goalX, goalZ int) (world.Route, bool)
}

// Server is the inspector.
type Server struct {
	src Source
	// mu is held while reading src; the simulation holds it while ticking.
	mu  sync.Locker
	log *zap.Logger
	srv *http.Server
}

// New creates an inspector over src. mu guards src against the simulation;
// nil uses a private lock.
func New(src Source, mu sync.Locker) *Server {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Server{src: src, mu: mu, log: logger.Named("debugserver")}
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/json/world", s.handleWorld).Methods(http.MethodGet)
	r.HandleFunc("/json/objects", s.handleObjects).Methods(http.MethodGet)
	r.HandleFunc("/json/objects/active", s.handleActiveObjects).Methods(http.MethodGet)
	r.HandleFunc("/json/objects/{id:[0-9]+}", s.handleObject).Methods(http.MethodGet)
	r.HandleFunc("/json/sector/{room:[0-9]+}/{x:[0-9]+}/{z:[0-9]+}", s.handleSector).Methods(http.MethodGet)
	r.HandleFunc("/json/route/{room:[0-9]+}/{sx:[0-9]+}/{sz:[0-9]+}/{gx:[0-9]+}/{gz:[0-9]+}", s.handleRoute).Methods(http.MethodGet)

	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(zap.NewStdLog(s.log).Writer(), h)
}

// Start listens on addr in the background.
func (s *Server) Start(addr string) {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		s.log.Info("inspector listening", zap.String("addr", addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("inspector stopped", zap.Error(err))
		}
	}()
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.src.Snapshot()
	s.mu.Unlock()

	snap.Objects = nil
	writeJSON(w, snap)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.src.Snapshot()
	s.mu.Unlock()

	if snap.Objects == nil {
		snap.Objects = []world.ObjectSnapshot{}
	}
	writeJSON(w, snap.Objects)
}

func (s *Server) handleActiveObjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	objs := s.src.ActiveObjectSnapshots()
	s.mu.Unlock()

	writeJSON(w, objs)
}

func (s *Server) handleObject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid object id")
		return
	}

	s.mu.Lock()
	obj, ok := s.src.ObjectSnapshot(uint16(id))
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such object")
		return
	}
	writeJSON(w, obj)
}

func (s *Server) handleSector(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, errRoom := strconv.Atoi(vars["room"])
	x, errX := strconv.Atoi(vars["x"])
	z, errZ := strconv.Atoi(vars["z"])
	if errRoom != nil || errX != nil || errZ != nil {
		writeError(w, http.StatusBadRequest, "invalid sector address")
		return
	}

	s.mu.Lock()
	info, ok := s.src.DescribeSector(room, x, z)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such sector")
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var args [5]int
	for i, key := range []string{"room", "sx", "sz", "gx", "gz"} {
		v, err := strconv.Atoi(vars[key])
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid route address")
			return
		}
		args[i] = v
	}

	s.mu.Lock()
	route, ok := s.src.FindRoute(args[0], args[1], args[2], args[3], args[4])
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "no such room")
		return
	}
	if route.Cells == nil {
		route.Cells = [][2]int{}
	}
	writeJSON(w, route)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
