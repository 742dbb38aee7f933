package ecdb

import (
	"go.uber.org/zap"
)

// Server owns a fixed-capacity set of Worlds (at most Config.maxWorlds,
// 32 by default), indexed by WorldHash, and drives each world's
// per-frame phases (spec.md §4.9).
type Server struct {
	worlds   []*World // indexed by WorldID; index 0 unused so WorldID 0 means "none"
	byHash   map[WorldHash]WorldID
	nextID   WorldID
	active   map[WorldID]bool
	log      *zap.Logger
}

// NewServer returns an empty Server.
func NewServer() *Server {
	return &Server{
		worlds: make([]*World, 1),
		byHash: make(map[WorldHash]WorldID),
		nextID: 1,
		active: make(map[WorldID]bool),
		log:    Config.logger,
	}
}

// CreateWorld allocates a new World under hash, marking it active. Fails
// once Config.maxWorlds worlds have been created on this Server; a
// destroyed world still counts, since its WorldID is not reused.
func (s *Server) CreateWorld(hash WorldHash) (*World, error) {
	if int(s.nextID)-1 >= Config.maxWorlds {
		return nil, WorldCapacityError{Max: Config.maxWorlds}
	}
	id := s.nextID
	w := newWorld(id, hash)
	s.worlds = append(s.worlds, w)
	s.byHash[hash] = id
	s.active[id] = true
	s.nextID++
	return w, nil
}

// GetWorld returns the world registered under hash.
func (s *Server) GetWorld(hash WorldHash) (*World, error) {
	id, ok := s.byHash[hash]
	if !ok {
		return nil, WorldNotFoundError{Hash: hash}
	}
	return s.worlds[id], nil
}

// DestroyWorld removes a world from the active set. Its WorldID is not
// reused within this Server's lifetime.
func (s *Server) DestroyWorld(hash WorldHash) error {
	id, ok := s.byHash[hash]
	if !ok {
		return WorldNotFoundError{Hash: hash}
	}
	delete(s.active, id)
	delete(s.byHash, hash)
	s.worlds[id] = nil
	return nil
}

// SetActive toggles whether a world participates in RunFrame.
func (s *Server) SetActive(hash WorldHash, active bool) error {
	id, ok := s.byHash[hash]
	if !ok {
		return WorldNotFoundError{Hash: hash}
	}
	s.active[id] = active
	return nil
}

// RunFrame drives every active world through begin_frame, sim_frame and
// end_frame, in that order, per spec.md §4.9, then clears every active
// world's decay buffers.
func (s *Server) RunFrame() error {
	for id, on := range s.active {
		if !on {
			continue
		}
		w := s.worlds[id]
		if w == nil {
			continue
		}
		if err := s.beginFrame(w); err != nil {
			return err
		}
		if err := s.simFrame(w); err != nil {
			return err
		}
		if err := s.endFrame(w); err != nil {
			return err
		}
	}
	for id, on := range s.active {
		if !on {
			continue
		}
		if w := s.worlds[id]; w != nil {
			w.decay.Clear()
		}
	}
	return nil
}

func (s *Server) beginFrame(w *World) error {
	w.prefilterProcessors()
	w.pipeline.Begin()
	if err := w.pipeline.RunThru(w, EventOnBeginFrame); err != nil {
		return err
	}
	w.dispatchAdds()
	return nil
}

func (s *Server) simFrame(w *World) error {
	if err := w.pipeline.RunThru(w, EventOnFrame); err != nil {
		return err
	}
	w.dispatchAdds()
	return nil
}

func (s *Server) endFrame(w *World) error {
	if err := w.pipeline.RunThru(w, EventOnEndFrame); err != nil {
		return err
	}
	w.dispatchRemoves()
	w.dispatchAdds()
	if err := w.pipeline.RunRemaining(w); err != nil {
		return err
	}
	w.dispatchDeletes()
	w.dispatchAllocates()
	w.DefragmentAll()
	w.arena.Reset()
	w.pipeline.End()
	w.pipeline.Reset()
	return nil
}

// OverrideWorld copies src's entity map, id pool and database into dst
// (an existing, already-created world). If dst has init hooks enabled
// and src did not, init runs for every component of every entity
// afterward — the editor's play-in-editor transition from an authoring
// world to a runtime one (spec.md §4.9).
func (s *Server) OverrideWorld(src, dst *World) {
	runInits := dst.initHooksEnabled && !src.initHooksEnabled
	src.snapshotInto(dst)
	dst.pipeline.Reset()
	if !runInits {
		return
	}
	dst.db.ForEachTable(func(t *Table) {
		for _, p := range t.Partitions() {
			for row := 0; row < p.numRows(); row++ {
				ridx := uint16(row)
				if !p.isValid(ridx) {
					continue
				}
				ptr := p.valuePointer(mustIndex(t, entityComponentID), ridx)
				if ptr == nil {
					continue
				}
				e := *(*Entity)(ptr)
				rid := RowID{Partition: uint16(p.id), Index: ridx}
				for _, col := range t.columns {
					if isReserved(col) {
						continue
					}
					dst.runInitHook(e, col, t, rid)
				}
			}
		}
	})
}
