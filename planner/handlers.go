package planner

import (
	"errors"
	"log/slog"

	"github.com/nstehr/roomplan/ipc"
	"github.com/nstehr/roomplan/model"
	"github.com/nstehr/roomplan/room"
	"github.com/nstehr/roomplan/rules"
)

// Register wires every request type to the session. Mutating requests reply
// with a fresh panel snapshot or an error envelope; hover replies with the
// snapshot so badges follow the cursor.
func (s *Session) Register(c *ipc.Connection) {
	c.Session = s.ID
	c.RegisterHandler(ipc.TypeHello, s.HandleHello)
	c.RegisterHandler(ipc.TypeSetRCL, s.handle(ipc.TypeSetRCL, func(env ipc.Envelope) error {
		var msg ipc.SetRCLMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return s.SetRCL(msg.RCL)
	}))
	c.RegisterHandler(ipc.TypeSelectBrush, s.handle(ipc.TypeSelectBrush, func(env ipc.Envelope) error {
		var msg ipc.SelectBrushMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		_, err := s.SelectBrush(msg.Brush)
		return err
	}))
	c.RegisterHandler(ipc.TypeHover, s.handle(ipc.TypeHover, func(env ipc.Envelope) error {
		var msg ipc.TileMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		s.Hover(model.TileAt(msg.X, msg.Y))
		return nil
	}))
	c.RegisterHandler(ipc.TypePlace, s.handle(ipc.TypePlace, func(env ipc.Envelope) error {
		var msg ipc.TileMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		tile := model.TileAt(msg.X, msg.Y)
		if msg.Kind != "" {
			_, err := s.PlaceKind(tile, msg.Kind)
			return err
		}
		_, err := s.Place(tile)
		return err
	}))
	c.RegisterHandler(ipc.TypeRemove, s.handle(ipc.TypeRemove, func(env ipc.Envelope) error {
		var msg ipc.TileMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		_, err := s.Remove(model.TileAt(msg.X, msg.Y))
		return err
	}))
	c.RegisterHandler(ipc.TypeWipeStructures, s.handle(ipc.TypeWipeStructures, func(ipc.Envelope) error {
		s.WipeStructures()
		return nil
	}))
	c.RegisterHandler(ipc.TypeWipeTerrain, s.handle(ipc.TypeWipeTerrain, func(ipc.Envelope) error {
		s.WipeTerrain()
		return nil
	}))
	c.RegisterHandler(ipc.TypeSetTerrain, s.handle(ipc.TypeSetTerrain, func(env ipc.Envelope) error {
		var msg ipc.SetTerrainMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		kind, err := model.ParseTerrainKind(msg.Terrain)
		if err != nil {
			return err
		}
		return s.SetTerrain(model.TileAt(msg.X, msg.Y), kind)
	}))
	c.RegisterHandler(ipc.TypeToggleDrawer, s.handle(ipc.TypeToggleDrawer, func(ipc.Envelope) error {
		s.ToggleDrawer()
		return nil
	}))
	c.RegisterHandler(ipc.TypeLoadTerrain, s.handle(ipc.TypeLoadTerrain, func(env ipc.Envelope) error {
		var msg ipc.LoadTerrainMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return s.LoadTerrain(msg.Terrain, msg.KeepStructures)
	}))
	c.RegisterHandler(ipc.TypeLoadLayout, s.handle(ipc.TypeLoadLayout, func(env ipc.Envelope) error {
		var msg ipc.LoadLayoutMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return s.LoadLayout(LayoutFromPositions(msg.Structures), msg.Terrain, msg.RCL)
	}))
	c.RegisterHandler(ipc.TypeGetPanel, s.handle(ipc.TypeGetPanel, func(ipc.Envelope) error { return nil }))
}

// Start registers the session on c and pushes the initial panel so the shell
// can draw before sending its first request.
func (s *Session) Start(c *ipc.Connection) error {
	s.Register(c)
	return c.Send(ipc.TypePanel, s.Snapshot())
}

// HandleHello completes the handshake so the shell knows its session id.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if hello.RCL != 0 {
		if err := s.Settings.SetRCL(hello.RCL); err != nil {
			return errorEnvelope(ipc.TypeHello, err)
		}
	}
	slog.Info("shell identified", "session", s.ID, "client", hello.Client, "rcl", s.Settings.RCL)

	ack, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Session: s.ID})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// handle turns a session operation into a handler replying with a snapshot
// on success and an error envelope on rejection.
func (s *Session) handle(request string, op func(ipc.Envelope) error) ipc.Handler {
	return func(env ipc.Envelope) (*ipc.Envelope, error) {
		if err := op(env); err != nil {
			return errorEnvelope(request, err)
		}
		resp, err := ipc.NewEnvelope(ipc.TypePanel, s.Snapshot())
		if err != nil {
			return nil, err
		}
		return &resp, nil
	}
}

func errorEnvelope(request string, err error) (*ipc.Envelope, error) {
	msg := ipc.ErrorMessage{
		Request: request,
		Code:    ErrorCode(err),
		Message: err.Error(),
	}
	for _, reason := range placementReasons {
		if errors.Is(err, reason.err) {
			msg.Reasons = append(msg.Reasons, reason.code)
		}
	}
	resp, encErr := ipc.NewEnvelope(ipc.TypeError, msg)
	if encErr != nil {
		return nil, encErr
	}
	return &resp, nil
}

var placementReasons = []struct {
	err  error
	code string
}{
	{rules.ErrUnknownKind, "unknown_kind"},
	{rules.ErrCapacityExceeded, "capacity_exceeded"},
	{rules.ErrLevelLocked, "level_locked"},
	{rules.ErrTerrainUnbuildable, "terrain_unbuildable"},
}

// ErrorCode maps an operation error to the stable code sent to shells.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrTileOccupied):
		return "tile_occupied"
	case errors.Is(err, room.ErrTileEmpty):
		return "tile_empty"
	case errors.Is(err, room.ErrInvalidTile):
		return "invalid_tile"
	case errors.Is(err, room.ErrDuplicateTile):
		return "duplicate_tile"
	case errors.Is(err, ErrNoBrush):
		return "no_brush"
	}
	for _, reason := range placementReasons {
		if errors.Is(err, reason.err) {
			return reason.code
		}
	}
	return "invalid_request"
}

// LayoutFromPositions converts wire positions to tiles. Off-grid positions
// become invalid tiles so the import rejects them.
func LayoutFromPositions(in map[string][]ipc.Position) map[string][]model.Tile {
	out := make(map[string][]model.Tile, len(in))
	for kind, positions := range in {
		tiles := make([]model.Tile, 0, len(positions))
		for _, p := range positions {
			tiles = append(tiles, model.TileAt(p.X, p.Y))
		}
		out[kind] = tiles
	}
	return out
}
