package planner

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"testing"

	"github.com/nstehr/roomplan/ipc"
	"github.com/nstehr/roomplan/panel"
	"github.com/nstehr/roomplan/room"
	"github.com/nstehr/roomplan/rules"
)

// shell drives a session over an in-memory stream connection.
type shell struct {
	t    *testing.T
	conn net.Conn
	done chan struct{}
}

func newShell(t *testing.T, s *Session) *shell {
	server, client := net.Pipe()
	c := ipc.NewStreamConnection(server)
	s.Register(c)
	sh := &shell{t: t, conn: client, done: make(chan struct{})}
	go func() {
		c.ReadLoop()
		close(sh.done)
	}()
	t.Cleanup(func() {
		client.Close()
		<-sh.done
	})
	return sh
}

func (sh *shell) request(msgType string, data any) ipc.Envelope {
	sh.t.Helper()
	env, err := ipc.NewEnvelope(msgType, data)
	if err != nil {
		sh.t.Fatalf("NewEnvelope: %v", err)
	}
	if err := ipc.WriteEnvelope(sh.conn, env); err != nil {
		sh.t.Fatalf("WriteEnvelope: %v", err)
	}
	resp, err := ipc.ReadEnvelope(sh.conn)
	if err != nil {
		sh.t.Fatalf("ReadEnvelope: %v", err)
	}
	return resp
}

func (sh *shell) snapshot(resp ipc.Envelope) Snapshot {
	sh.t.Helper()
	if resp.Type != ipc.TypePanel {
		sh.t.Fatalf("reply type = %s (%s), want panel", resp.Type, resp.Data)
	}
	var snap Snapshot
	if err := resp.Decode(&snap); err != nil {
		sh.t.Fatalf("Decode: %v", err)
	}
	return snap
}

func (sh *shell) rejection(resp ipc.Envelope) ipc.ErrorMessage {
	sh.t.Helper()
	if resp.Type != ipc.TypeError {
		sh.t.Fatalf("reply type = %s, want error", resp.Type)
	}
	var msg ipc.ErrorMessage
	if err := resp.Decode(&msg); err != nil {
		sh.t.Fatalf("Decode: %v", err)
	}
	return msg
}

func TestStartPushesPanel(t *testing.T) {
	s := newSession()
	server, client := net.Pipe()
	c := ipc.NewStreamConnection(server)
	done := make(chan error, 1)
	go func() {
		err := s.Start(c)
		if err == nil {
			c.ReadLoop()
		}
		done <- err
	}()
	sh := &shell{t: t, conn: client}

	first, err := ipc.ReadEnvelope(client)
	if err != nil {
		t.Fatalf("ReadEnvelope: %v", err)
	}
	snap := sh.snapshot(first)
	if snap.Session != s.ID || len(snap.Brushes) == 0 {
		t.Errorf("initial snapshot = %+v", snap)
	}

	// Requests are served once the panel is out.
	resp := sh.request(ipc.TypeHello, ipc.HelloMessage{Client: "test"})
	if resp.Type != ipc.TypeAck {
		t.Errorf("hello reply type = %s, want ack", resp.Type)
	}

	client.Close()
	if err := <-done; err != nil {
		t.Errorf("Start: %v", err)
	}
}

func TestHandleHello(t *testing.T) {
	s := newSession()
	sh := newShell(t, s)

	resp := sh.request(ipc.TypeHello, ipc.HelloMessage{Client: "test", RCL: 4})
	var ack ipc.AckMessage
	if err := resp.Decode(&ack); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if resp.Type != ipc.TypeAck || ack.Session != s.ID {
		t.Errorf("hello reply = %s %+v", resp.Type, ack)
	}
	if s.Settings.RCL != 4 {
		t.Errorf("RCL = %d, want 4", s.Settings.RCL)
	}

	bad := sh.rejection(sh.request(ipc.TypeHello, ipc.HelloMessage{RCL: 99}))
	if bad.Request != ipc.TypeHello {
		t.Errorf("rejection = %+v", bad)
	}
}

func TestPlaceAndRemoveOverConnection(t *testing.T) {
	s := newSession()
	sh := newShell(t, s)

	sh.snapshot(sh.request(ipc.TypeSelectBrush, ipc.SelectBrushMessage{Brush: "spawn"}))
	snap := sh.snapshot(sh.request(ipc.TypePlace, ipc.TileMessage{X: 25, Y: 25}))
	if got := snap.Structures[rules.Spawn]; len(got) != 1 {
		t.Fatalf("Structures[spawn] = %v", got)
	}
	idx := slices.IndexFunc(snap.Brushes, func(b panel.Brush) bool { return b.Kind == rules.Spawn })
	if idx < 0 || snap.Brushes[idx].Label != "1 / 3" {
		t.Errorf("spawn brush = %+v", snap.Brushes)
	}

	occupied := sh.rejection(sh.request(ipc.TypePlace, ipc.TileMessage{X: 25, Y: 25, Kind: rules.Road}))
	if occupied.Code != "tile_occupied" {
		t.Errorf("Code = %q, want tile_occupied", occupied.Code)
	}

	snap = sh.snapshot(sh.request(ipc.TypeRemove, ipc.TileMessage{X: 25, Y: 25}))
	if len(snap.Structures) != 0 {
		t.Errorf("Structures after remove = %v", snap.Structures)
	}
	empty := sh.rejection(sh.request(ipc.TypeRemove, ipc.TileMessage{X: 25, Y: 25}))
	if empty.Code != "tile_empty" {
		t.Errorf("Code = %q, want tile_empty", empty.Code)
	}
}

func TestPlacementRejectionReasons(t *testing.T) {
	s := newSession()
	sh := newShell(t, s)
	sh.snapshot(sh.request(ipc.TypeSetRCL, ipc.SetRCLMessage{RCL: 1}))
	sh.snapshot(sh.request(ipc.TypeLoadTerrain, ipc.LoadTerrainMessage{
		Terrain: terrainString(nil, nil),
	}))

	msg := sh.rejection(sh.request(ipc.TypePlace, ipc.TileMessage{X: 3, Y: 3, Kind: rules.Tower}))
	if msg.Code != "level_locked" || !slices.Equal(msg.Reasons, []string{"level_locked"}) {
		t.Errorf("rejection = %+v", msg)
	}

	msg = sh.rejection(sh.request(ipc.TypePlace, ipc.TileMessage{X: 3, Y: 3}))
	if msg.Code != "no_brush" {
		t.Errorf("Code = %q, want no_brush", msg.Code)
	}

	msg = sh.rejection(sh.request(ipc.TypeSetRCL, ipc.SetRCLMessage{RCL: 0}))
	if msg.Code != "invalid_request" {
		t.Errorf("Code = %q, want invalid_request", msg.Code)
	}
}

func TestWipeAndLayoutOverConnection(t *testing.T) {
	s := newSession()
	sh := newShell(t, s)

	snap := sh.snapshot(sh.request(ipc.TypeLoadLayout, ipc.LoadLayoutMessage{
		RCL:     6,
		Terrain: terrainString(nil, nil),
		Structures: map[string][]ipc.Position{
			rules.Lab:  {{X: 10, Y: 10}, {X: 11, Y: 10}},
			rules.Road: {{X: 10, Y: 11}},
		},
	}))
	if snap.Settings.RCL != 6 || len(snap.Structures[rules.Lab]) != 2 {
		t.Fatalf("snapshot = %+v", snap)
	}

	dup := sh.rejection(sh.request(ipc.TypeLoadLayout, ipc.LoadLayoutMessage{
		Structures: map[string][]ipc.Position{rules.Lab: {{X: 1, Y: 1}, {X: 1, Y: 1}}},
	}))
	if dup.Code != "duplicate_tile" {
		t.Errorf("Code = %q, want duplicate_tile", dup.Code)
	}

	snap = sh.snapshot(sh.request(ipc.TypeWipeStructures, nil))
	if len(snap.Structures) != 0 {
		t.Errorf("Structures after wipe = %v", snap.Structures)
	}
	snap = sh.snapshot(sh.request(ipc.TypeWipeTerrain, nil))
	if snap.Terrain["wall"] != 0 || snap.Terrain["swamp"] != 0 {
		t.Errorf("Terrain after wipe = %v", snap.Terrain)
	}
	sh.snapshot(sh.request(ipc.TypeGetPanel, nil))
}

func TestSetTerrainOverConnection(t *testing.T) {
	s := newSession()
	sh := newShell(t, s)

	snap := sh.snapshot(sh.request(ipc.TypeSetTerrain, ipc.SetTerrainMessage{X: 4, Y: 4, Terrain: "wall"}))
	if snap.Terrain["wall"] != 1 {
		t.Errorf("Terrain = %v, want one wall", snap.Terrain)
	}
	msg := sh.rejection(sh.request(ipc.TypePlace, ipc.TileMessage{X: 4, Y: 4, Kind: rules.Spawn}))
	if msg.Code != "terrain_unbuildable" {
		t.Errorf("Code = %q, want terrain_unbuildable", msg.Code)
	}

	bad := sh.rejection(sh.request(ipc.TypeSetTerrain, ipc.SetTerrainMessage{X: 4, Y: 4, Terrain: "lava"}))
	if bad.Code != "invalid_request" {
		t.Errorf("Code = %q, want invalid_request", bad.Code)
	}
	off := sh.rejection(sh.request(ipc.TypeSetTerrain, ipc.SetTerrainMessage{X: 50, Y: 0, Terrain: "swamp"}))
	if off.Code != "invalid_tile" {
		t.Errorf("Code = %q, want invalid_tile", off.Code)
	}

	snap = sh.snapshot(sh.request(ipc.TypeToggleDrawer, nil))
	if !snap.Settings.BottomDrawerOpen {
		t.Error("drawer should be open after toggle")
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("x: %w", room.ErrTileOccupied), "tile_occupied"},
		{room.ErrTileEmpty, "tile_empty"},
		{room.ErrInvalidTile, "invalid_tile"},
		{room.ErrDuplicateTile, "duplicate_tile"},
		{ErrNoBrush, "no_brush"},
		{rules.ErrCapacityExceeded, "capacity_exceeded"},
		{errors.Join(rules.ErrLevelLocked, rules.ErrTerrainUnbuildable), "level_locked"},
		{rules.ErrTerrainUnbuildable, "terrain_unbuildable"},
		{rules.ErrUnknownKind, "unknown_kind"},
		{errors.New("boom"), "invalid_request"},
	}
	for _, tc := range tests {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestLayoutFromPositions(t *testing.T) {
	got := LayoutFromPositions(map[string][]ipc.Position{
		rules.Road: {{X: 1, Y: 2}, {X: 60, Y: 0}},
	})
	tiles := got[rules.Road]
	if len(tiles) != 2 || tiles[0] != 101 || tiles[1].Valid() {
		t.Errorf("tiles = %v", tiles)
	}
}
