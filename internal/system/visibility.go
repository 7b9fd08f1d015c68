package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// Collate rebuilds Resources.Broadcast from scratch every broadcast tick —
// the "other entities" stream (22) — with every online player, every
// monster, and every not-yet-picked-up item, unconditionally. Ported from
// original_source's collate_all_player_positions/
// collate_all_monster_positions/collate_all_item_positions: none of the
// three gate on Position.UpdateAvailable, so neither does this. A
// stationary entity still needs to appear in every broadcast, or it
// vanishes from other clients' view the moment its dirty flag is cleared.
// UpdateAvailable gating is a separate mechanism (see PlayerUpdates) for
// streams 20/21/24, which push one player's own component deltas to that
// player alone.
//
// A picked-up item is routed onto its map's <map>Dead sentinel once, then
// removed from the store — the item-entity analogue of MonsterDeath's
// despawn broadcast, ported from collate_all_item_positions.
type Collate struct {
	res *game.Resources
}

func NewCollate(res *game.Resources) *Collate {
	return &Collate{res: res}
}

func (s *Collate) Phase() tick.Phase { return tick.PhasePreUpdate }

func (s *Collate) Update(time.Duration) {
	s.collatePlayers()
	s.collateMonsters()
	s.collateItems()
}

func (s *Collate) collatePlayers() {
	w := s.res.World
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if !pi.Online {
			return
		}
		pos, ok := w.Position.Get(id)
		if !ok {
			return
		}
		disp, ok := w.Display.Get(id)
		if !ok {
			return
		}
		s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{
			ID: id, Map: pos.Map, X: pos.X, Y: pos.Y,
			Glyph: disp.Glyph, Colour: disp.Colour, Name: pi.Name,
		})
	})
}

func (s *Collate) collateMonsters() {
	w := s.res.World
	w.MonsterIdentity.Each(func(id ecs.EntityID, mi *world.MonsterIdentity) {
		pos, ok := w.Position.Get(id)
		if !ok {
			return
		}
		disp, ok := w.Display.Get(id)
		if !ok {
			return
		}
		s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{
			ID: id, Map: pos.Map, X: pos.X, Y: pos.Y,
			Glyph: disp.Glyph, Colour: disp.Colour, Name: mi.Archetype,
		})
	})
}

func (s *Collate) collateItems() {
	w := s.res.World
	w.ItemIdentity.Each(func(id ecs.EntityID, ii *world.ItemIdentity) {
		pos, ok := w.Position.Get(id)
		if !ok {
			return
		}
		disp, ok := w.Display.Get(id)
		if !ok {
			return
		}
		if ii.PickedUp {
			s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{
				ID: id, Map: world.DeadMapFor(pos.Map), IsDead: true,
			})
			w.ECS.MarkForDestruction(id)
			return
		}
		name := ii.ID
		if inv, ok := w.Inventory.Get(id); ok && len(inv.Items) > 0 {
			name = inv.Items[0].Name
		}
		s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{
			ID: id, Map: pos.Map, X: pos.X, Y: pos.Y,
			Glyph: disp.Glyph, Colour: disp.Colour, Name: name,
		})
	})
}

// PlayerUpdates pushes each online player their own position/stats/
// inventory deltas — streams 20/21/24 — gated on that component's
// UpdateAvailable flag, clearing it once sent. Ported from
// original_source's send_player_position_updates/send_player_stats_updates/
// send_player_inventory_updates, which (unlike Collate) do filter on the
// flag since they report one player's state to that player only.
type PlayerUpdates struct {
	res *game.Resources
}

func NewPlayerUpdates(res *game.Resources) *PlayerUpdates {
	return &PlayerUpdates{res: res}
}

func (s *PlayerUpdates) Phase() tick.Phase { return tick.PhasePreUpdate }

func (s *PlayerUpdates) Update(time.Duration) {
	w := s.res.World
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if !pi.Online {
			return
		}
		if pos, ok := w.Position.Get(id); ok && pos.UpdateAvailable {
			s.res.PersonalUpdates = append(s.res.PersonalUpdates, game.PersonalUpdate{PlayerID: id, Stream: game.StreamPosition})
			pos.UpdateAvailable = false
		}
		if st, ok := w.Stats.Get(id); ok && st.UpdateAvailable {
			s.res.PersonalUpdates = append(s.res.PersonalUpdates, game.PersonalUpdate{PlayerID: id, Stream: game.StreamStats})
			st.UpdateAvailable = false
		}
		if inv, ok := w.Inventory.Get(id); ok && inv.UpdateAvailable {
			s.res.PersonalUpdates = append(s.res.PersonalUpdates, game.PersonalUpdate{PlayerID: id, Stream: game.StreamInventory})
			inv.UpdateAvailable = false
		}
	})
}

// Emit hands every collated broadcast entry to Resources.Publish and every
// PersonalUpdate to Resources.PublishPersonal (cmd/rhserver wires both to
// debug log lines), then clears the batch, the personal updates and the
// system-message queue. Queued system messages are dropped here without
// being delivered to any client — step "Emit" of §4.F.
type Emit struct {
	res *game.Resources
}

func NewEmit(res *game.Resources) *Emit {
	return &Emit{res: res}
}

func (s *Emit) Phase() tick.Phase { return tick.PhaseOutput }

func (s *Emit) Update(time.Duration) {
	if s.res.Publish != nil {
		for _, entry := range s.res.Broadcast {
			s.res.Publish(entry.ID)
		}
	}
	if s.res.PublishPersonal != nil {
		for _, upd := range s.res.PersonalUpdates {
			s.res.PublishPersonal(upd.PlayerID, upd.Stream)
		}
	}
	s.res.Broadcast = s.res.Broadcast[:0]
	s.res.PersonalUpdates = s.res.PersonalUpdates[:0]
	s.res.Messages = s.res.Messages[:0]
}
