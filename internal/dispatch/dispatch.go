// Package dispatch is the Request Dispatcher (SPEC_FULL.md §4.I): it
// turns inbound netio.Envelope requests into World Store mutations.
// Generalized from the teacher's internal/net/packet.Registry —
// opcode-keyed handler map, panic-recovering dispatch — with the
// session-state allow-list dropped since this protocol has only one
// connected state after PlayerJoin (no login handshake to gate on).
package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/netio"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// Session binds one connected client to its player entity. SessionID
// matches world.SessionRef.SessionID.
type Session struct {
	ID       uint64
	PlayerID ecs.EntityID
}

type handlerFunc func(d *Dispatcher, sess *Session, env netio.Envelope) error

// Dispatcher routes decoded requests to World Store mutations and tracks
// which players mutated this tick, for the Tick Scheduler's PlayerDue gate.
type Dispatcher struct {
	world    *world.State
	res      *game.Resources
	log      *zap.Logger
	handlers map[netio.Opcode]handlerFunc

	sessions map[uint64]*Session
	mutated  map[ecs.EntityID]bool
}

func New(res *game.Resources, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		world:    res.World,
		res:      res,
		log:      log,
		sessions: make(map[uint64]*Session),
		mutated:  make(map[ecs.EntityID]bool),
	}
	d.handlers = map[netio.Opcode]handlerFunc{
		netio.OpPlayerJoin:     handlePlayerJoin,
		netio.OpPlayerLogout:   handlePlayerLogout,
		netio.OpUpdateVelocity: handleUpdateVelocity,
		netio.OpPickupItem:     handlePickupItem,
		netio.OpDropItem:       handleDropItem,
		netio.OpStatUp:         handleStatUp,
	}
	return d
}

// Dispatch routes one decoded request, recovering from a handler panic so
// one malformed request never takes down the tick loop. An ordinary
// handler error (bad item id, out-of-range stat, and so on) reflects a
// client-side mistake, not a dead connection: it's queued as a system
// message to the offending player and swallowed here, leaving only a
// recovered panic to bubble up as a real error — that's the one case
// Timeout should drop the session for.
func (d *Dispatcher) Dispatch(sess *Session, env netio.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("dispatch handler panic recovered", zap.Any("panic", r), zap.Uint8("op", uint8(env.Op)))
			err = fmt.Errorf("handler panic for opcode %d: %v", env.Op, r)
		}
	}()
	fn, ok := d.handlers[env.Op]
	if !ok {
		d.log.Debug("unknown opcode, ignored", zap.Uint8("op", uint8(env.Op)))
		return nil
	}
	if handlerErr := fn(d, sess, env); handlerErr != nil {
		d.log.Debug("dispatch handler error", zap.Uint8("op", uint8(env.Op)), zap.Error(handlerErr))
		if d.res != nil && sess.PlayerID != 0 {
			d.res.QueueMessage(sess.PlayerID, handlerErr.Error(), world.ColourRed)
		}
	}
	return nil
}

// Timeout drops a session whose connection has gone quiet, logging the
// player out — the dispatcher's own policy for §4.I's Timeout contract.
func (d *Dispatcher) Timeout(sess *Session) {
	if pi, ok := d.world.PlayerIdentity.Get(sess.PlayerID); ok {
		pi.Online = false
	}
	delete(d.sessions, sess.ID)
}

// Drain reports whether any player mutation happened since the last
// Drain call, and clears the set — this is what the Tick Scheduler's
// drainInbound callback calls every loop iteration.
func (d *Dispatcher) Drain() bool {
	if len(d.mutated) == 0 {
		return false
	}
	d.mutated = make(map[ecs.EntityID]bool)
	return true
}

func (d *Dispatcher) markMutated(id ecs.EntityID) {
	d.mutated[id] = true
}

func handlePlayerJoin(d *Dispatcher, sess *Session, env netio.Envelope) error {
	if env.PlayerJoin == nil {
		return fmt.Errorf("dispatch: PlayerJoin missing payload")
	}
	name := env.PlayerJoin.Name
	if _, online := d.world.FindOnlinePlayerByName(name); online {
		return fmt.Errorf("dispatch: player %q already online", name)
	}
	var id ecs.EntityID
	if existing, ok := d.world.FindOfflinePlayerByName(name); ok {
		id = existing
		if pi, ok := d.world.PlayerIdentity.Get(id); ok {
			pi.Online = true
		}
	} else {
		id = d.world.SpawnPlayer(name)
	}
	sess.PlayerID = id
	d.sessions[sess.ID] = sess
	if ref, ok := d.world.SessionRef.Get(id); ok {
		ref.SessionID = sess.ID
	} else {
		d.world.SessionRef.Set(id, &world.SessionRef{SessionID: sess.ID})
	}
	d.markMutated(id)
	return nil
}

func handlePlayerLogout(d *Dispatcher, sess *Session, _ netio.Envelope) error {
	if pi, ok := d.world.PlayerIdentity.Get(sess.PlayerID); ok {
		pi.Online = false
	}
	delete(d.sessions, sess.ID)
	d.markMutated(sess.PlayerID)
	return nil
}

func handleUpdateVelocity(d *Dispatcher, sess *Session, env netio.Envelope) error {
	if env.UpdateVelocity == nil {
		return fmt.Errorf("dispatch: UpdateVelocity missing payload")
	}
	pos, ok := d.world.Position.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no position", sess.PlayerID)
	}
	vx, vy := env.UpdateVelocity.VelX, env.UpdateVelocity.VelY
	if vx < -1 || vx > 1 || vy < -1 || vy > 1 {
		return fmt.Errorf("dispatch: velocity out of range (%d,%d)", vx, vy)
	}
	pos.VelX, pos.VelY = vx, vy
	d.markMutated(sess.PlayerID)
	return nil
}

func handlePickupItem(d *Dispatcher, sess *Session, env netio.Envelope) error {
	if env.PickupItem == nil {
		return fmt.Errorf("dispatch: PickupItem missing payload")
	}
	playerPos, ok := d.world.Position.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no position", sess.PlayerID)
	}
	playerInv, ok := d.world.Inventory.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no inventory", sess.PlayerID)
	}

	var found ecs.EntityID
	var foundOK bool
	d.world.ItemIdentity.Each(func(id ecs.EntityID, ii *world.ItemIdentity) {
		if foundOK || ii.PickedUp || ii.ID != env.PickupItem.ItemID {
			return
		}
		pos, ok := d.world.Position.Get(id)
		if !ok || pos.Map != playerPos.Map || pos.X != playerPos.X || pos.Y != playerPos.Y {
			return
		}
		found, foundOK = id, true
	})
	if !foundOK {
		return fmt.Errorf("dispatch: item %q not on player's tile", env.PickupItem.ItemID)
	}
	itemInv, _ := d.world.Inventory.Get(found)
	if itemInv != nil {
		playerInv.Items = append(playerInv.Items, itemInv.Items...)
	}
	if ii, ok := d.world.ItemIdentity.Get(found); ok {
		ii.PickedUp = true
	}
	// Destruction is deferred to Collate's next broadcast pass rather than
	// done here, so the picked-up item is routed onto its map's <map>Dead
	// sentinel exactly once instead of vanishing silently this tick.
	playerInv.UpdateAvailable = true
	d.markMutated(sess.PlayerID)
	return nil
}

func handleDropItem(d *Dispatcher, sess *Session, env netio.Envelope) error {
	if env.DropItem == nil {
		return fmt.Errorf("dispatch: DropItem missing payload")
	}
	pos, ok := d.world.Position.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no position", sess.PlayerID)
	}
	inv, ok := d.world.Inventory.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no inventory", sess.PlayerID)
	}
	idx := -1
	for i, it := range inv.Items {
		if it.Name == env.DropItem.ItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("dispatch: player doesn't carry item %q", env.DropItem.ItemID)
	}
	item := inv.Items[idx]
	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	inv.UpdateAvailable = true
	d.world.SpawnItem(item, pos.Map, world.Point{X: pos.X, Y: pos.Y}, env.DropItem.ItemID)
	d.markMutated(sess.PlayerID)
	return nil
}

func handleStatUp(d *Dispatcher, sess *Session, env netio.Envelope) error {
	if env.StatUp == nil {
		return fmt.Errorf("dispatch: StatUp missing payload")
	}
	st, ok := d.world.Stats.Get(sess.PlayerID)
	if !ok {
		return fmt.Errorf("dispatch: player %v has no stats", sess.PlayerID)
	}
	if st.StatPoints <= 0 {
		return fmt.Errorf("dispatch: player %v has no stat points", sess.PlayerID)
	}
	switch env.StatUp.Stat {
	case "str":
		st.Str++
	case "dex":
		st.Dex++
	case "con":
		st.Con++
	default:
		return fmt.Errorf("dispatch: unknown stat %q", env.StatUp.Stat)
	}
	st.StatPoints--
	st.UpdateAvailable = true
	d.markMutated(sess.PlayerID)
	return nil
}
