package ecs

// World is the top-level ECS container. It owns the entity pool, the
// component registry, and a CommandBuffer of deferred structural changes
// raised mid-pipeline (entity destruction, component attach/detach) that
// is drained atomically at phase boundaries rather than applied in place,
// so a system iterating a store never observes a mutation another system
// queued in the same phase.
type World struct {
	pool     *EntityPool
	registry *Registry
	cmds     *CommandBuffer
}

func NewWorld() *World {
	return &World{
		pool:     NewEntityPool(),
		registry: NewRegistry(),
		cmds:     NewCommandBuffer(),
	}
}

func (w *World) Pool() *EntityPool       { return w.pool }
func (w *World) Registry() *Registry     { return w.registry }
func (w *World) Commands() *CommandBuffer { return w.cmds }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-phase cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.cmds.Destroy(id)
}

// FlushDestroyQueue drains the command buffer: runs queued attach/detach
// callbacks first, then destroys queued entities and clears their
// components from every registered store. Called at every pipeline phase
// boundary, not just end of tick.
func (w *World) FlushDestroyQueue() {
	w.cmds.flushAttach()
	for _, id := range w.cmds.drainDestroy() {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
	}
}
