package ecs

// CommandBuffer batches entity destruction and component attach/detach
// requests raised while a system is iterating a store, so the mutation is
// applied only once the phase finishes iterating — generalized from the
// single destroy-queue the teacher carried on World directly.
type CommandBuffer struct {
	destroy []EntityID
	attach  []func()
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{
		destroy: make([]EntityID, 0, 64),
		attach:  make([]func(), 0, 64),
	}
}

// Destroy queues an entity for removal at the next flush.
func (b *CommandBuffer) Destroy(id EntityID) {
	b.destroy = append(b.destroy, id)
}

// Attach queues an arbitrary store mutation (component attach/detach) to run
// at the next flush, before destroys are applied.
func (b *CommandBuffer) Attach(fn func()) {
	b.attach = append(b.attach, fn)
}

func (b *CommandBuffer) flushAttach() {
	for _, fn := range b.attach {
		fn()
	}
	b.attach = b.attach[:0]
}

func (b *CommandBuffer) drainDestroy() []EntityID {
	out := b.destroy
	b.destroy = make([]EntityID, 0, 64)
	return out
}
