package queue

import (
	"sync"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/mohae/deepcopy"
)

// StateLookup returns the currently known state of a component.
type StateLookup func(execName string) (state map[string]any, known bool)

// Queue is the ordered, partially deduplicated command buffer.
// Safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	commands []domain.Command
	inits    map[string]int
	lookup   StateLookup
}

// New creates a queue seeding Init commands through lookup.
func New(lookup StateLookup) *Queue {
	if lookup == nil {
		lookup = func(string) (map[string]any, bool) { return nil, false }
	}
	return &Queue{
		inits:  make(map[string]int),
		lookup: lookup,
	}
}

// AddInit queues (or merges into an already queued) Init command for execName.
//
// A new command starts from a deep copy of the component's known state when
// mergeWithExisting is set, from an empty object otherwise. Merging an empty
// delta into a known component queues nothing.
func (q *Queue) AddInit(execName string, params map[string]any, mergeWithExisting bool) error {
	if err := ValidateParams(params); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if idx, ok := q.inits[execName]; ok {
		return MergeParams(q.commands[idx].Params, params)
	}

	state, known := q.lookup(execName)
	if mergeWithExisting && len(params) == 0 && known {
		return nil
	}

	seed := make(map[string]any)
	if mergeWithExisting && known && state != nil {
		seed = deepcopy.Copy(state).(map[string]any)
	}
	if err := MergeParams(seed, params); err != nil {
		return err
	}
	q.inits[execName] = len(q.commands)
	q.commands = append(q.commands, domain.NewInit(execName, seed, mergeWithExisting))
	return nil
}

// AddCall appends a Call command.
func (q *Queue) AddCall(execName, action string, args []any, kwargs map[string]any) {
	q.append(domain.NewCall(execName, action, args, kwargs))
}

// AddEmit appends an Emit command.
func (q *Queue) AddEmit(execName, event string, params map[string]any, to string) {
	q.append(domain.NewEmit(execName, event, params, to))
}

func (q *Queue) append(cmd domain.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.commands = append(q.commands, cmd)
}

// Drain returns every queued command in insertion order and empties the queue.
func (q *Queue) Drain() []domain.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.commands
	q.commands = nil
	q.inits = make(map[string]int)
	return out
}

// Pending returns a copy of the queued commands.
func (q *Queue) Pending() []domain.Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.Command(nil), q.commands...)
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}
