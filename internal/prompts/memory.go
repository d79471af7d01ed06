package prompts

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/pagination"
)

type memory struct {
	mu         sync.RWMutex
	prompts    map[uuid.UUID]Prompt
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// NewMemory creates an in-process prompt System used when no database is
// configured. Overrides do not survive a restart.
func NewMemory(logger *slog.Logger, pagination pagination.Config, maxBody int64) System {
	return &memory{
		prompts:    make(map[uuid.UUID]Prompt),
		logger:     logger.With("system", "prompts"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

func (m *memory) Handler() *Handler {
	return NewHandler(m, m.logger, m.pagination, m.maxBody)
}

func (m *memory) List(_ context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Prompt], error) {
	page.Normalize(m.pagination)

	m.mu.RLock()
	matched := make([]Prompt, 0, len(m.prompts))
	for _, p := range m.prompts {
		if filters.match(p, page.Search) {
			matched = append(matched, p)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matched, func(a, b Prompt) int {
		return cmp.Compare(a.Name, b.Name)
	})

	result := pagination.Paginate(matched, page.Page, page.PerPage)
	return &result, nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Prompt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.prompts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *memory) Create(_ context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.named(cmd.Name, uuid.Nil) {
		return nil, ErrDuplicate
	}

	p := Prompt{
		ID:           uuid.New(),
		Name:         cmd.Name,
		Stage:        cmd.Stage,
		Instructions: cmd.Instructions,
		Description:  cmd.Description,
	}
	m.prompts[p.ID] = p

	return &p, nil
}

func (m *memory) Update(_ context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.prompts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.named(cmd.Name, id) {
		return nil, ErrDuplicate
	}
	if p.Active && cmd.Stage != p.Stage && m.activeFor(cmd.Stage) {
		return nil, ErrDuplicate
	}

	p.Name = cmd.Name
	p.Stage = cmd.Stage
	p.Instructions = cmd.Instructions
	p.Description = cmd.Description
	m.prompts[id] = p

	return &p, nil
}

func (m *memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.prompts[id]; !ok {
		return ErrNotFound
	}
	delete(m.prompts, id)

	return nil
}

func (m *memory) Activate(_ context.Context, id uuid.UUID) (*Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.prompts[id]
	if !ok {
		return nil, ErrNotFound
	}

	for pid, p := range m.prompts {
		if p.Stage == target.Stage && p.Active {
			p.Active = false
			m.prompts[pid] = p
		}
	}

	target.Active = true
	m.prompts[id] = target

	return &target, nil
}

func (m *memory) Deactivate(_ context.Context, id uuid.UUID) (*Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.prompts[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Active = false
	m.prompts[id] = p

	return &p, nil
}

func (m *memory) Instructions(_ context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.prompts {
		if p.Stage == stage && p.Active {
			return p.Instructions, nil
		}
	}
	return DefaultInstructions(stage)
}

func (m *memory) named(name string, except uuid.UUID) bool {
	for id, p := range m.prompts {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}

func (m *memory) activeFor(stage Stage) bool {
	for _, p := range m.prompts {
		if p.Stage == stage && p.Active {
			return true
		}
	}
	return false
}
