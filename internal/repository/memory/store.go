// Package memory provides an in-process repository.Store used when no
// Postgres DSN is configured and by service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type state struct {
	principals  map[string]domain.Principal
	departments map[string]domain.Department
	tickets     map[string]domain.Ticket
	comments    map[string]domain.Comment
}

func (s state) clone() state {
	out := state{
		principals:  make(map[string]domain.Principal, len(s.principals)),
		departments: make(map[string]domain.Department, len(s.departments)),
		tickets:     make(map[string]domain.Ticket, len(s.tickets)),
		comments:    make(map[string]domain.Comment, len(s.comments)),
	}
	for k, v := range s.principals {
		out.principals[k] = v
	}
	for k, v := range s.departments {
		out.departments[k] = v
	}
	for k, v := range s.tickets {
		out.tickets[k] = v
	}
	for k, v := range s.comments {
		out.comments[k] = v
	}
	return out
}

// Store keeps every aggregate in maps guarded by one mutex.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	now  func() time.Time
	// inTx marks the Store handed to a WithTx callback.
	inTx bool
	root *Store
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{
		data: state{
			principals:  map[string]domain.Principal{},
			departments: map[string]domain.Department{},
			tickets:     map[string]domain.Ticket{},
			comments:    map[string]domain.Comment{},
		},
		now: time.Now,
	}
	s.root = s
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Principals() repository.PrincipalRepository   { return principalRepo{s.root, s.inTx} }
func (s *Store) Departments() repository.DepartmentRepository { return departmentRepo{s.root, s.inTx} }
func (s *Store) Tickets() repository.TicketRepository         { return ticketRepo{s.root, s.inTx} }
func (s *Store) Comments() repository.CommentRepository       { return commentRepo{s.root, s.inTx} }

// lock takes the write lock. A write outside a transaction also waits for the
// running transaction, so a rollback never discards it.
func (s *Store) lock(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

// WithTx serialises transactions and restores the previous state when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	root := s.root
	root.txMu.Lock()
	defer root.txMu.Unlock()

	root.mu.RLock()
	snapshot := root.data.clone()
	root.mu.RUnlock()

	if err := fn(&Store{root: root, inTx: true}); err != nil {
		root.mu.Lock()
		root.data = snapshot
		root.mu.Unlock()
		return err
	}
	return nil
}

type principalRepo struct {
	s  *Store
	tx bool
}

// Create rejects a username or email already in use, like the unique
// constraints on the principals table.
func (r principalRepo) Create(_ context.Context, principal *domain.Principal) error {
	defer r.s.lock(r.tx)()
	for _, existing := range r.s.data.principals {
		if existing.Username == principal.Username || existing.Email == principal.Email {
			return repository.ErrDuplicate
		}
	}
	principal.CreatedAt = r.s.now().UTC()
	stored := *principal
	stored.DepartmentName = nil
	r.s.data.principals[principal.ID] = stored
	r.s.fillPrincipal(principal)
	return nil
}

func (r principalRepo) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.principals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.fillPrincipal(&p)
	return &p, nil
}

func (r principalRepo) GetByUsername(_ context.Context, username string) (*domain.Principal, error) {
	return r.find(func(p domain.Principal) bool { return p.Username == username })
}

func (r principalRepo) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	return r.find(func(p domain.Principal) bool { return p.Email == email })
}

func (r principalRepo) find(match func(domain.Principal) bool) (*domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.principals {
		if match(p) {
			r.s.fillPrincipal(&p)
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r principalRepo) List(_ context.Context, filter repository.PrincipalFilter) ([]domain.Principal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Principal
	for _, p := range r.s.data.principals {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		if filter.UsernameContains != "" && !strings.Contains(p.Username, filter.UsernameContains) {
			continue
		}
		r.s.fillPrincipal(&p)
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (r principalRepo) ExistsWithRole(_ context.Context, role domain.Role) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.data.principals {
		if p.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func (r principalRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.principals[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.principals, id)
	return nil
}

type departmentRepo struct {
	s  *Store
	tx bool
}

func (r departmentRepo) Create(_ context.Context, dept *domain.Department) error {
	defer r.s.lock(r.tx)()
	r.s.data.departments[dept.ID] = *dept
	return nil
}

func (r departmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.data.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (r departmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.data.departments {
		if d.Name == name {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r departmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Department, 0, len(r.s.data.departments))
	for _, d := range r.s.data.departments {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r departmentRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.data.departments), nil
}

type ticketRepo struct {
	s  *Store
	tx bool
}

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock(r.tx)()
	r.s.data.tickets[ticket.ID] = stripTicket(*ticket)
	r.s.fillTicket(ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	defer r.s.lock(r.tx)()
	current, ok := r.s.data.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Title = ticket.Title
	current.Description = ticket.Description
	current.Priority = ticket.Priority
	current.Status = ticket.Status
	current.AgentID = copyString(ticket.AgentID)
	r.s.data.tickets[ticket.ID] = current
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.data.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.s.fillTicket(&t)
	return &t, nil
}

func (r ticketRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.data.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.tickets, id)
	return nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	department := strings.TrimSpace(filter.DepartmentName)
	title := strings.ToLower(strings.TrimSpace(filter.TitleContains))

	var result []domain.Ticket
	for _, t := range r.s.data.tickets {
		r.s.fillTicket(&t)
		switch {
		case filter.CustomerID != nil && t.CustomerID != *filter.CustomerID:
			continue
		case filter.AgentID != nil && !t.IsAssignedTo(*filter.AgentID):
			continue
		case department != "" && t.DepartmentName != department:
			continue
		case filter.Status != nil && t.Status != *filter.Status:
			continue
		case filter.Priority != nil && t.Priority != *filter.Priority:
			continue
		case title != "" && !strings.Contains(strings.ToLower(t.Title), title):
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedDate.Equal(result[j].CreatedDate) {
			return result[i].CreatedDate.After(result[j].CreatedDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r ticketRepo) UnassignAgent(_ context.Context, agentID string) (int64, error) {
	defer r.s.lock(r.tx)()
	var affected int64
	for id, t := range r.s.data.tickets {
		if !t.IsAssignedTo(agentID) {
			continue
		}
		t.AgentID = nil
		if t.Status == domain.TicketStatusInProgress {
			t.Status = domain.TicketStatusPending
		}
		r.s.data.tickets[id] = t
		affected++
	}
	return affected, nil
}

type commentRepo struct {
	s  *Store
	tx bool
}

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	defer r.s.lock(r.tx)()
	comment.CreatedAt = r.s.now().UTC()
	stored := *comment
	stored.AuthorName = ""
	r.s.data.comments[comment.ID] = stored
	if author, ok := r.s.data.principals[comment.AuthorID]; ok {
		comment.AuthorName = author.Username
	}
	return nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Comment
	for _, c := range r.s.data.comments {
		if c.TicketID != ticketID {
			continue
		}
		if author, ok := r.s.data.principals[c.AuthorID]; ok {
			c.AuthorName = author.Username
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r commentRepo) DeleteByTicket(_ context.Context, ticketID string) (int64, error) {
	return r.deleteWhere(func(c domain.Comment) bool { return c.TicketID == ticketID })
}

func (r commentRepo) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	return r.deleteWhere(func(c domain.Comment) bool { return c.AuthorID == authorID })
}

func (r commentRepo) deleteWhere(match func(domain.Comment) bool) (int64, error) {
	defer r.s.lock(r.tx)()
	var affected int64
	for id, c := range r.s.data.comments {
		if match(c) {
			delete(r.s.data.comments, id)
			affected++
		}
	}
	return affected, nil
}

// fillPrincipal and fillTicket resolve the joined name columns. Callers hold mu.
func (s *Store) fillPrincipal(p *domain.Principal) {
	p.DepartmentName = nil
	if p.DepartmentID == nil {
		return
	}
	if d, ok := s.data.departments[*p.DepartmentID]; ok {
		name := d.Name
		p.DepartmentName = &name
	}
}

func (s *Store) fillTicket(t *domain.Ticket) {
	t.AgentID = copyString(t.AgentID)
	t.CustomerName, t.AgentName, t.DepartmentName = "", nil, ""
	if c, ok := s.data.principals[t.CustomerID]; ok {
		t.CustomerName = c.Username
	}
	if t.AgentID != nil {
		if a, ok := s.data.principals[*t.AgentID]; ok {
			name := a.Username
			t.AgentName = &name
		}
	}
	if d, ok := s.data.departments[t.DepartmentID]; ok {
		t.DepartmentName = d.Name
	}
}

func stripTicket(t domain.Ticket) domain.Ticket {
	t.AgentID = copyString(t.AgentID)
	t.CustomerName, t.AgentName, t.DepartmentName = "", nil, ""
	return t
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
