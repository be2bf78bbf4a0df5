package directory

import (
	"context"
	"sync"
)

// MemoryDirectory backs local development and tests.
type MemoryDirectory struct {
	mu    sync.Mutex
	rooms map[string]string   // code -> host session id
	order map[string][]string // code -> session ids in join order
	byID  map[string]*Member
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		rooms: make(map[string]string),
		order: make(map[string][]string),
		byID:  make(map[string]*Member),
	}
}

func (d *MemoryDirectory) CreateRoom(_ context.Context, code string, host Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[code]; ok {
		return ErrRoomExists
	}
	d.rooms[code] = host.SessionID
	host.RoomCode = code
	host.IsHost = true
	d.order[code] = []string{host.SessionID}
	d.byID[host.SessionID] = &host
	return nil
}

func (d *MemoryDirectory) JoinRoom(_ context.Context, code string, m Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[code]; !ok {
		return ErrRoomNotFound
	}
	if existing, ok := d.byID[m.SessionID]; ok {
		existing.Name = m.Name
		return nil
	}
	m.RoomCode = code
	d.order[code] = append(d.order[code], m.SessionID)
	d.byID[m.SessionID] = &m
	return nil
}

func (d *MemoryDirectory) Leave(_ context.Context, code, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.byID[sessionID]
	if !ok || m.RoomCode != code {
		return ErrMemberNotFound
	}
	delete(d.byID, sessionID)
	ids := d.order[code]
	for i, id := range ids {
		if id == sessionID {
			d.order[code] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (d *MemoryDirectory) ToggleReady(_ context.Context, code, sessionID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.byID[sessionID]
	if !ok || m.RoomCode != code {
		return false, ErrMemberNotFound
	}
	m.IsReady = !m.IsReady
	return m.IsReady, nil
}

func (d *MemoryDirectory) RoomExists(_ context.Context, code string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.rooms[code]
	return ok, nil
}

func (d *MemoryDirectory) Members(_ context.Context, code string) ([]Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[code]; !ok {
		return nil, ErrRoomNotFound
	}
	members := make([]Member, 0, len(d.order[code]))
	for _, id := range d.order[code] {
		if m, ok := d.byID[id]; ok {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (d *MemoryDirectory) DeleteRoom(_ context.Context, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range d.order[code] {
		delete(d.byID, id)
	}
	delete(d.order, code)
	delete(d.rooms, code)
	return nil
}
