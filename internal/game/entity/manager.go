package entity

// Manager holds the objects of a level in insertion order.
type Manager struct {
	objects map[uint16]*ModelObject
	order   []uint16
	player  *Player
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		objects: make(map[uint16]*ModelObject),
	}
}

// Add adds an object, replacing any object with the same id.
func (m *Manager) Add(o *ModelObject) {
	if _, ok := m.objects[o.ID]; !ok {
		m.order = append(m.order, o.ID)
	}
	m.objects[o.ID] = o
}

// Get returns an object by id.
func (m *Manager) Get(id uint16) *ModelObject {
	return m.objects[id]
}

// SetPlayer sets the player and registers its object.
func (m *Manager) SetPlayer(p *Player) {
	m.player = p
	m.Add(p.ModelObject)
}

// Player returns the player, or nil.
func (m *Manager) Player() *Player {
	return m.player
}

// All returns all objects in insertion order.
func (m *Manager) All() []*ModelObject {
	result := make([]*ModelObject, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.objects[id])
	}
	return result
}

// Others returns all objects except the player, in insertion order.
func (m *Manager) Others() []*ModelObject {
	result := make([]*ModelObject, 0, len(m.order))
	for _, id := range m.order {
		if m.player != nil && id == m.player.ID {
			continue
		}
		result = append(result, m.objects[id])
	}
	return result
}

// Count returns the number of objects.
func (m *Manager) Count() int {
	return len(m.objects)
}
