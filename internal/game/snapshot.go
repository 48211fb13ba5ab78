package game

// UnitSnapshot is a read-only copy of one unit's state for renderers,
// reports and the wire.
type UnitSnapshot struct {
	ID           int     `json:"id"`
	Label        string  `json:"label"`
	Team         string  `json:"team"`
	Role         string  `json:"role"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Health       float64 `json:"health"`
	Armor        float64 `json:"armor"`
	Speed        float64 `json:"speed"`
	Alive        bool    `json:"alive"`
	Weapon       string  `json:"weapon,omitempty"`
	Ammo         int     `json:"ammo"`
	MaxAmmo      int     `json:"max_ammo"`
	Busy         string  `json:"busy"`
	BusyProgress int     `json:"busy_progress,omitempty"`
	BusyTarget   string  `json:"busy_target,omitempty"`
	Tile         Tile    `json:"tile"`
}

// BattleSnapshot is the whole field at the end of a turn.
type BattleSnapshot struct {
	Turn     int            `json:"turn"`
	Seed     int64          `json:"seed"`
	Attacker string         `json:"attacker"`
	Units    []UnitSnapshot `json:"units"`
}

// SnapshotUnit copies u and looks up the tile under it.
func SnapshotUnit(u *Unit, t Terrain) UnitSnapshot {
	s := UnitSnapshot{
		ID:           u.id,
		Label:        u.label,
		Team:         u.team.String(),
		Role:         u.role.String(),
		X:            u.x,
		Y:            u.y,
		Health:       u.health,
		Armor:        u.armor,
		Speed:        u.speed,
		Alive:        u.IsAlive(),
		Busy:         u.busy.Kind.String(),
		BusyProgress: u.busy.Progress,
	}
	if u.busy.Target != nil {
		s.BusyTarget = u.busy.Target.label
	}
	if u.weapon != nil {
		s.Weapon = u.weapon.Name
		s.Ammo = u.weapon.CurrentAmmo
		s.MaxAmmo = u.weapon.MaxAmmo
	}
	if t != nil {
		s.Tile = t.TerrainAt(u.x, u.y)
	}
	return s
}

// Snapshot copies every unit in creation order.
func (b *Battle) Snapshot() BattleSnapshot {
	s := BattleSnapshot{
		Turn:     b.turn,
		Seed:     b.seed,
		Attacker: b.attacker.String(),
		Units:    make([]UnitSnapshot, 0, len(b.all)),
	}
	for _, u := range b.all {
		s.Units = append(s.Units, SnapshotUnit(u, b.terrain))
	}
	return s
}
