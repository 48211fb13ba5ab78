package game

// InfiniteAmmo marks a weapon whose magazine never runs dry.
const InfiniteAmmo = -1

// Weapon is a unit's firearm: an ammo counter gated by a per-attack fire rate.
type Weapon struct {
	Name        string
	Range       float64 // max engagement distance
	Damage      float64 // base damage per bullet, before armor
	MaxAmmo     int     // InfiniteAmmo for unbounded weapons
	FireRate    int     // bullets per attack
	CurrentAmmo int
}

// NewWeapon returns a weapon with a full magazine.
func NewWeapon(name string, rng, damage float64, maxAmmo, fireRate int) *Weapon {
	return &Weapon{
		Name:        name,
		Range:       rng,
		Damage:      damage,
		MaxAmmo:     maxAmmo,
		FireRate:    fireRate,
		CurrentAmmo: maxAmmo,
	}
}

// Infinite reports whether the weapon has an unbounded magazine.
func (w *Weapon) Infinite() bool {
	return w.MaxAmmo == InfiniteAmmo
}

// Fire spends up to FireRate rounds and returns how many left the barrel.
// An empty weapon fires nothing.
func (w *Weapon) Fire() int {
	if w.Infinite() {
		return w.FireRate
	}
	fired := w.FireRate
	if w.CurrentAmmo < fired {
		fired = w.CurrentAmmo
	}
	if fired < 0 {
		fired = 0
	}
	w.CurrentAmmo -= fired
	return fired
}

// Reload refills the magazine.
func (w *Weapon) Reload() {
	w.CurrentAmmo = w.MaxAmmo
}

// NeedsAmmo reports whether the magazine is below capacity.
func (w *Weapon) NeedsAmmo() bool {
	return !w.Infinite() && w.CurrentAmmo < w.MaxAmmo
}

// Empty reports whether the weapon can no longer fire.
func (w *Weapon) Empty() bool {
	return !w.Infinite() && w.CurrentAmmo <= 0
}

// --- Presets ---

// Pistol is the sidearm carried by engineers and medics.
func Pistol() *Weapon { return NewWeapon("pistol", 40, 30, 7, 1) }

// SMG is the assault role's submachine gun.
func SMG() *Weapon { return NewWeapon("smg", 50, 40, 30, 3) }

// SniperRifle is the support role's long gun.
func SniperRifle() *Weapon { return NewWeapon("sniper rifle", 200, 200, InfiniteAmmo, 1) }
