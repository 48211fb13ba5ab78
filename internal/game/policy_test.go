package game

import "testing"

func rosterView(allies, enemies []*Unit, rally Point) view {
	return view{allies: allies, enemies: enemies, rally: rally, sight: ClearSight{}}
}

func TestDecide_DeadUnitDoesNothing(t *testing.T) {
	u := NewUnit(0, RoleAssault, TeamRed, 0, 0)
	u.SetHealth(0)
	if _, ok := decide(u, rosterView(nil, nil, Point{})); ok {
		t.Fatal("dead unit should not act")
	}
}

func TestDecide_GenericAttacksFirstInRosterOrder(t *testing.T) {
	u := NewUnit(0, RoleEngineer, TeamRed, 0, 0)
	far := NewUnit(1, RoleMedic, TeamBlue, 35, 0)
	near := NewUnit(2, RoleMedic, TeamBlue, 5, 0)
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{far, near}, Point{}))
	if a.Kind != ActionAttack || a.Target != far {
		t.Fatalf("expected attack on first in-range enemy %s, got %s", far.Label(), a)
	}
}

func TestDecide_GenericSkipsDeadEnemies(t *testing.T) {
	u := NewUnit(0, RoleEngineer, TeamRed, 0, 0)
	dead := NewUnit(1, RoleMedic, TeamBlue, 5, 0)
	dead.SetHealth(0)
	live := NewUnit(2, RoleMedic, TeamBlue, 10, 0)
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{dead, live}, Point{}))
	if a.Target != live {
		t.Fatalf("expected target %s, got %s", live.Label(), a)
	}
}

func TestDecide_GenericAdvancesOnRally(t *testing.T) {
	u := NewUnit(0, RoleEngineer, TeamRed, 0, 0)
	enemy := NewUnit(1, RoleMedic, TeamBlue, 500, 0)
	rally := Point{X: 100, Y: 100}
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{enemy}, rally))
	if a.Kind != ActionMove || a.Dest != rally {
		t.Fatalf("expected move to rally, got %s", a)
	}
}

func TestDecide_MedicTreatsNearestInjured(t *testing.T) {
	m := NewUnit(0, RoleMedic, TeamRed, 0, 0)
	farHurt := NewUnit(1, RoleEngineer, TeamRed, 8, 0)
	nearHurt := NewUnit(2, RoleEngineer, TeamRed, 4, 0)
	healthy := NewUnit(3, RoleAssault, TeamRed, 1, 0)
	farHurt.SetHealth(20)
	nearHurt.SetHealth(90)

	a, _ := decide(m, rosterView([]*Unit{m, farHurt, nearHurt, healthy}, nil, Point{}))
	if a.Kind != ActionHeal || a.Target != nearHurt {
		t.Fatalf("expected heal on %s, got %s", nearHurt.Label(), a)
	}
}

func TestDecide_MedicWalksToDistantPatient(t *testing.T) {
	m := NewUnit(0, RoleMedic, TeamRed, 0, 0)
	hurt := NewUnit(1, RoleEngineer, TeamRed, 50, 0)
	hurt.SetHealth(10)
	a, _ := decide(m, rosterView([]*Unit{m, hurt}, nil, Point{}))
	if a.Kind != ActionMove || a.Dest != hurt.Position() {
		t.Fatalf("expected move toward patient, got %s", a)
	}
}

func TestDecide_MedicIgnoresOwnWounds(t *testing.T) {
	m := NewUnit(0, RoleMedic, TeamRed, 0, 0) // starts at 80 hp
	a, _ := decide(m, rosterView([]*Unit{m}, nil, Point{X: 10}))
	if a.Kind != ActionMove {
		t.Fatalf("medic with no injured allies should fall back, got %s", a)
	}
}

func TestDecide_AssaultReloadsWhenEmpty(t *testing.T) {
	u := NewUnit(0, RoleAssault, TeamRed, 0, 0)
	u.Weapon().CurrentAmmo = 0
	enemy := NewUnit(1, RoleMedic, TeamBlue, 5, 0)
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{enemy}, Point{}))
	if a.Kind != ActionReload {
		t.Fatalf("expected reload, got %s", a)
	}
}

func TestDecide_SupportAimsAtNearest(t *testing.T) {
	u := NewUnit(0, RoleSupport, TeamRed, 0, 0)
	far := NewUnit(1, RoleMedic, TeamBlue, 180, 0)
	near := NewUnit(2, RoleMedic, TeamBlue, 120, 0)
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{far, near}, Point{}))
	if a.Kind != ActionAimAndAttack || a.Target != near {
		t.Fatalf("expected aim at %s, got %s", near.Label(), a)
	}
}

func TestDecide_SupportWithoutSightFallsBack(t *testing.T) {
	u := NewUnit(0, RoleSupport, TeamRed, 0, 0)
	enemy := NewUnit(1, RoleMedic, TeamBlue, 120, 0)
	v := rosterView([]*Unit{u}, []*Unit{enemy}, Point{})
	v.sight = SightFunc(func(_, _ *Unit) bool { return false })
	a, _ := decide(u, v)
	if a.Kind != ActionAttack {
		t.Fatalf("blocked support should use the generic attack, got %s", a)
	}
}

func TestDecide_ContinuesCommitment(t *testing.T) {
	u := NewUnit(0, RoleEngineer, TeamRed, 0, 0)
	enemy := NewUnit(1, RoleMedic, TeamBlue, 5, 0)
	u.advanceBusy(BusyBuilding, nil)
	a, _ := decide(u, rosterView([]*Unit{u}, []*Unit{enemy}, Point{}))
	if a.Kind != ActionBuildObstacle {
		t.Fatalf("building engineer should keep building, got %s", a)
	}
}

func TestDecide_DropsCommitmentOnDeadTarget(t *testing.T) {
	m := NewUnit(0, RoleMedic, TeamRed, 0, 0)
	p := NewUnit(1, RoleEngineer, TeamRed, 2, 0)
	p.SetHealth(10)
	m.advanceBusy(BusyHealing, p)
	p.SetHealth(0)
	a, _ := decide(m, rosterView([]*Unit{m, p}, nil, Point{X: 50}))
	if m.IsBusy() || a.Kind != ActionMove {
		t.Fatalf("expected cancelled commitment and fallback, got %s busy=%s", a, m.Busy())
	}
}

func TestDecide_DropsCommitmentOutOfReach(t *testing.T) {
	m := NewUnit(0, RoleMedic, TeamRed, 0, 0)
	p := NewUnit(1, RoleEngineer, TeamRed, 5, 0)
	p.SetHealth(10)
	m.advanceBusy(BusyHealing, p)
	p.x = 60
	a, _ := decide(m, rosterView([]*Unit{m, p}, nil, Point{}))
	if a.Kind != ActionMove || a.Dest != p.Position() {
		t.Fatalf("medic should walk after a patient out of reach, got %s", a)
	}
	if m.IsBusy() {
		t.Fatalf("commitment should be dropped, got %s", m.Busy())
	}
}
