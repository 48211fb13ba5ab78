package store

import (
	"time"

	"gorm.io/datatypes"
)

// Battle is one finished (or abandoned) battle.
type Battle struct {
	ID            uint      `json:"-" gorm:"primarykey"`
	CreatedAt     time.Time `json:"createdAt"`
	UUID          string    `json:"id" gorm:"size:36;uniqueIndex"`
	Scenario      string    `json:"scenario" gorm:"size:64"`
	Seed          int64     `json:"seed"`
	Attacker      string    `json:"attacker" gorm:"size:8"`
	Turns         int       `json:"turns"`
	Outcome       string    `json:"outcome" gorm:"size:32;index:idx_battles_outcome"`
	Description   string    `json:"description" gorm:"size:64"`
	RedSurvivors  int       `json:"redSurvivors"`
	RedTotal      int       `json:"redTotal"`
	BlueSurvivors int       `json:"blueSurvivors"`
	BlueTotal     int       `json:"blueTotal"`
	// final game.BattleSnapshot
	Snapshot datatypes.JSON `json:"snapshot"`
	Events   []TurnEvent    `json:"-" gorm:"foreignKey:BattleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TurnEvent is one event-log line of a stored battle.
type TurnEvent struct {
	ID       uint    `json:"-" gorm:"primarykey"`
	BattleID uint    `json:"-" gorm:"index:idx_turn_events_battle_seq,priority:1"`
	Seq      int     `json:"seq" gorm:"index:idx_turn_events_battle_seq,priority:2"`
	Turn     int     `json:"turn"`
	Unit     string  `json:"unit" gorm:"size:8"`
	Team     string  `json:"team" gorm:"size:8"`
	Role     string  `json:"role" gorm:"size:16"`
	Kind     string  `json:"kind" gorm:"size:16"`
	Target   string  `json:"target" gorm:"size:8"`
	Detail   string  `json:"detail" gorm:"size:255"`
	Amount   float64 `json:"amount"`
}
