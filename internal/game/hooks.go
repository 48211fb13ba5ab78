package game

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -destination=./mocks/hooks_mock.go -package=mocks . LineOfSight,ObstacleBuilder

// TerrainKind identifies the surface of a terrain cell.
type TerrainKind uint8

const (
	TerrainEmpty     TerrainKind = iota // open ground
	TerrainObstacle                     // wall, rubble, built barricade
	TerrainWater                        // river, pond
	TerrainMountain                     // high ground
	terrainKindCount                    // sentinel
)

func (k TerrainKind) String() string {
	switch k {
	case TerrainEmpty:
		return "empty"
	case TerrainObstacle:
		return "obstacle"
	case TerrainWater:
		return "water"
	case TerrainMountain:
		return "mountain"
	default:
		return "unknown"
	}
}

// Valid reports whether k is a known terrain kind.
func (k TerrainKind) Valid() bool {
	return k < terrainKindCount
}

// Tile is the terrain under a point. Height is 0..100.
type Tile struct {
	Kind   TerrainKind `json:"kind"`
	Height int         `json:"height"`
}

// Terrain answers what lies under a battlefield coordinate. Combat math does
// not read it yet; snapshots report the tile under each unit.
type Terrain interface {
	TerrainAt(x, y float64) Tile
}

// LineOfSight decides whether from can see to.
type LineOfSight interface {
	HasLineOfSight(from, to *Unit) bool
}

// ObstacleBuilder is called when an engineer finishes building.
type ObstacleBuilder interface {
	BuildObstacle(engineer *Unit)
}

// FlatTerrain is open ground everywhere.
type FlatTerrain struct{}

func (FlatTerrain) TerrainAt(_, _ float64) Tile { return Tile{Kind: TerrainEmpty} }

// ClearSight always reports a clear line. Obstacle-aware sight is not modelled.
type ClearSight struct{}

func (ClearSight) HasLineOfSight(_, _ *Unit) bool { return true }

// NoopBuilder finishes a build without changing the battlefield.
type NoopBuilder struct{}

func (NoopBuilder) BuildObstacle(_ *Unit) {}

// SightFunc adapts a function to LineOfSight.
type SightFunc func(from, to *Unit) bool

func (f SightFunc) HasLineOfSight(from, to *Unit) bool { return f(from, to) }

// BuilderFunc adapts a function to ObstacleBuilder.
type BuilderFunc func(engineer *Unit)

func (f BuilderFunc) BuildObstacle(engineer *Unit) { f(engineer) }
