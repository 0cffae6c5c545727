// Package config holds the world and server tuning constants and the
// environment-driven runtime config. Most of the numbers here are
// physics constants that should never change per-deployment, so only
// the genuinely operator-facing knobs are read from the environment.
package config

import "github.com/kelseyhightower/envconfig"

// World geometry. The arena is a disk of radius GameRadius centered at
// (GameRadius, GameRadius) in a [0, 2*GameRadius) coordinate space.
const (
	GameRadius            = 21600
	SectorSize            = 480
	SectorCountAlongEdge  = GameRadius * 2 / SectorSize // 90
	DeathRadius           = GameRadius - SectorSize
	SectorDiagSize        = 680 // sqrt(480^2+480^2) ≈ 678.8, rounded up
	MoveStepDistance      = 42
	MaxSnakeParts         = 411
	ProtocolVersionServer = 31
	ModernDialectMin      = 25 // client protocol_version >= this selects modern wire dialect
)

// Snake physics.
const (
	BaseMoveSpeed       uint16  = 172
	BoostSpeed          uint16  = 448
	SpeedAcceleration   uint16  = 1000
	SnakeAngularSpeed   float64 = 4.125
	PreyAngularSpeed    float64 = 3.625
	SnakeTailK          float64 = 0.43
	PartsSkipCount              = 3
	PartsStartMoveCount         = 4
	TailStepDistance    float64 = 24.0
	AIStepIntervalMs            = 250
	Spangdv             float64 = 4.8
	Nsp1                float64 = 5.39
	Nsp2                float64 = 0.4
	Nsp3                float64 = 14.0

	// RotStepAngle/RotStepInterval are derived from MoveStepDistance,
	// BoostSpeed and SnakeAngularSpeed rather than free parameters.
	RotStepAngle = float64(MoveStepDistance) / float64(BoostSpeed) * SnakeAngularSpeed
)

// rotStepAngleVar holds RotStepAngle's value as a variable so the
// RotStepInterval conversion below is a runtime (truncating) conversion
// rather than a constant conversion, which Go rejects for non-integral
// constants.
var rotStepAngleVar float64 = RotStepAngle

// RotStepInterval is computed at init time (rather than as a constant)
// because the derived value is not exactly representable as an integral
// constant; the runtime conversion truncates as intended.
var RotStepInterval = int64(1000.0 * rotStepAngleVar / SnakeAngularSpeed)

// FrameTimeMs is the nominal frame length the collision pass uses to size
// a head's swept segment (the distance it covers in one frame).
const FrameTimeMs = 8

// TickIntervalMs is the server's wall-clock timer interval. Each timer
// tick passes the measured elapsed milliseconds to World.Tick, whose
// per-snake rotation/movement/AI accumulators consume them.
const TickIntervalMs = 10

// Broadcast cadence.
const (
	LeaderboardIntervalMs = 2000
	MinimapIntervalMs     = 1000
	DeathCleanupDelayMs   = 2000
)

// Spawn placement.
const (
	SpawnMinRadius    = 1000
	SpawnEdgeBuffer   = 1500
	SpawnSafetyBuffer = 500
	SpawnMaxAttempts  = 20
)

// Food model.
const (
	FoodMinSize           = 1
	FoodMaxSizeInitial    = 10
	FoodMaxSizeSpawn      = 5
	FoodMaxColor          = 28
	FoodPlayableMargin    = 500
	DefaultFoodSpawnRate  = 25
	DefaultSpawnProbNear  = 25
	DefaultSpawnProbOn    = 25
	DefaultSpawnProbRand  = 50
)

// Bot AI.
const (
	BotFoodSectorRadius = 2 // 5x5 neighborhood
	BotMinScore         = 0.05
	BotBoostFullness    = 30
)

// Config is the operator-facing, environment-driven surface (spec §6).
// Physics constants above are deliberately not part of it.
type Config struct {
	Port  string `envconfig:"PORT" default:":8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	Bots       int  `envconfig:"BOTS" default:"40"`
	BotRespawn bool `envconfig:"BOT_RESPAWN" default:"true"`

	HumanSnakeStartScore uint16 `envconfig:"H_SNAKE_START_SCORE" default:"2"`
	BotSnakeStartScore   uint16 `envconfig:"B_SNAKE_START_SCORE" default:"2"`
	SnakeMinLength       uint16 `envconfig:"SNAKE_MIN_LENGTH" default:"2"`

	FoodSpawnRate   int `envconfig:"FOOD_SPAWN_RATE" default:"25"`
	SpawnProbNear   int `envconfig:"SPAWN_PROB_NEAR" default:"25"`
	SpawnProbOn     int `envconfig:"SPAWN_PROB_ON" default:"25"`
	SpawnProbRandom int `envconfig:"SPAWN_PROB_RANDOM" default:"50"`

	BoostCost     uint16 `envconfig:"BOOST_COST" default:"20"`
	BoostDropSize uint8  `envconfig:"BOOST_DROP_SIZE" default:"3"`

	MaxPlayers    int `envconfig:"MAX_PLAYERS" default:"500"`
	IPCooldownSec int `envconfig:"IP_COOLDOWN_SEC" default:"10"`

	StaticDir string `envconfig:"STATIC_DIR" default:"./client"`
}

// Load reads Config from the environment, falling back to defaults.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("slither", &c); err != nil {
		return Config{}, err
	}
	return c, nil
}
