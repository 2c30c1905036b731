// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// GameConfig contains configuration for a space-combat game
type GameConfig struct {
	WorldRadius     float64       `json:"worldRadius"`
	ShipStartRadius float64       `json:"shipStartRadius"`
	Ships           int           `json:"ships"`
	PlanetKinds     int           `json:"planetKinds"`
	Seed            uint64        `json:"seed"` // 0 = time-seeded
	Physics         PhysicsConfig `json:"physics"`
	Rules           RulesConfig   `json:"rules"`
	Ship            ShipConfig    `json:"ship"`
	Network         NetworkConfig `json:"network"`
}

// PhysicsConfig contains the world physics constants
type PhysicsConfig struct {
	Gravity         float64 `json:"gravity"`
	BounceSpeedLoss float64 `json:"bounceSpeedLoss"`
}

// RulesConfig contains the tick timing and spawn placement rules.
// Per-tick thrust and rotation amounts are given per tick and divided
// by DeltaTime when installed into a ship's engine.
type RulesConfig struct {
	TicksPerSecond        int     `json:"ticksPerSecond"`
	DeltaTime             float64 `json:"deltaTime"` // world time units per tick
	RotationPerTick       float64 `json:"rotationPerTick"`
	FrontThrustPerTick    float64 `json:"frontThrustPerTick"`
	RearThrustPerTick     float64 `json:"rearThrustPerTick"`
	RespawnRadius         float64 `json:"respawnRadius"`
	RespawnTime           float64 `json:"respawnTime"`
	PlanetPlacementMargin float64 `json:"planetPlacementMargin"`
	ShipPlacementMargin   float64 `json:"shipPlacementMargin"`
}

// ShipConfig contains the per-ship combat constants
type ShipConfig struct {
	Size            float64 `json:"size"`
	BrakeFactor     float64 `json:"brakeFactor"`
	BrakeThreshold  float64 `json:"brakeThreshold"`
	LaunchSpeed     float64 `json:"launchSpeed"`
	MissileRecoil   float64 `json:"missileRecoil"`
	MissileDamage   float64 `json:"missileDamage"`
	CollisionDamage float64 `json:"collisionDamage"`
	MissileTimeMin  float64 `json:"missileTimeMin"`
	MissileTimeMax  float64 `json:"missileTimeMax"`
}

// NetworkConfig contains network-related configuration
type NetworkConfig struct {
	ServerAddress string `json:"serverAddress"`
	ServerPort    int    `json:"serverPort"`
	MaxClients    int    `json:"maxClients"`
	TicksPerState int    `json:"ticksPerState"`
	HealthPort    int    `json:"healthPort"`
	MaxInputRate  int    `json:"maxInputRate"` // input messages per client per second
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the reference game configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		WorldRadius:     1200,
		ShipStartRadius: 600,
		Ships:           2,
		PlanetKinds:     1,
		Seed:            0,
		Physics: PhysicsConfig{
			Gravity:         0.01,
			BounceSpeedLoss: 0.1,
		},
		Rules: RulesConfig{
			TicksPerSecond:        20,
			DeltaTime:             2.0,
			RotationPerTick:       10,
			FrontThrustPerTick:    0.2,
			RearThrustPerTick:     0.1,
			RespawnRadius:         600,
			RespawnTime:           100,
			PlanetPlacementMargin: 20,
			ShipPlacementMargin:   100,
		},
		Ship: ShipConfig{
			Size:            10,
			BrakeFactor:     0.95,
			BrakeThreshold:  0.5,
			LaunchSpeed:     3.0,
			MissileRecoil:   0.01,
			MissileDamage:   0.6,
			CollisionDamage: 0.05,
			MissileTimeMin:  1200,
			MissileTimeMax:  1300,
		},
		Network: NetworkConfig{
			ServerAddress: "localhost",
			ServerPort:    4566,
			MaxClients:    16,
			TicksPerState: 1,
			HealthPort:    8080,
			MaxInputRate:  60,
		},
	}
}
