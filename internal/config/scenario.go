package config

import "fmt"

// Cell is a grid coordinate as written in scenario files.
type Cell struct {
	X int `toml:"x" yaml:"x"`
	Y int `toml:"y" yaml:"y"`
}

// AgentSpec places one agent.
type AgentSpec struct {
	Start Cell `toml:"start" yaml:"start"`
	Goal  Cell `toml:"goal" yaml:"goal"`
}

// Scenario is an initial grid layout: obstacles first, then the listed
// agents, then RandomAgents more drawn with Seed.
type Scenario struct {
	Name         string      `toml:"name,omitempty" yaml:"name,omitempty"`
	Obstacles    []Cell      `toml:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Agents       []AgentSpec `toml:"agents,omitempty" yaml:"agents,omitempty"`
	RandomAgents int         `toml:"random_agents" yaml:"random_agents"`
	Seed         int64       `toml:"seed" yaml:"seed"`
}

// Empty reports whether the scenario places nothing.
func (s Scenario) Empty() bool {
	return len(s.Obstacles) == 0 && len(s.Agents) == 0 && s.RandomAgents == 0
}

func (s Scenario) validate(size int) error {
	in := func(c Cell) bool {
		return c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size
	}
	for i, c := range s.Obstacles {
		if !in(c) {
			return fmt.Errorf("%w: scenario.obstacles[%d] (%d,%d) outside %dx%d grid", ErrInvalid, i, c.X, c.Y, size, size)
		}
	}
	for i, a := range s.Agents {
		if !in(a.Start) || !in(a.Goal) {
			return fmt.Errorf("%w: scenario.agents[%d] outside %dx%d grid", ErrInvalid, i, size, size)
		}
	}
	if s.RandomAgents < 0 {
		return fmt.Errorf("%w: scenario.random_agents %d is negative", ErrInvalid, s.RandomAgents)
	}
	return nil
}
