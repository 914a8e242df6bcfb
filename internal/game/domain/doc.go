// Package domain holds the game aggregate: members, rounds, groups,
// proposals, and the stage-switch cursor. Types here are pure state; the
// component packages under internal/game mutate them and the service layer
// persists them as a single unit.
package domain
