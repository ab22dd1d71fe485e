package types

// Client -> Server
// Connect: GET /ws?id=<player id>&name=<display name>&rank=<number>
//
// JoinQueue:
//   role: "fire" | "snow" | "water"
//   mode: 0 (standard) | 1 (coop)
//
// LeaveQueue: {}
//
// Ready: {}   // sent once the battle scene has loaded
//
// Use:
//   x: number  // tile column, 0..8
//   y: number  // tile row, 0..4

// Server -> Client
// place / remove:
//   entity: { id, name, sprite?, x, y }
//
// animate:
//   entity, clip: string, style: "loop" | "play_once"
//
// sound:
//   sound: { name, looping }
//
// showUI / closeUI:
//   window: "playerselect" | "rounds" | "combatui" | "close"
//   payload:  // showUI only
//     playerselect: { "1": fire name, "2": water name, "4": snow name }
//     rounds:       { bonusCriteria, remainingTime (ms), roundNumber }
//     combatui:     { element }
//
// tag:
//   tag: "scene" | "tilesize" | "input_enabled" | "ended" | "aborted"
//   args: any[]
//
// input:
//   input: { id: "/use", command, target: "tile", event: "mouse_up" }
//
// error:
//   error: string
