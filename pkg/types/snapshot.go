package types

// GET /sessions returns SessionSnapshot[]; GET /sessions/{id} returns one.
// SessionSnapshot:
//   id: string
//   mode: number
//   map_id: 1 | 2 | 3
//   bonus: "no_ko" | "under_time" | "full_health"
//   round: number
//   phase: "setup" | "round" | "transition" | "ended"
//   input_open: boolean
//   remaining_ms: number          // left on the running round timer
//   started_at: RFC 3339
//   players: { id, name, role, bot, health, knocked_out }[]   // fire, snow, water
//   enemies: { id, kind: "Sly" | "Scrap" | "Tank", cell: { x, y } }[]
//
// GET /queue returns QueueView:
//   total: number
//   waiting: { [mode]: { [role]: number } }
//   players: string[]             // arrival order
