package mcpserver

// SchedulingRules describes how goals occupy calendar days, for LLM
// consumers placing goals via the MCP tools.
const SchedulingRules = `# Jera Scheduling Rules

Jera plans goals on a yearly calendar. These rules decide when a goal can
be placed.

## Days, not times

All comparisons happen at day granularity in UTC. The time-of-day part of
any date is ignored: 2025-06-03 09:00 and 2025-06-03 23:30 are the same
calendar day.

## One goal per day

Each calendar day belongs to at most one goal. A new date range is
rejected when any of its days is already taken.

## Range shapes

A goal may have:

1. **Both dates** - it occupies every day from start through end,
   inclusive on both sides.
2. **Only a start date** (or only an end date) - it occupies exactly that
   one day.
3. **No dates** - it sits off the calendar and never conflicts.

If start and end arrive reversed they are swapped, not rejected.

## Overlap decisions

- Two bounded ranges collide when their [start, end] day intervals
  intersect. Sharing a single day counts: [Jun 3, Jun 7] and
  [Jun 7, Jun 9] collide.
- A bounded range collides with a one-sided goal when the lone bound
  falls inside the bounded range, endpoints included.
- Two one-sided goals collide only when their lone bounds are the same
  day.

## Trash

Archiving a goal frees its days immediately. Restoring does NOT re-check
conflicts, so a restored goal can overlap goals created in the meantime;
prefer check_dates before restoring around contested dates.

## Tool workflow

1. Call ` + "`check_dates`" + ` with the candidate range.
2. If free, call ` + "`create_goal`" + ` with the same YYYY-MM-DD dates.
3. A conflict on create means another writer won the race; pick new
   dates and retry.
`
