// Package ratelimit enforces per-address request ceilings over fixed windows.
//
// A Policy names a ceiling (Limit requests per Window). A Limiter applies one
// policy against a Store that keeps one counter per policy+address key:
//
//   - MemoryStore keeps counters in a mutex-guarded map. A counter is evicted
//     by the janitor once its window has ended; an expired counter that is hit
//     again before eviction is simply restarted.
//   - RedisStore keeps counters in Redis (INCR + EXPIRE NX) so several
//     processes can share one budget.
//
// Middleware translates a denial into 429 with the policy's advisory message.
package ratelimit
