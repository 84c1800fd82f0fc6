// Package assignment decides which technician receives a classified ticket.
//
// A ticket's required skills are inferred once, every technician in the pool is
// evaluated into a Candidate (skill match, calendar availability, priority tier)
// and the selector picks the best eligible candidate. When nobody is eligible the
// engine routes the ticket to the fallback technician instead of failing.
//
// Priority tiers:
//
//	1  available   + Strong match (>= 70%)
//	2  available   + Mid match (60-69%)
//	3  available   + Weak match (< 60%)
//	6  unavailable (any match), never selected
//
// Tiers 4 and 5 (unavailable + Strong, unavailable + Mid/Weak) are disabled by
// business rule: an unavailable technician is not assignable at any skill level.
package assignment
