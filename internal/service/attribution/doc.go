// Package attribution implements multi-touch attribution over a contact's
// touchpoint history.
//
// The service distributes conversion revenue across touchpoints under one of
// several weighting models and rolls the results up by marketing channel. It
// depends only on the EventSource interface defined in this package and holds
// no state beyond configuration, so it is safe for concurrent use.
//
// EventSource implementations live in repository/postgres/.
package attribution
