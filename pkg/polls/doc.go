// Package polls is a client for the polling service HTTP API.
//
// It wraps three endpoints:
//
//	GET  /polls?skip=&limit=       FetchPolls
//	POST /polls/{id}/vote          CastVote
//	GET  /polls/{id}/results       GetPollResults
//
// Every call is a single synchronous request. Non-200 responses are returned
// as FetchPollsError, VotingError or ResultsFetchError; transport failures are
// returned wrapped and unchanged in kind.
package polls
