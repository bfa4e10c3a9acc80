// Package bilibili implements a minimal client for the platform's relation
// API: listing the signed-in account's followings and following or
// unfollowing individual accounts.
//
// Responses arrive in a JSON envelope whose code field carries most of the
// error signal; the client maps both HTTP statuses and envelope codes onto
// the typed errors in pkg/errors, and Classify turns those into pacing
// outcomes for pkg/pacer.
package bilibili
