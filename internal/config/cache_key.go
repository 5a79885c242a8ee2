package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CandidateLoginKey returns the cache key holding a candidate's active JWT ID.
func (r *CacheKeyStruct) CandidateLoginKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// InterviewSessionKey returns the cache key for a live interview session record.
func (r *CacheKeyStruct) InterviewSessionKey(sessionID string) string {
	return fmt.Sprintf("interview:%s:session", sessionID)
}

// ActiveSessionKey returns the cache key pointing at a candidate's live session
// for one test. Holds the session ID so a repeated start resumes it.
func (r *CacheKeyStruct) ActiveSessionKey(candidateID, testID string) string {
	return fmt.Sprintf("candidate:%s:test:%s:active_session", candidateID, testID)
}

// DashboardStatsKey returns the cache key for a candidate's dashboard stats.
func (r *CacheKeyStruct) DashboardStatsKey(candidateID string) string {
	return fmt.Sprintf("candidate:%s:dashboard_stats", candidateID)
}

// InterviewMonitorChannel returns the Redis PubSub channel name carrying live
// interview events for the admin monitor.
func (r *CacheKeyStruct) InterviewMonitorChannel() string {
	return "interview:monitor"
}

var CacheKey = NewCacheKeyStruct()
