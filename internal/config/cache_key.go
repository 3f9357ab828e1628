package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session JTI.
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// ActiveQuestionsKey returns the cache key for the student-facing question list.
func (r *CacheKeyStruct) ActiveQuestionsKey() string {
	return "questions:active"
}

// FeedbackEventChannel returns the Redis PubSub channel for live submission events.
func (r *CacheKeyStruct) FeedbackEventChannel() string {
	return "feedback:events"
}

var CacheKey = NewCacheKeyStruct()
