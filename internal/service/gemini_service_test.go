package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerCounter(t *testing.T) {
	s := &GeminiService{circuitBreakerMax: 5}

	_, open := s.breakerOpen()
	assert.False(t, open)

	for i := 0; i < 5; i++ {
		s.recordFailure()
	}
	failures, open := s.breakerOpen()
	assert.True(t, open)
	assert.Equal(t, 5, failures)

	s.recordSuccess()
	_, open = s.breakerOpen()
	assert.False(t, open)
}

func TestCircuitBreakerCounterConcurrent(t *testing.T) {
	s := &GeminiService{circuitBreakerMax: 5}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.recordFailure()
			s.breakerOpen()
		}()
	}
	wg.Wait()

	failures, open := s.breakerOpen()
	assert.True(t, open)
	assert.Equal(t, 20, failures)
}
