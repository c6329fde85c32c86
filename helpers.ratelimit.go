package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientIdleTimeout is how long a client limiter is kept without activity.
const clientIdleTimeout = 3 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientsLimiter holds one token-bucket limiter per client ip.
// Idle clients are evicted at most once per minute, during calls.
type ClientsLimiter struct {
	clock   Clocker
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	clients map[string]*client
	swept   time.Time
}

// NewClientsLimiter provides a limiter allowing `r` requests per second
// with bursts of `burst` requests for each client.
func NewClientsLimiter(clock Clocker, r float64, burst int) *ClientsLimiter {
	return &ClientsLimiter{
		clock:   clock,
		limit:   rate.Limit(r),
		burst:   burst,
		clients: make(map[string]*client),
		swept:   clock.Now(),
	}
}

// Allow reports whether the client identified by ip may proceed now.
func (cl *ClientsLimiter) Allow(ip string) bool {
	now := cl.clock.Now()
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if now.Sub(cl.swept) > time.Minute {
		for key, c := range cl.clients {
			if now.Sub(c.lastSeen) > clientIdleTimeout {
				delete(cl.clients, key)
			}
		}
		cl.swept = now
	}

	c, found := cl.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (cl *ClientsLimiter) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}
