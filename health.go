package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

type ServerEndpoint struct {
	Name string
	URL  string
}

type ServerStatus struct {
	Name      string
	URL       string
	Online    bool
	Latency   time.Duration
	Err       string
	CheckedAt time.Time
}

// ServerMonitor probes the companion servers' /api/health endpoints and
// remembers the latest result.
type ServerMonitor struct {
	client  *http.Client
	servers []ServerEndpoint
	timeout time.Duration

	mu   sync.Mutex
	last []ServerStatus
}

func NewServerMonitor(servers []ServerEndpoint, timeout time.Duration) *ServerMonitor {
	return &ServerMonitor{
		client:  &http.Client{},
		servers: servers,
		timeout: timeout,
	}
}

// CheckServer reports whether baseURL answers /api/health with a 2xx status.
func (m *ServerMonitor) CheckServer(ctx context.Context, baseURL string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/api/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Cache-Control", "no-cache")

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return latency, fmt.Errorf("health check %s: status %d", url, resp.StatusCode)
	}
	return latency, nil
}

// Check probes every server concurrently. Results keep the configured order.
func (m *ServerMonitor) Check(ctx context.Context) []ServerStatus {
	statuses := make([]ServerStatus, len(m.servers))
	var wg sync.WaitGroup
	for i, srv := range m.servers {
		wg.Add(1)
		go func(i int, srv ServerEndpoint) {
			defer wg.Done()
			latency, err := m.CheckServer(ctx, srv.URL)
			st := ServerStatus{
				Name:      srv.Name,
				URL:       srv.URL,
				Online:    err == nil,
				Latency:   latency,
				CheckedAt: time.Now(),
			}
			if err != nil {
				st.Err = err.Error()
			}
			statuses[i] = st
		}(i, srv)
	}
	wg.Wait()

	m.mu.Lock()
	m.last = statuses
	m.mu.Unlock()
	return statuses
}

func (m *ServerMonitor) Last() []ServerStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ServerStatus(nil), m.last...)
}

func (m *ServerMonitor) Enabled() bool {
	return len(m.servers) > 0
}

func AllOnline(statuses []ServerStatus) bool {
	for _, st := range statuses {
		if !st.Online {
			return false
		}
	}
	return true
}
