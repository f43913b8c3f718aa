package database

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestPoolCollector_Describe(t *testing.T) {
	c := NewPoolCollector(nil, "studynotion")

	ch := make(chan *prometheus.Desc, 16)
	c.Describe(ch)
	close(ch)

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, len(c.metrics), n)
	assert.Equal(t, 8, n)
}

func TestPoolCollector_IsCollector(t *testing.T) {
	var _ prometheus.Collector = NewPoolCollector(nil, "studynotion")
}
