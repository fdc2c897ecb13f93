package grpc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestPool_GetConnectionReusesConn(t *testing.T) {
	p := NewPool()
	defer p.Close()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		conns = map[*grpc.ClientConn]struct{}{}
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := p.GetConnection("localhost:50051")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			conns[conn] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, conns, 1)

	other, err := p.GetConnection("localhost:50052")
	require.NoError(t, err)
	_, seen := conns[other]
	assert.False(t, seen)
}

func TestPool_CloseDropsConnections(t *testing.T) {
	p := NewPool()

	first, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	require.NoError(t, p.Close())

	second, err := p.GetConnection("localhost:50051")
	require.NoError(t, err)
	defer p.Close()
	assert.NotSame(t, first, second)
}
