package server_test

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerd/internal/config"
	"ledgerd/internal/domain/ledger"
	"ledgerd/internal/server"
)

func startTestServer(t *testing.T) (*server.Server, string) {
	t.Helper()

	cfg := config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		WorkerCount:    4,
		QueueCapacity:  64,
		ReadBufferSize: 1024,
		EpollTimeout:   100 * time.Millisecond,
	}
	l := ledger.New(1000)
	s := server.New(cfg, l, nil)

	go func() {
		_ = s.Run()
	}()

	require.Eventually(t, func() bool {
		return s.Port() != 0
	}, 2*time.Second, time.Millisecond)

	t.Cleanup(s.Shutdown)
	return s, fmt.Sprintf("127.0.0.1:%d", s.Port())
}

type testClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(t *testing.T, line string) string {
	t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	reply, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return reply
}

func TestEndToEndScenarios(t *testing.T) {
	_, addr := startTestServer(t)
	c := dial(t, addr)

	assert.Equal(t, "SUCCESS CREATE 0\n", c.send(t, "CREATE"))
	assert.Equal(t, "SUCCESS CREATE 1\n", c.send(t, "CREATE"))

	assert.Equal(t, "SUCCESS DEPOSIT 100.00\n", c.send(t, "DEPOSIT 0 100.00"))
	assert.Equal(t, "SUCCESS BALANCE 100.00\n", c.send(t, "BALANCE 0"))

	assert.Equal(t, "FAILURE WITHDRAW -1\n", c.send(t, "WITHDRAW 0 150.00"))
	assert.Equal(t, "SUCCESS BALANCE 100.00\n", c.send(t, "BALANCE 0"))

	assert.Equal(t, "SUCCESS TRANSFER 60.00\n", c.send(t, "TRANSFER 0 1 40.00"))
	assert.Equal(t, "SUCCESS BALANCE 40.00\n", c.send(t, "BALANCE 1"))

	assert.Equal(t, "FAILURE TRANSFER -1\n", c.send(t, "TRANSFER 0 0 10.00"))
}

func TestConcurrentClientsConserveFunds(t *testing.T) {
	_, addr := startTestServer(t)

	admin := dial(t, addr)
	require.Equal(t, "SUCCESS CREATE 0\n", admin.send(t, "CREATE"))
	require.Equal(t, "SUCCESS DEPOSIT 500.00\n", admin.send(t, "DEPOSIT 0 500.00"))

	var wg sync.WaitGroup
	clients := 20
	wg.Add(clients)
	for i := 0; i < clients; i++ {
		go func() {
			defer wg.Done()
			c := dial(t, addr)
			reply := c.send(t, "DEPOSIT 0 1.00")
			assert.Equal(t, "SUCCESS DEPOSIT ", reply[:len("SUCCESS DEPOSIT ")])
		}()
	}
	wg.Wait()

	final := admin.send(t, "BALANCE 0")
	assert.Equal(t, fmt.Sprintf("SUCCESS BALANCE %.2f\n", 500.0+float64(clients)), final)
}

func TestShutdownCommandStopsServer(t *testing.T) {
	_, addr := startTestServer(t)
	c := dial(t, addr)

	assert.Equal(t, "SUCCESS SHUTDOWN\n", c.send(t, "SHUTDOWN"))

	// The reactor stops accepting once it notices the shutdown signal;
	// poll until new connections are refused instead of assuming a fixed
	// delay.
	require.Eventually(t, func() bool {
		_, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		return err != nil
	}, 2*time.Second, 50*time.Millisecond)
}
