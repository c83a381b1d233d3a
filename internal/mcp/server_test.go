package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/tools"
)

func newTestServer(t *testing.T, opts ...tools.Option) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]tools.Option{tools.WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	})}, opts...)
	inv := tools.NewInvoker(tools.NewDispatcher(opts...), nil, logger, "")
	return NewServer("127.0.0.1:0", inv, ServerInfo{Name: "soapbridge", Version: "test", HostID: "desk-1"}, logger)
}

// roundTrip feeds lines to Serve and decodes every response line.
func roundTrip(t *testing.T, s *Server, lines ...string) []map[string]any {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, s.Serve(context.Background(), in, &out))

	var resps []map[string]any
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		resps = append(resps, m)
	}
	return resps
}

func resultOf(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	require.Nil(t, resp["error"], "unexpected error: %v", resp["error"])
	res, ok := resp["result"].(map[string]any)
	require.True(t, ok, "result missing: %v", resp)
	return res
}

func textOf(t *testing.T, result map[string]any) string {
	t.Helper()
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	return block["text"].(string)
}

func TestInitialize(t *testing.T) {
	resps := roundTrip(t, newTestServer(t), `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	require.Len(t, resps, 1)
	assert.Equal(t, float64(1), resps[0]["id"])

	res := resultOf(t, resps[0])
	assert.NotEmpty(t, res["protocolVersion"])
	info := res["serverInfo"].(map[string]any)
	assert.Equal(t, "soapbridge", info["name"])
	assert.Equal(t, "desk-1", info["hostId"])
}

func TestNotificationsGetNoResponse(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":"a","method":"ping"}`,
	)
	require.Len(t, resps, 1)
	assert.Equal(t, "a", resps[0]["id"])
	assert.Equal(t, map[string]any{}, resultOf(t, resps[0]))
}

func TestToolsList(t *testing.T) {
	resps := roundTrip(t, newTestServer(t), `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	res := resultOf(t, resps[0])
	list := res["tools"].([]any)
	require.Len(t, list, 6)

	first := list[0].(map[string]any)
	assert.Equal(t, tools.ToolAnalyzeProject, first["name"])
	schema := first["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
}

func TestToolsListHonoursPolicy(t *testing.T) {
	s := newTestServer(t, tools.WithPolicy(core.NewPolicy("manage_assertions")))
	resps := roundTrip(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	list := resultOf(t, resps[0])["tools"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, tools.ToolManageAssertions, list[0].(map[string]any)["name"])
}

func TestToolsCall(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"analyze_project","arguments":{"projectPath":"/p.xml"}}}`)
	res := resultOf(t, resps[0])
	assert.NotEqual(t, true, res["isError"])
	assert.True(t, strings.HasPrefix(textOf(t, res), "# Project Overview"))
}

func TestToolsCallHandlerErrorIsNotFlagged(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"manage_soap_services","arguments":{"projectPath":"/p.xml","action":"create_request"}}}`)
	res := resultOf(t, resps[0])
	assert.NotEqual(t, true, res["isError"])
	assert.Equal(t, "Error managing SOAP services: Service name is required for creating SOAP request", textOf(t, res))
}

func TestToolsCallUnknownToolIsErrorResult(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"format_disk","arguments":{}}}`)
	res := resultOf(t, resps[0])
	assert.Equal(t, true, res["isError"])
	assert.Contains(t, textOf(t, res), "format_disk")
}

func TestProtocolErrors(t *testing.T) {
	resps := roundTrip(t, newTestServer(t),
		`{not json`,
		`{"jsonrpc":"2.0","id":6,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"arguments":{}}}`,
		`{"jsonrpc":"2.0","id":8,"method":"tools/call","params":"nope"}`,
		`{"jsonrpc":"1.0","id":9,"method":"ping"}`,
	)
	require.Len(t, resps, 5)

	codes := make([]float64, 0, len(resps))
	for _, r := range resps {
		e, ok := r["error"].(map[string]any)
		require.True(t, ok, "expected error in %v", r)
		codes = append(codes, e["code"].(float64))
	}
	assert.Equal(t, []float64{-32700, -32601, -32602, -32602, -32600}, codes)
	assert.Nil(t, resps[0]["id"])
	assert.Equal(t, float64(6), resps[1]["id"])
}

func TestServeStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, pr, io.Discard) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestTCPTransport(t *testing.T) {
	s := newTestServer(t)
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe() }()

	var addr net.Addr
	require.Eventually(t, func() bool {
		addr = s.Addr()
		return addr != nil
	}, 2*time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"manage_test_data","arguments":{"projectPath":"/p.xml","action":"generate_test_data","recordCount":"5"}}}` + "\n"))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(line, &resp))
	assert.Contains(t, textOf(t, resultOf(t, resp)), "Records: 5")

	require.NoError(t, s.Shutdown(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after Shutdown")
	}
}
