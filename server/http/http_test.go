package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xconf "github.com/xuperchain/xstake/kernel/common/xconfig"
	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	engconf "github.com/xuperchain/xstake/kernel/engines/xuperos/config"
	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/storage/kvdb"
)

func newTestServer(t *testing.T) *httptest.Server {
	envCfg := xconf.GetDefEnvConf()
	envCfg.RootPath = t.TempDir()
	engCfg := engconf.GetDefEngineConf()
	engCfg.KVEngine = kvdb.KVEngineTypeMemory

	engine, err := xuperos.NewEngine(envCfg, engCfg)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	log, err := logs.NewLogger("", "http_test")
	require.NoError(t, err)
	serv, err := NewHttpServ(engine, "127.0.0.1:0", log)
	require.NoError(t, err)

	ts := httptest.NewServer(serv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, req interface{}) (int, *Response) {
	var body []byte
	switch v := req.(type) {
	case string:
		body = []byte(v)
	default:
		var err error
		body, err = json.Marshal(v)
		require.NoError(t, err)
	}

	httpResp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer httpResp.Body.Close()

	resp := new(Response)
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(resp))
	return httpResp.StatusCode, resp
}

func TestInvokeEndpoints(t *testing.T) {
	ts := newTestServer(t)

	status, resp := post(t, ts, "/v1/instantiate", &common.InvokeRequest{
		TxID:   "tx-1",
		Sender: "creator",
		Msg:    json.RawMessage(`{"staking_token":"luna","unbond_period":7200,"activity_interval":3600,"penalty_percentage":10}`),
	})
	require.Equal(t, http.StatusOK, status, resp.Message)

	status, resp = post(t, ts, "/v1/execute", &common.InvokeRequest{
		TxID:      "tx-2",
		Sender:    "luna",
		BlockTime: 1000,
		Msg:       json.RawMessage(`{"receive":{"sender":"alice","amount":"1000","msg":"eyJib25kIjp7ImJhY2t1cF9hZGRyIjoiYm9iIn19"}}`),
	})
	require.Equal(t, http.StatusOK, status, resp.Message)
	assert.Contains(t, resp.Attributes, contract.Attribute{Key: "new_amount", Value: "1000"})

	status, resp = post(t, ts, "/v1/execute", &common.InvokeRequest{
		TxID:      "tx-3",
		Sender:    "alice",
		BlockTime: 2000,
		Msg:       json.RawMessage(`{"unbond":{"amount":"1000"}}`),
	})
	require.Equal(t, http.StatusOK, status, resp.Message)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "luna", resp.Messages[0].Contract)
	assert.JSONEq(t, `{"transfer":{"recipient":"creator","amount":"100"}}`, string(resp.Messages[0].Msg))
	assert.JSONEq(t, `{"transfer":{"recipient":"alice","amount":"900"}}`, string(resp.Messages[1].Msg))

	status, resp = post(t, ts, "/v1/query", &common.InvokeRequest{Msg: json.RawMessage(`"state"`)})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total_bond_amount":"0"}`, string(resp.Body))
}

func TestInvokeErrorStatus(t *testing.T) {
	ts := newTestServer(t)

	status, resp := post(t, ts, "/v1/query", &common.InvokeRequest{Msg: json.RawMessage(`{"staker_info":{"staker":"alice"}}`)})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40402, resp.Code)

	status, _ = post(t, ts, "/v1/execute", &common.InvokeRequest{Sender: "alice", Msg: json.RawMessage(`"keep_alive"`)})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, ts, "/v1/execute", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp = post(t, ts, "/v1/query", &common.InvokeRequest{Msg: json.RawMessage(`{"bogus":{}}`)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, resp.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
