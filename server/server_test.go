package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/tabular-rl/benchmarks/corridor"
	"github.com/zeu5/tabular-rl/core"
)

func testServer(t *testing.T) *httptest.Server {
	config := corridor.DefaultConfig()
	config.Length = 4
	config.Start = 2
	env, err := corridor.NewEnvironment(config)
	require.NoError(t, err)

	q, err := core.NewQTable(4, 2)
	require.NoError(t, err)
	q.Set(1, 1, 9)
	q.Set(2, 0, 0.5)
	q.Set(2, 1, 10)
	policy, err := core.NewGreedyPolicy(env, q)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv := httptest.NewServer(NewPolicyServer("", policy, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestActionEndpoint(t *testing.T) {
	srv := testServer(t)

	out := make(map[string]string)
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/action/3", &out))
	assert.Equal(t, "right", out["action"])
	assert.Equal(t, "3", out["state"])

	out = make(map[string]string)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/action/12", &out))
	assert.NotEmpty(t, out["error"])
}

func TestValueEndpoint(t *testing.T) {
	srv := testServer(t)

	out := stateEntry{}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/value/3", &out))
	assert.Equal(t, "right", out.Action)
	assert.Equal(t, 10.0, out.Value)
	assert.Equal(t, map[string]float64{"left": 0.5, "right": 10}, out.Values)
}

func TestPolicyEndpoint(t *testing.T) {
	srv := testServer(t)

	out := struct {
		States []stateEntry `json:"states"`
	}{}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/policy", &out))
	require.Len(t, out.States, 4)
	assert.Equal(t, "1", out.States[0].State)
	assert.Equal(t, "left", out.States[0].Action)
	assert.Equal(t, "right", out.States[1].Action)
	assert.Equal(t, 9.0, out.States[1].Value)
}
