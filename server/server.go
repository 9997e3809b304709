package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zeu5/tabular-rl/core"
)

// PolicyServer answers greedy action and value queries for a trained policy
// over http.
type PolicyServer struct {
	Addr   string
	policy *core.GreedyPolicy
	logger logrus.FieldLogger
	server *http.Server
}

func NewPolicyServer(addr string, policy *core.GreedyPolicy, logger logrus.FieldLogger) *PolicyServer {
	s := &PolicyServer{
		Addr:   addr,
		policy: policy,
		logger: logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/policy", s.handlePolicy)
	r.GET("/action/:state", s.handleAction)
	r.GET("/value/:state", s.handleValue)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler exposes the routes without starting a listener.
func (s *PolicyServer) Handler() http.Handler {
	return s.server.Handler
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *PolicyServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.Addr).Info("policy server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

type stateEntry struct {
	State  string             `json:"state"`
	Action string             `json:"action"`
	Value  float64            `json:"value"`
	Values map[string]float64 `json:"values"`
}

func (s *PolicyServer) entry(hash string) (*stateEntry, error) {
	state := core.NamedState(hash)
	action, err := s.policy.Action(state)
	if err != nil {
		return nil, err
	}
	value, _ := s.policy.Value(state)
	qvalues, _ := s.policy.QValues(state)

	e := &stateEntry{
		State:  hash,
		Action: action.Hash(),
		Value:  value,
		Values: make(map[string]float64, len(qvalues)),
	}
	for i, a := range s.policy.Actions() {
		e.Values[a.Hash()] = qvalues[i]
	}
	return e, nil
}

func (s *PolicyServer) handlePolicy(c *gin.Context) {
	states := s.policy.States()
	out := make([]*stateEntry, 0, len(states))
	for _, hash := range states {
		e, err := s.entry(hash)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out = append(out, e)
	}
	c.JSON(http.StatusOK, gin.H{"states": out})
}

func (s *PolicyServer) handleAction(c *gin.Context) {
	hash := c.Param("state")
	action, err := s.policy.Action(core.NamedState(hash))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": hash, "action": action.Hash()})
}

func (s *PolicyServer) handleValue(c *gin.Context) {
	e, err := s.entry(c.Param("state"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, e)
}
