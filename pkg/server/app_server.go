package server

import (
	"fmt"

	"github.com/relicworks/itemgate/pkg/config"
	handlers "github.com/relicworks/itemgate/pkg/handlers/http"
	"github.com/relicworks/itemgate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const AnalyzeItemPath = "/api/v1/analyze-item"

type (
	AppServerDI struct {
		Config           *config.Config
		Logger           *logrus.Logger
		HandlerTransport handlers.HandlerTransport
	}
	AppServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewAppServer(di AppServerDI) *AppServer {
	prometheus.Initialize()

	s := &AppServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}

	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *AppServer) Run() error {
	s.setupHealthCheck()
	s.Router.Post(AnalyzeItemPath, s.handlerTransport.AnalyzeItemHandler.Handle)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting analyzer server")
	return s.Router.Listen(addr)
}

func (s *AppServer) Shutdown() error {
	return s.Router.Shutdown()
}
