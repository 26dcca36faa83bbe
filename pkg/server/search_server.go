package server

import (
	"errors"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	handlers "github.com/NeuralTrust/TrustSearch/pkg/handlers/http"
	"github.com/NeuralTrust/TrustSearch/pkg/middleware"
	"github.com/NeuralTrust/TrustSearch/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	SearchServerDI struct {
		Config              *config.Config
		Logger              *logrus.Logger
		MiddlewareTransport *middleware.Transport
		HandlerTransport    handlers.HandlerTransport
	}
	SearchServer struct {
		*BaseServer
	}
)

func NewSearchServer(di SearchServerDI) *SearchServer {
	s := &SearchServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(router.NewSearchRouter(di.MiddlewareTransport, di.HandlerTransport))
	return s
}

func (s *SearchServer) Run() error {
	s.setupMetricsEndpoint()
	s.Logger.WithField("addr", s.Addr()).Info("starting search server")
	return s.Router.Listen(s.Addr())
}

func (s *SearchServer) Shutdown() error {
	return errors.Join(s.Router.Shutdown(), s.shutdownMetrics())
}
