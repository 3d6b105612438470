package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/krehermann/stackvm/asm"
	"github.com/krehermann/stackvm/core"
	"github.com/krehermann/stackvm/types"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/bytes"
	"go.uber.org/zap"
)

const DefaultMaxBody = "1M"

type ServerConfig struct {
	ListenerAddr string
	// request body limit, e.g. "1M"; larger bodies get 413
	MaxBody string
	Logger  *zap.Logger
}

type Server struct {
	ServerConfig
	evaluator *core.Evaluator
	echo      *echo.Echo

	logger *zap.Logger
}

func NewServer(config ServerConfig, evaluator *core.Evaluator) (*Server, error) {
	if evaluator == nil {
		return nil, errors.New("api server: nil evaluator")
	}
	if config.Logger == nil {
		config.Logger, _ = zap.NewDevelopment()
	}
	if config.MaxBody == "" {
		config.MaxBody = DefaultMaxBody
	}
	if _, err := bytes.Parse(config.MaxBody); err != nil {
		return nil, fmt.Errorf("api server: max body %q: %w", config.MaxBody, err)
	}
	s := &Server{
		ServerConfig: config,
		evaluator:    evaluator,
		logger:       config.Logger.Named("api"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.BodyLimit(config.MaxBody))
	e.POST("/run", s.handleRun)
	e.GET("/run/:hash", s.handleGetReceipt)
	e.POST("/disasm", s.handleDisasm)
	s.echo = e

	return s, nil
}

// Handler exposes the routes, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr is the bound listener address, nil until Start is listening
func (s *Server) Addr() net.Addr {
	return s.echo.ListenerAddr()
}

// Start blocks serving requests until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))

	err := s.echo.Start(s.ListenerAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("api server stopping")
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleRun(ectx echo.Context) error {
	p, err := bindProgram(ectx)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest,
			ErrorResponse{Error: err.Error()})
	}

	r, err := s.evaluator.Evaluate(p)
	if err != nil {
		s.logger.Debug("run failed", zap.Error(err))
		// a successful run whose receipt could not be stored is a server
		// fault, not a bad program
		if r == nil || !r.Failed() {
			return ectx.JSON(http.StatusInternalServerError,
				ErrorResponse{Error: err.Error()})
		}
		return ectx.JSON(http.StatusUnprocessableEntity, r)
	}

	return ectx.JSON(http.StatusOK, r)
}

func (s *Server) handleGetReceipt(ectx echo.Context) error {
	q := ectx.Param("hash")

	h, err := types.HashFromHex(q)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest,
			ErrorResponse{Error: err.Error()})
	}

	r, err := s.evaluator.Receipt(h)
	if err != nil {
		return ectx.JSON(http.StatusNotFound,
			ErrorResponse{Error: err.Error()})
	}

	return ectx.JSON(http.StatusOK, r)
}

func (s *Server) handleDisasm(ectx echo.Context) error {
	p, err := bindProgram(ectx)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest,
			ErrorResponse{Error: err.Error()})
	}

	listing, err := asm.Disassemble(p.Code)
	if err != nil {
		return ectx.JSON(http.StatusUnprocessableEntity,
			ErrorResponse{Error: err.Error()})
	}

	return ectx.JSON(http.StatusOK,
		DisasmResponse{Listing: listing})
}

func bindProgram(ectx echo.Context) (*core.Program, error) {
	req := new(ProgramRequest)
	if err := ectx.Bind(req); err != nil {
		return nil, err
	}
	return core.ParseProgram(req.Code)
}
