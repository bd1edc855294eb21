package jsonrpc

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lockstep-network/lockstep/internal/core/application"
	"github.com/lockstep-network/lockstep/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// Request defines a JSON-RPC 2.0 request object.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response defines a JSON-RPC 2.0 response object.
type Response struct {
	Version string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error defines a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Error codes
const (
	ErrorCodeParseError        = -32700
	ErrorMessageParseError     = "Parse error"
	ErrorCodeMethodNotFound    = -32601
	ErrorMessageMethodNotFound = "Method not found"
	ErrorCodeInvalidParams     = -32602
	ErrorCodeInternalError     = -32603
	ErrorMessageInternalError  = "Internal error"

	ErrorCodeStateError         = -32000
	ErrorCodeTimingError        = -32001
	ErrorCodeAuthorizationError = -32002
	ErrorCodeLedgerError        = -32003
)

func NewResponse(id interface{}, result json.RawMessage, err *Error) Response {
	return Response{
		Version: "2.0",
		ID:      id,
		Result:  result,
		Error:   err,
	}
}

func NewError(code int, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

type Service interface {
	Start() error
	Stop()
}

type service struct {
	server   *http.Server
	commands map[string]Method
	appSvc   application.Service
	authsha  [sha256.Size]byte
	noAuth   bool
}

func NewService(
	address string, appSvc application.Service, rpcUser, rpcPassword string,
) Service {
	svc := &service{
		commands: make(map[string]Method),
		appSvc:   appSvc,
		noAuth:   len(rpcUser) <= 0 && len(rpcPassword) <= 0,
	}
	if !svc.noAuth {
		login := rpcUser + ":" + rpcPassword
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		svc.authsha = sha256.Sum256([]byte(auth))
	}

	for _, cmd := range allMethods() {
		svc.commands[cmd.Name()] = cmd
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	routes := router.Group("/")
	if !svc.noAuth {
		routes.Use(svc.authenticateUser)
	}
	routes.POST("/", svc.handleJSONRPC)

	svc.server = &http.Server{
		Addr:    address,
		Handler: router,
	}
	return svc
}

func (s *service) Start() error {
	if err := s.appSvc.Start(); err != nil {
		return err
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("rpc server exited")
		}
	}()

	log.Infof("rpc server listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// nolint:all
	s.server.Shutdown(ctx)
	s.appSvc.Stop()
}

func (s *service) handleJSONRPC(ctx *gin.Context) {
	req := Request{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, NewResponse(
			req.ID, nil, NewError(ErrorCodeParseError, ErrorMessageParseError, err.Error()),
		))
		return
	}

	cmd, ok := s.commands[req.Method]
	if !ok {
		ctx.JSON(http.StatusNotFound, NewResponse(
			req.ID, nil, NewError(ErrorCodeMethodNotFound, ErrorMessageMethodNotFound, req.Method),
		))
		return
	}

	result, err := cmd.Query(ctx.Request.Context(), s.appSvc, req.Params)
	if err != nil {
		ctx.JSON(http.StatusOK, NewResponse(req.ID, nil, mapError(err)))
		return
	}

	ctx.JSON(http.StatusOK, NewResponse(req.ID, result, nil))
}

func (s *service) authenticateUser(ctx *gin.Context) {
	authhdr := ctx.GetHeader("Authorization")
	if len(authhdr) <= 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing credentials"})
		return
	}
	authsha := sha256.Sum256([]byte(authhdr))
	if subtle.ConstantTimeCompare(authsha[:], s.authsha[:]) != 1 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
}

// mapError turns a domain error into the matching JSON-RPC error object,
// keeping the stable error code in the data field so clients can branch on
// it.
func mapError(err error) *Error {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		return NewError(ErrorCodeInternalError, ErrorMessageInternalError, err.Error())
	}

	code := ErrorCodeInternalError
	switch domainErr.Kind {
	case domain.ValidationError:
		code = ErrorCodeInvalidParams
	case domain.StateError:
		code = ErrorCodeStateError
	case domain.TimingError:
		code = ErrorCodeTimingError
	case domain.AuthorizationError:
		code = ErrorCodeAuthorizationError
	case domain.LedgerError:
		code = ErrorCodeLedgerError
	}

	return NewError(code, fmt.Sprintf("%s", err), domainErr.Code)
}
