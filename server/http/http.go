package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xuperchain/xstake/kernel/contract"
	"github.com/xuperchain/xstake/kernel/engines/xuperos/common"
	"github.com/xuperchain/xstake/lib/logs"
	"github.com/xuperchain/xstake/lib/utils"
	scom "github.com/xuperchain/xstake/server/common"
	sctx "github.com/xuperchain/xstake/server/context"
)

type invokeFunc func(ctx context.Context, req *common.InvokeRequest) (*contract.Response, error)

// Response is the JSON body of every invoke endpoint.
type Response struct {
	Status     int                  `json:"status"`
	Code       int                  `json:"code,omitempty"`
	Message    string               `json:"message,omitempty"`
	Body       json.RawMessage      `json:"body,omitempty"`
	Attributes []contract.Attribute `json:"attributes,omitempty"`
	Messages   []*contract.SubMsg   `json:"messages,omitempty"`
}

type HttpServ struct {
	engine common.Engine
	log    logs.Logger
	server *http.Server
}

func NewHttpServ(engine common.Engine, addr string, log logs.Logger) (*HttpServ, error) {
	if engine == nil || log == nil {
		return nil, fmt.Errorf("new http server failed because param error")
	}

	t := &HttpServ{
		engine: engine,
		log:    log,
	}
	t.server = &http.Server{
		Addr:              addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return t, nil
}

// Handler 构造路由
func (t *HttpServ) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(sr chi.Router) {
		sr.Post("/instantiate", t.handle("instantiate", t.engine.Instantiate))
		sr.Post("/execute", t.handle("execute", t.engine.Execute))
		sr.Post("/query", t.handle("query", t.engine.Query))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run 阻塞直到服务退出
func (t *HttpServ) Run() error {
	t.log.Info("http server listening", "addr", t.server.Addr)
	err := t.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Exit 优雅退出, 需要幂等
func (t *HttpServ) Exit(ctx context.Context) error {
	return t.server.Shutdown(ctx)
}

func (t *HttpServ) handle(api string, invoke invokeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx, err := t.access(r, api)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse(common.ErrInternal.More("%v", err)))
			return
		}

		req, err := decodeRequest(r)
		if err != nil {
			resp := errorResponse(common.ErrParameter.More("%v", err))
			t.ending(rctx, resp, "api", api)
			writeJSON(w, resp.Status, resp)
			return
		}

		result, err := invoke(r.Context(), req)
		var resp *Response
		if err != nil {
			resp = errorResponse(err)
		} else {
			resp = okResponse(result)
		}
		t.ending(rctx, resp, "api", api, "txid", req.TxID, "sender", req.Sender)
		writeJSON(w, resp.Status, resp)
	}
}

// 请求处理前处理, 输出access log
func (t *HttpServ) access(r *http.Request, api string) (sctx.ReqCtx, error) {
	logId := r.Header.Get(scom.HeaderLogId)
	if logId == "" {
		logId = utils.GenLogId()
	}
	rctx, err := sctx.NewReqCtx(t.engine, logId, clientIP(r))
	if err != nil {
		t.log.Error("access proc failed because create request context failed", "err", err)
		return nil, fmt.Errorf("create request context failed")
	}

	rctx.GetLog().Trace("received request", "api", api, "client_ip", rctx.GetClientIp())
	return rctx, nil
}

// 请求完成后处理
// others必须是KV格式, K为string
func (t *HttpServ) ending(rctx sctx.ReqCtx, resp *Response, others ...interface{}) {
	rctx.GetLog().Info("request done", append([]interface{}{"status", resp.Status, "code", resp.Code,
		"cost_time", rctx.GetTimer().Print()}, others...)...)
}

func decodeRequest(r *http.Request) (*common.InvokeRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, scom.ReqBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("read request body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("request body is empty")
	}
	req := new(common.InvokeRequest)
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("decode request: %v", err)
	}
	if len(req.Msg) == 0 {
		return nil, fmt.Errorf("msg is required")
	}
	return req, nil
}

func okResponse(result *contract.Response) *Response {
	resp := &Response{
		Status:     http.StatusOK,
		Message:    result.Message,
		Attributes: result.Attributes,
		Messages:   result.Messages,
	}
	if len(result.Body) > 0 {
		if json.Valid(result.Body) {
			resp.Body = result.Body
		} else {
			resp.Body, _ = json.Marshal(result.Body)
		}
	}
	return resp
}

func errorResponse(err error) *Response {
	cerr := common.CastError(err)
	return &Response{
		Status:  cerr.HTTPStatus(),
		Code:    cerr.Code,
		Message: err.Error(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
